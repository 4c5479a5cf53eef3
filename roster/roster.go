// Package roster reads the list of people attending an event.
//
// The plain format has one person per line as "name" or "name, host"; lines
// starting with # are skipped. Files ending in .yaml, .yml or .json hold
//
//	people:
//	  - name: Alice
//	    host: true
//	  - name: Bob
//
// Ids are assigned from 1 in file order.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"seatingplan/seating"
)

var ErrNoPeople = errors.New("no people listed")

type file struct {
	People []entry `json:"people"`
}

type entry struct {
	Name string `json:"name"`
	Host bool   `json:"host,omitempty"`
}

// Load reads path in the format implied by its extension.
func Load(path string) ([]seating.Person, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("unable to open %s: is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	var people []seating.Person
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		people, err = ParseYAML(f)
	default:
		people, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return people, nil
}

func Parse(r io.Reader) ([]seating.Person, error) {
	var people []seating.Person
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, host := line, false
		if i := strings.LastIndex(line, ","); i >= 0 {
			name = strings.TrimSpace(line[:i])
			host = strings.EqualFold(strings.TrimSpace(line[i+1:]), "host")
		}
		if name == "" {
			return nil, fmt.Errorf("line %d has no name", n)
		}
		people = append(people, seating.Person{ID: len(people) + 1, Name: name, Host: host})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, ErrNoPeople
	}
	return people, nil
}

func ParseYAML(r io.Reader) ([]seating.Person, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}
	var people []seating.Person
	for i, e := range f.People {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("person %d has no name", i+1)
		}
		people = append(people, seating.Person{ID: i + 1, Name: name, Host: e.Host})
	}
	if len(people) == 0 {
		return nil, ErrNoPeople
	}
	return people, nil
}
