package seating

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrNoPeople       = errors.New("no people")
	ErrNoCourses      = errors.New("no courses")
	ErrNoTables       = errors.New("no tables")
	ErrTooManyHosts   = errors.New("more hosts than tables")
	ErrNegativeWeight = errors.New("negative score weight")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrNothingToMeet  = errors.New("no one to meet")
)

type Weights struct {
	People float64
	Tables float64
}

var DefaultWeights = Weights{
	People: 0.4,
	Tables: 0.6,
}

// Validate reports every configuration problem that would stop c from being
// scored, combined into one error.
func Validate(c Catalog, w Weights) error {
	var err error
	people, courses, tables := c.People(), c.Courses(), c.Tables()
	if len(people) == 0 {
		err = multierr.Append(err, ErrNoPeople)
	}
	if len(courses) == 0 {
		err = multierr.Append(err, ErrNoCourses)
	}
	if len(tables) == 0 {
		err = multierr.Append(err, ErrNoTables)
	}
	if hosts := len(hostsOf(c)); hosts > len(tables) {
		err = multierr.Append(err, fmt.Errorf("%w: %d hosts for %d tables", ErrTooManyHosts, hosts, len(tables)))
	}
	if w.People < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: people weight %g", ErrNegativeWeight, w.People))
	}
	if w.Tables < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: table weight %g", ErrNegativeWeight, w.Tables))
	}
	err = multierr.Append(err, duplicateIDs("person", people, func(p Person) int { return p.ID }))
	err = multierr.Append(err, duplicateIDs("course", courses, func(c Course) int { return c.ID }))
	err = multierr.Append(err, duplicateIDs("table", tables, func(t Table) int { return t.ID }))
	if len(people) > 0 && len(courses) > 0 && len(tables) > 0 && maxPeopleMeetable(len(people), len(courses), len(tables)) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d people at %d tables", ErrNothingToMeet, len(people), len(tables)))
	}
	return err
}

func duplicateIDs[T any](kind string, items []T, id func(T) int) error {
	seen := map[int]bool{}
	var err error
	for _, item := range items {
		n := id(item)
		if seen[n] {
			err = multierr.Append(err, fmt.Errorf("%w: %s %d", ErrDuplicateID, kind, n))
		}
		seen[n] = true
	}
	return err
}

func maxPeopleMeetable(people, courses, tables int) int {
	perTable := (people + tables - 1) / tables
	return courses * (perTable - 1)
}
