package roster_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"seatingplan/roster"
	"seatingplan/seating"
)

const peopleFile = `# dinner on the 14th
Alice, host
Bob
  Carol , HOST
#Dave
Eve, guest

Smith, John
`

func TestParse(t *testing.T) {
	got, err := roster.Parse(strings.NewReader(peopleFile))
	require.NoError(t, err)

	want := []seating.Person{
		{ID: 1, Name: "Alice", Host: true},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Carol", Host: true},
		{ID: 4, Name: "Eve"},
		{ID: 5, Name: "Smith"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := roster.Parse(strings.NewReader("# nobody\n\n"))
	require.ErrorIs(t, err, roster.ErrNoPeople)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := roster.Parse(strings.NewReader("Alice, host\n , host\n"))
	require.ErrorContains(t, err, "line 2 has no name")
}

func TestParseYAML(t *testing.T) {
	got, err := roster.ParseYAML(strings.NewReader(`
people:
  - name: Alice
    host: true
  - name: Bob
`))
	require.NoError(t, err)
	require.Equal(t, []seating.Person{
		{ID: 1, Name: "Alice", Host: true},
		{ID: 2, Name: "Bob"},
	}, got)
}

func TestParseYAMLRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field": "people:\n  - name: Alice\n    vip: true\n",
		"missing name":  "people:\n  - host: true\n",
		"no people":     "people: []\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := roster.ParseYAML(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "people.txt")
	require.NoError(t, os.WriteFile(txt, []byte(peopleFile), 0o644))
	js := filepath.Join(dir, "people.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"people":[{"name":"Alice","host":true},{"name":"Bob"}]}`), 0o644))

	people, err := roster.Load(txt)
	require.NoError(t, err)
	require.Len(t, people, 5)

	people, err = roster.Load(js)
	require.NoError(t, err)
	require.Equal(t, "Bob", people[1].Name)

	_, err = roster.Load(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = roster.Load(dir)
	require.Error(t, err)
}
