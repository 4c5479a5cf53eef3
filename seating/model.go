package seating

import (
	"fmt"
	"slices"
)

type Person struct {
	ID   int
	Name string
	Host bool
}

type Course struct {
	ID   int
	Name string
}

type Table struct {
	ID   int
	Name string
}

// Catalog is the read-only description of one event: who attends, how many
// seating rounds there are and which tables exist. Callers must not modify
// the returned slices.
type Catalog interface {
	People() []Person
	Courses() []Course
	Tables() []Table
}

type Scenario struct {
	people  []Person
	courses []Course
	tables  []Table
	hosts   []Person
	guests  []Person
}

func NewScenario(people []Person, courses []Course, tables []Table) *Scenario {
	s := &Scenario{
		people:  slices.Clone(people),
		courses: slices.Clone(courses),
		tables:  slices.Clone(tables),
	}
	for _, p := range s.people {
		if p.Host {
			s.hosts = append(s.hosts, p)
		} else {
			s.guests = append(s.guests, p)
		}
	}
	return s
}

// Numbered builds a scenario with courses "Course 1".."Course n" and tables
// "Table 1".."Table n".
func Numbered(people []Person, numCourses, numTables int) *Scenario {
	courses := make([]Course, 0, numCourses)
	for i := range numCourses {
		courses = append(courses, Course{ID: i + 1, Name: fmt.Sprintf("Course %d", i+1)})
	}
	tables := make([]Table, 0, numTables)
	for i := range numTables {
		tables = append(tables, Table{ID: i + 1, Name: fmt.Sprintf("Table %d", i+1)})
	}
	return NewScenario(people, courses, tables)
}

// TablesFromHosts returns the number of hosts in people, for callers that
// seat exactly one host per table instead of taking a table count.
func TablesFromHosts(people []Person) int {
	n := 0
	for _, p := range people {
		if p.Host {
			n++
		}
	}
	return n
}

func (s *Scenario) People() []Person  { return s.people }
func (s *Scenario) Courses() []Course { return s.courses }
func (s *Scenario) Tables() []Table   { return s.tables }
func (s *Scenario) Hosts() []Person   { return s.hosts }
func (s *Scenario) Guests() []Person  { return s.guests }

func hostsOf(c Catalog) []Person {
	if s, ok := c.(*Scenario); ok {
		return s.hosts
	}
	var hosts []Person
	for _, p := range c.People() {
		if p.Host {
			hosts = append(hosts, p)
		}
	}
	return hosts
}

func guestsOf(c Catalog) []Person {
	if s, ok := c.(*Scenario); ok {
		return s.guests
	}
	var guests []Person
	for _, p := range c.People() {
		if !p.Host {
			guests = append(guests, p)
		}
	}
	return guests
}
