package seating

import "slices"

// Seating records that Person sits at Table during Course.
type Seating struct {
	Person Person
	Course Course
	Table  Table
}

// Assignments is the read side of a seating plan, as needed by the scorer
// and by report rendering.
type Assignments interface {
	TableFor(person Person, course Course) (Table, bool)
	CountHosts(course Course, table Table) int
	DistinctTables(person Person) int
	PeopleMetBy(person Person) []Person
	PeopleAt(course Course, table Table) []Person
}

// Plan is a flat list of seatings. Queries scan the whole list; plans hold
// people × courses entries, which stays small for a dinner.
//
// Add does not check for an existing seating of the same person and course.
// Swap and Move keep the number of seatings unchanged.
type Plan struct {
	seatings []Seating
}

func NewPlan() *Plan {
	return &Plan{}
}

func (p *Plan) Add(person Person, course Course, table Table) {
	p.seatings = append(p.seatings, Seating{Person: person, Course: course, Table: table})
}

func (p *Plan) Len() int {
	return len(p.seatings)
}

func (p *Plan) Seatings() []Seating {
	return slices.Clone(p.seatings)
}

// Clone returns an independent copy. Seatings hold only values, so cloning
// the slice is a deep copy.
func (p *Plan) Clone() *Plan {
	return &Plan{seatings: slices.Clone(p.seatings)}
}

func (p *Plan) indexOf(person Person, course Course) int {
	return slices.IndexFunc(p.seatings, func(s Seating) bool {
		return s.Person.ID == person.ID && s.Course.ID == course.ID
	})
}

func (p *Plan) TableFor(person Person, course Course) (Table, bool) {
	i := p.indexOf(person, course)
	if i < 0 {
		return Table{}, false
	}
	return p.seatings[i].Table, true
}

func (p *Plan) CountHosts(course Course, table Table) int {
	n := 0
	for _, s := range p.seatings {
		if s.Person.Host && s.Course.ID == course.ID && s.Table.ID == table.ID {
			n++
		}
	}
	return n
}

// CountAt is the number of people seated at table during course.
func (p *Plan) CountAt(course Course, table Table) int {
	n := 0
	for _, s := range p.seatings {
		if s.Course.ID == course.ID && s.Table.ID == table.ID {
			n++
		}
	}
	return n
}

func (p *Plan) DistinctTables(person Person) int {
	return len(p.TablesOf(person))
}

// TablesOf lists the distinct tables person sits at, in first-seen order.
func (p *Plan) TablesOf(person Person) []Table {
	var tables []Table
	for _, s := range p.seatings {
		if s.Person.ID != person.ID {
			continue
		}
		if !slices.ContainsFunc(tables, func(t Table) bool { return t.ID == s.Table.ID }) {
			tables = append(tables, s.Table)
		}
	}
	return tables
}

func (p *Plan) PeopleAt(course Course, table Table) []Person {
	var people []Person
	for _, s := range p.seatings {
		if s.Course.ID == course.ID && s.Table.ID == table.ID {
			people = append(people, s.Person)
		}
	}
	return people
}

// PeopleMetBy returns everyone who shares a table with person in any
// course, without duplicates and without person itself, sorted by id.
func (p *Plan) PeopleMetBy(person Person) []Person {
	seen := map[int]bool{person.ID: true}
	var met []Person
	for _, s := range p.seatings {
		if s.Person.ID != person.ID {
			continue
		}
		for _, other := range p.PeopleAt(s.Course, s.Table) {
			if seen[other.ID] {
				continue
			}
			seen[other.ID] = true
			met = append(met, other)
		}
	}
	slices.SortFunc(met, func(a, b Person) int { return a.ID - b.ID })
	return met
}

// Swap exchanges the tables of a and b for course. It reports false, leaving
// the plan untouched, when either of them has no seating for course.
func (p *Plan) Swap(course Course, a, b Person) bool {
	ia, ib := p.indexOf(a, course), p.indexOf(b, course)
	if ia < 0 || ib < 0 || ia == ib {
		return false
	}
	sa, sb := p.seatings[ia], p.seatings[ib]
	p.seatings = slices.Delete(p.seatings, max(ia, ib), max(ia, ib)+1)
	p.seatings = slices.Delete(p.seatings, min(ia, ib), min(ia, ib)+1)
	p.Add(sb.Person, course, sa.Table)
	p.Add(sa.Person, course, sb.Table)
	return true
}

// Move reseats person at table for course. It reports false, leaving the
// plan untouched, when person has no seating for course or already sits at
// table.
func (p *Plan) Move(person Person, course Course, table Table) bool {
	i := p.indexOf(person, course)
	if i < 0 || p.seatings[i].Table.ID == table.ID {
		return false
	}
	s := p.seatings[i]
	p.seatings = slices.Delete(p.seatings, i, i+1)
	p.Add(s.Person, course, table)
	return true
}
