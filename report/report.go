package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"seatingplan/seating"
)

const colWidth = 12

var hostName = color.New(color.Bold, color.FgCyan)

type Summary struct {
	Found   bool            `json:"found"`
	Score   float64         `json:"score"`
	Courses []CourseSeating `json:"courses,omitempty"`
	People  []PersonStats   `json:"people,omitempty"`
}

type CourseSeating struct {
	Course string         `json:"course"`
	Tables []TableSeating `json:"tables"`
}

type TableSeating struct {
	Table  string   `json:"table"`
	People []string `json:"people"`
}

type PersonStats struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Host bool   `json:"host,omitempty"`
	// Tables has one entry per course, empty when unseated.
	Tables         []string `json:"tables"`
	PeopleMet      int      `json:"people_met"`
	DistinctTables int      `json:"distinct_tables"`
}

// Build summarises a plan for serialisation. A nil plan gives a summary
// with Found false.
func Build(c seating.Catalog, plan *seating.Plan, score float64) Summary {
	if plan == nil {
		return Summary{}
	}
	s := Summary{Found: true, Score: score}
	for _, course := range c.Courses() {
		cs := CourseSeating{Course: course.Name}
		for _, table := range c.Tables() {
			ts := TableSeating{Table: table.Name, People: []string{}}
			for _, p := range plan.PeopleAt(course, table) {
				ts.People = append(ts.People, p.Name)
			}
			cs.Tables = append(cs.Tables, ts)
		}
		s.Courses = append(s.Courses, cs)
	}
	for _, p := range c.People() {
		ps := PersonStats{
			ID:             p.ID,
			Name:           p.Name,
			Host:           p.Host,
			PeopleMet:      len(plan.PeopleMetBy(p)),
			DistinctTables: plan.DistinctTables(p),
		}
		for _, course := range c.Courses() {
			table, _ := plan.TableFor(p, course)
			ps.Tables = append(ps.Tables, table.Name)
		}
		s.People = append(s.People, ps)
	}
	return s
}

// WriteTable renders one row per person with their table for each course,
// how many people they met and how many tables they sat at.
func WriteTable(w io.Writer, c seating.Catalog, a seating.Assignments, score float64) error {
	bw := bufio.NewWriter(w)
	courses := c.Courses()

	fmt.Fprintf(bw, "\nSolution score %f\n\n", score)
	for row := range 2 {
		cell := func(title string) string {
			if row == 0 {
				return pad(title)
			}
			return strings.Repeat("-", colWidth)
		}
		bw.WriteString("| " + cell("Name") + " | ")
		for i, course := range courses {
			bw.WriteString(cell(course.Name))
			if i < len(courses)-1 {
				bw.WriteString(" | ")
			}
		}
		bw.WriteString(" | " + cell("# People") + " | " + cell("# Tables") + " |\n")
	}

	for _, p := range c.People() {
		name := pad(p.Name)
		if p.Host {
			name = hostName.Sprint(name)
		}
		bw.WriteString("| " + name + " | ")
		for _, course := range courses {
			if table, ok := a.TableFor(p, course); ok {
				bw.WriteString(pad(table.Name))
			} else {
				bw.WriteString(strings.Repeat("-", colWidth))
			}
			bw.WriteString(" | ")
		}
		bw.WriteString(pad(strconv.Itoa(len(a.PeopleMetBy(p)))) + " | ")
		bw.WriteString(pad(strconv.Itoa(a.DistinctTables(p))) + " |\n")
	}

	bw.WriteString("|" + strings.Repeat("-", colWidth+2+(len(courses)+2)*(colWidth+3)) + "|\n")
	return bw.Flush()
}

func pad(s string) string {
	r := []rune(s)
	if len(r) > colWidth {
		r = r[:colWidth]
	}
	return string(r) + strings.Repeat(" ", colWidth-len(r))
}
