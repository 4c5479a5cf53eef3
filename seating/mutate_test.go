package seating

import (
	"math/rand"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

// unevenCourse seats one course as Table 1: host, Ann, Bea and Table 2:
// host, Cid.
func unevenCourse() (*Plan, []Course, []Person, [2]Table) {
	hostA := Person{ID: 1, Name: "Hal", Host: true}
	hostB := Person{ID: 2, Name: "Hob", Host: true}
	ann := Person{ID: 3, Name: "Ann"}
	bea := Person{ID: 4, Name: "Bea"}
	cid := Person{ID: 5, Name: "Cid"}
	course := Course{ID: 1, Name: "Course 1"}
	tables := [2]Table{{ID: 1, Name: "Table 1"}, {ID: 2, Name: "Table 2"}}

	p := NewPlan()
	p.Add(hostA, course, tables[0])
	p.Add(ann, course, tables[0])
	p.Add(bea, course, tables[0])
	p.Add(hostB, course, tables[1])
	p.Add(cid, course, tables[1])
	return p, []Course{course}, []Person{hostA, hostB, ann, bea, cid}, tables
}

func TestMutate(t *testing.T) {
	var moves, swaps, hosts, same, sameTable int
	for seed := int64(1); seed <= 400; seed++ {
		plan, courses, people, tables := unevenCourse()
		before := plan.Seatings()

		// Replay the draws mutate makes from the same source.
		draw := rand.New(rand.NewSource(seed))
		course := courses[draw.Intn(len(courses))]
		a := people[draw.Intn(len(people))]
		b := people[draw.Intn(len(people))]

		run := &Run{Rand: rand.New(rand.NewSource(seed)), Log: logr.Discard()}
		next, ok := mutate(run, plan, courses, people)
		require.Equal(t, before, plan.Seatings(), "seed %d changed the input plan", seed)

		ta, _ := plan.TableFor(a, course)
		tb, _ := plan.TableFor(b, course)
		switch {
		case a.Host || b.Host:
			hosts++
			require.False(t, ok)
			require.Nil(t, next)
			continue
		case a.ID == b.ID:
			same++
			require.False(t, ok)
			require.Nil(t, next)
			continue
		case ta.ID == tb.ID:
			sameTable++
			require.False(t, ok)
			require.Nil(t, next)
			continue
		}

		require.True(t, ok)
		require.Equal(t, plan.Len(), next.Len())
		fuller, emptier := a, b
		if ta.ID == tables[1].ID {
			fuller, emptier = b, a
		}
		if draw.Intn(2) == 0 {
			moves++
			got, _ := next.TableFor(fuller, course)
			require.Equal(t, tables[1], got, "seed %d", seed)
			got, _ = next.TableFor(emptier, course)
			require.Equal(t, tables[1], got, "seed %d", seed)
			require.Equal(t, 2, next.CountAt(course, tables[0]))
			require.Equal(t, 3, next.CountAt(course, tables[1]))
		} else {
			swaps++
			got, _ := next.TableFor(a, course)
			require.Equal(t, tb, got, "seed %d", seed)
			got, _ = next.TableFor(b, course)
			require.Equal(t, ta, got, "seed %d", seed)
			require.Equal(t, 3, next.CountAt(course, tables[0]))
			require.Equal(t, 2, next.CountAt(course, tables[1]))
		}
	}

	require.NotZero(t, moves)
	require.NotZero(t, swaps)
	require.NotZero(t, hosts)
	require.NotZero(t, same)
	require.NotZero(t, sameTable)
}
