package seating

import (
	"math/rand"
	"slices"
)

// Generate fills a new plan course by course: the i-th host takes the i-th
// table, then the guests are shuffled and dealt round-robin across the
// tables in order. Each course gets its own shuffle.
func Generate(c Catalog, rng *rand.Rand) *Plan {
	tables := c.Tables()
	hosts, guests := hostsOf(c), guestsOf(c)
	plan := &Plan{seatings: make([]Seating, 0, len(c.People())*len(c.Courses()))}
	if len(tables) == 0 {
		return plan
	}
	shuffled := slices.Clone(guests)
	for _, course := range c.Courses() {
		for i, host := range hosts {
			plan.Add(host, course, tables[i%len(tables)])
		}
		copy(shuffled, guests)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for i, guest := range shuffled {
			plan.Add(guest, course, tables[i%len(tables)])
		}
	}
	return plan
}
