package seating

type Score struct {
	Valid bool
	Value float64
}

type Scorer struct {
	catalog     Catalog
	weights     Weights
	hosts       []Person
	guests      []Person
	maxMeetable float64
	maxTables   float64
}

// NewScorer validates c and w and returns a scorer bound to them.
func NewScorer(c Catalog, w Weights) (*Scorer, error) {
	if err := Validate(c, w); err != nil {
		return nil, err
	}
	courses, tables := len(c.Courses()), len(c.Tables())
	return &Scorer{
		catalog:     c,
		weights:     w,
		hosts:       hostsOf(c),
		guests:      guestsOf(c),
		maxMeetable: float64(maxPeopleMeetable(len(c.People()), courses, tables)),
		maxTables:   float64(min(tables, courses)),
	}, nil
}

func (s *Scorer) Catalog() Catalog { return s.catalog }
func (s *Scorer) Weights() Weights { return s.weights }

// Valid checks the hard constraints: one host per table in every course,
// and every host at a single table for the whole event.
func (s *Scorer) Valid(a Assignments) bool {
	for _, table := range s.catalog.Tables() {
		for _, course := range s.catalog.Courses() {
			if a.CountHosts(course, table) != 1 {
				return false
			}
		}
	}
	for _, host := range s.hosts {
		if a.DistinctTables(host) != 1 {
			return false
		}
	}
	return true
}

func (s *Scorer) Score(a Assignments) Score {
	if !s.Valid(a) {
		return Score{}
	}
	var people float64
	for _, p := range s.catalog.People() {
		people += ratio(len(a.PeopleMetBy(p)), s.maxMeetable)
	}
	var tables float64
	for _, p := range s.guests {
		tables += ratio(a.DistinctTables(p), s.maxTables)
	}
	value := mean(people, len(s.catalog.People()))*s.weights.People + mean(tables, len(s.guests))*s.weights.Tables
	return Score{Valid: true, Value: value}
}

func ratio(n int, ceiling float64) float64 {
	return min(float64(n)/ceiling, 1)
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
