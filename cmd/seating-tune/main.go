package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"seatingplan/roster"
	"seatingplan/seating"
)

// planKey identifies a plan independently of the order its seatings were
// added in.
func planKey(p *seating.Plan) string {
	seats := p.Seatings()
	slices.SortFunc(seats, func(a, b seating.Seating) int {
		if a.Course.ID != b.Course.ID {
			return a.Course.ID - b.Course.ID
		}
		if a.Table.ID != b.Table.ID {
			return a.Table.ID - b.Table.ID
		}
		return a.Person.ID - b.Person.ID
	})
	var buf strings.Builder
	course, table := -1, -1
	for _, s := range seats {
		if s.Course.ID != course {
			buf.WriteByte('|')
			course, table = s.Course.ID, -1
		}
		if s.Table.ID != table {
			buf.WriteByte(';')
			table = s.Table.ID
		}
		buf.WriteString(strconv.Itoa(s.Person.ID))
		buf.WriteByte(',')
	}
	return buf.String()
}

type runResult struct {
	found    bool
	score    float64
	key      string
	accepted int
	elapsed  time.Duration
}

func printStats(w io.Writer, label string, results []runResult) {
	runs := len(results)
	if runs == 0 {
		fmt.Fprintf(w, "--- %s ---\n  no runs\n\n", label)
		return
	}
	scores := map[float64]int{}
	plans := map[string]int{}
	var totalTime time.Duration
	var totalAccepted int

	found := 0
	for _, r := range results {
		totalTime += r.elapsed
		totalAccepted += r.accepted
		if !r.found {
			continue
		}
		found++
		scores[math.Round(r.score*1e4)/1e4]++
		plans[r.key]++
	}

	fmt.Fprintf(w, "--- %s ---\n", label)
	fmt.Fprintf(w, "  avg time: %v\n", totalTime/time.Duration(runs))
	fmt.Fprintf(w, "  runs with a valid plan: %d/%d\n", found, runs)

	var scoreList []struct {
		score float64
		count int
	}
	for s, c := range scores {
		scoreList = append(scoreList, struct {
			score float64
			count int
		}{s, c})
	}
	sort.Slice(scoreList, func(i, j int) bool { return scoreList[i].score > scoreList[j].score })

	fmt.Fprintf(w, "  score distribution:\n")
	for _, sc := range scoreList {
		fmt.Fprintf(w, "    score %.4f: %d/%d runs (%.0f%%)\n", sc.score, sc.count, runs, float64(sc.count)/float64(runs)*100)
	}

	fmt.Fprintf(w, "  unique plans seen: %d\n", len(plans))
	fmt.Fprintf(w, "  avg improvements per run: %.1f\n", float64(totalAccepted)/float64(runs))

	stableCount := 0
	for _, c := range plans {
		if c == runs {
			stableCount++
		}
	}
	fmt.Fprintf(w, "  plans found in all runs: %d\n", stableCount)
	fmt.Fprintln(w)
}

func main() {
	peopleFile := pflag.StringP("people-file", "p", "", "people file to seat")
	courses := pflag.IntP("courses", "c", 4, "number of courses")
	tables := pflag.IntP("tables", "t", 5, "number of tables, 0 for one per host")
	runs := pflag.Int("runs", 20, "number of runs per parameter set")
	algo := pflag.String("algo", "both", "algorithm: random, swap, chain, both, all")
	iterations := pflag.String("iterations", "100,1000", "comma-separated iteration counts")
	workers := pflag.Int("workers", 1, "parallel workers for random restarts")
	peopleWeight := pflag.Float64("people-weight", seating.DefaultWeights.People, "score weight for people met")
	tableWeight := pflag.Float64("table-weight", seating.DefaultWeights.Tables, "score weight for distinct tables")
	pflag.Parse()

	if *peopleFile == "" {
		fmt.Fprintln(os.Stderr, "--people-file is required")
		os.Exit(1)
	}
	if *runs < 1 {
		fmt.Fprintln(os.Stderr, "--runs must be at least 1")
		os.Exit(1)
	}
	people, err := roster.Load(*peopleFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading people: %v\n", err)
		os.Exit(1)
	}
	numTables := *tables
	if numTables == 0 {
		numTables = seating.TablesFromHosts(people)
	}
	scenario := seating.Numbered(people, *courses, numTables)
	scorer, err := seating.NewScorer(scenario, seating.Weights{People: *peopleWeight, Tables: *tableWeight})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("People: %d, Hosts: %d, Courses: %d, Tables: %d\n", len(people), len(scenario.Hosts()), *courses, numTables)
	fmt.Printf("Weights: people %.2f, tables %.2f\n", *peopleWeight, *tableWeight)
	fmt.Printf("Runs per config: %d\n\n", *runs)

	ctx := context.Background()
	log := logr.Discard()

	type search func(seed int64, n int) (seating.Result, error)
	random := func(seed int64, n int) (seating.Result, error) {
		return seating.ParallelRandomRestart(ctx, scorer, seating.ParallelParams{Workers: *workers, Iterations: n, Seed: seed}, log)
	}
	swap := func(seed int64, n int) (seating.Result, error) {
		return seating.HillClimb(ctx, seating.NewRun(seed, log), scorer, nil, n)
	}
	chain := func(seed int64, n int) (seating.Result, error) {
		first, err := random(seed, n)
		if err != nil {
			return first, err
		}
		return seating.HillClimb(ctx, seating.NewRun(seed, log), scorer, first.Plan, n)
	}

	algos := []struct {
		name   string
		run    search
		groups []string
	}{
		{"random", random, []string{"random", "both", "all"}},
		{"swap", swap, []string{"swap", "both", "all"}},
		{"chain", chain, []string{"chain", "all"}},
	}

	for _, a := range algos {
		if !slices.Contains(a.groups, *algo) {
			continue
		}
		for _, n := range parseIntList(*iterations) {
			var results []runResult
			for run := range *runs {
				// Seed 0 would mean "from the clock".
				seed := int64((run + 1) * 31337)
				start := time.Now()
				res, err := a.run(seed, n)
				elapsed := time.Since(start)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s run %d: %v\n", a.name, run, err)
					os.Exit(1)
				}
				r := runResult{found: res.Found(), score: res.Score, accepted: res.Accepted, elapsed: elapsed}
				if r.found {
					r.key = planKey(res.Plan)
				}
				results = append(results, r)
			}
			label := fmt.Sprintf("%s iterations=%d", a.name, n)
			if a.name != "swap" {
				label += fmt.Sprintf(" workers=%d", *workers)
			}
			printStats(os.Stdout, label, results)
		}
	}
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	var result []int
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			result = append(result, v)
		}
	}
	return result
}
