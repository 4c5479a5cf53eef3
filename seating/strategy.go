package seating

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategySwap   Strategy = "swap"
)

// ParseStrategies accepts names such as "random", "swap" or "random,swap"
// and keeps their order, dropping repeats.
func ParseStrategies(names []string) ([]Strategy, error) {
	var out []Strategy
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			s := Strategy(strings.ToLower(strings.TrimSpace(part)))
			switch s {
			case "":
				continue
			case StrategyRandom, StrategySwap:
			default:
				return nil, fmt.Errorf("unknown strategy %q (want random or swap)", part)
			}
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no strategy selected")
	}
	return out, nil
}

// Result is the outcome of one search. Plan is nil when no valid plan was
// found.
type Result struct {
	Plan       *Plan
	Score      float64
	Iterations int
	Accepted   int
	// History holds one score per iteration: the candidate's score for
	// random restarts, the current score after the iteration for hill
	// climbing.
	History []float64
}

func (r Result) Found() bool {
	return r.Plan != nil
}

type tracker struct {
	best  *Plan
	score float64
}

// add keeps p if it is the first valid plan or scores strictly higher than
// the best so far.
func (t *tracker) add(p *Plan, s Score) bool {
	if !s.Valid || (t.best != nil && s.Value <= t.score) {
		return false
	}
	t.best, t.score = p, s.Value
	return true
}

// RandomRestart generates iterations independent plans and keeps the best
// valid one. Ties keep the earlier plan.
func RandomRestart(ctx context.Context, run *Run, sc *Scorer, iterations int) (Result, error) {
	start := time.Now()
	res := Result{History: make([]float64, 0, max(iterations, 0))}
	var t tracker
	var err error
	for i := range iterations {
		if err = ctx.Err(); err != nil {
			break
		}
		plan := Generate(sc.Catalog(), run.Rand)
		s := sc.Score(plan)
		res.Iterations++
		res.History = append(res.History, s.Value)
		if t.add(plan, s) {
			res.Accepted++
			run.Log.V(1).Info("Keeping better plan", "iteration", i, "score", s.Value)
		} else {
			run.Log.V(2).Info("Discarding plan", "iteration", i, "score", s.Value, "valid", s.Valid)
		}
	}
	res.Plan, res.Score = t.best, t.score
	run.Log.Info("Random restart finished", "iterations", res.Iterations, "improvements", res.Accepted,
		"score", res.Score, "found", res.Found(), "elapsed", time.Since(start))
	return res, err
}

type ParallelParams struct {
	Workers    int
	Iterations int
	Seed       int64
}

// ParallelRandomRestart splits the iterations of a random restart search
// across workers, each with its own random source derived from Seed, and
// keeps the best plan. For a non-zero seed the result depends only on the
// catalog, the seed, the worker count and the iteration count.
func ParallelRandomRestart(ctx context.Context, sc *Scorer, params ParallelParams, log logr.Logger) (Result, error) {
	workers := max(params.Workers, 1)
	workers = min(workers, max(params.Iterations, 1))
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make([]Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := params.Iterations / workers
		if w < params.Iterations%workers {
			n++
		}
		run := NewRun(seed+int64(w)*31337, log.WithValues("worker", w))
		g.Go(func() error {
			r, err := RandomRestart(gctx, run, sc, n)
			results[w] = r
			return err
		})
	}
	err := g.Wait()

	var out Result
	var t tracker
	for _, r := range results {
		out.Iterations += r.Iterations
		out.History = append(out.History, r.History...)
		if r.Plan != nil && t.add(r.Plan, Score{Valid: true, Value: r.Score}) {
			out.Accepted++
		}
	}
	out.Plan, out.Score = t.best, t.score
	return out, err
}

// HillClimb improves a plan one random change at a time: each iteration
// picks a course and two guests, and either swaps their tables or moves one
// of them to the emptier table. The change is made on a copy and kept only
// if it scores strictly higher, or is valid while the current plan is not.
// A nil initial plan is replaced by a generated one.
func HillClimb(ctx context.Context, run *Run, sc *Scorer, initial *Plan, iterations int) (Result, error) {
	start := time.Now()
	c := sc.Catalog()
	courses, people := c.Courses(), c.People()

	current := initial
	if current == nil {
		current = Generate(c, run.Rand)
	}
	score := sc.Score(current)
	run.Log.V(1).Info("Initial plan", "score", score.Value, "valid", score.Valid)

	res := Result{History: make([]float64, 0, max(iterations, 0))}
	var err error
	for i := range iterations {
		if err = ctx.Err(); err != nil {
			break
		}
		res.Iterations++
		if next, ok := mutate(run, current, courses, people); ok {
			s := sc.Score(next)
			if s.Value > score.Value || (s.Valid && !score.Valid) {
				run.Log.V(1).Info("Keeping better plan", "iteration", i, "score", s.Value, "previous", score.Value)
				current, score = next, s
				res.Accepted++
			} else {
				run.Log.V(2).Info("Reverting plan", "iteration", i, "score", s.Value, "current", score.Value)
			}
		} else {
			run.Log.V(2).Info("Skipping iteration", "iteration", i)
		}
		res.History = append(res.History, score.Value)
	}

	if score.Valid {
		res.Plan, res.Score = current, score.Value
	}
	run.Log.Info("Hill climbing finished", "iterations", res.Iterations, "improvements", res.Accepted,
		"score", res.Score, "found", res.Found(), "elapsed", time.Since(start))
	return res, err
}

// mutate returns a changed copy of plan, or false when the random draw
// cannot change anything: a host or the same person drawn twice, someone
// unseated, or both already at the same table.
func mutate(run *Run, plan *Plan, courses []Course, people []Person) (*Plan, bool) {
	if len(courses) == 0 || len(people) == 0 {
		return nil, false
	}
	course := courses[run.Rand.Intn(len(courses))]
	a := people[run.Rand.Intn(len(people))]
	b := people[run.Rand.Intn(len(people))]
	if a.Host || b.Host || a.ID == b.ID {
		return nil, false
	}
	ta, okA := plan.TableFor(a, course)
	tb, okB := plan.TableFor(b, course)
	if !okA || !okB || ta.ID == tb.ID {
		return nil, false
	}

	next := plan.Clone()
	na, nb := plan.CountAt(course, ta), plan.CountAt(course, tb)
	var changed bool
	switch {
	case na != nb && run.Rand.Intn(2) == 0:
		if na > nb {
			changed = next.Move(a, course, tb)
		} else {
			changed = next.Move(b, course, ta)
		}
	default:
		changed = next.Swap(course, a, b)
	}
	return next, changed
}
