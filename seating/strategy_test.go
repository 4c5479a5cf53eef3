package seating_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"seatingplan/seating"
)

func newScorer(t *testing.T, c seating.Catalog) *seating.Scorer {
	t.Helper()
	sc, err := seating.NewScorer(c, seating.DefaultWeights)
	require.NoError(t, err)
	return sc
}

func TestGenerateIsValid(t *testing.T) {
	for _, tc := range []struct {
		hosts, guests, courses, tables int
	}{
		{2, 2, 2, 2},
		{5, 15, 4, 5},
		{4, 13, 3, 4},
		{3, 1, 5, 3},
	} {
		sc := newScorer(t, testScenario(tc.hosts, tc.guests, tc.courses, tc.tables))
		rng := rand.New(rand.NewSource(int64(tc.guests)))
		for range 20 {
			p := seating.Generate(sc.Catalog(), rng)
			require.Equal(t, (tc.hosts+tc.guests)*tc.courses, p.Len())
			require.True(t, sc.Score(p).Valid, "%+v", tc)
		}
	}
}

func TestGenerateSeatsEveryoneOncePerCourse(t *testing.T) {
	sc := testScenario(3, 10, 4, 3)
	p := seating.Generate(sc, rand.New(rand.NewSource(5)))

	for _, course := range sc.Courses() {
		seated := 0
		for _, table := range sc.Tables() {
			n := p.CountAt(course, table)
			// 10 guests over 3 tables deal out as 4, 3, 3
			require.GreaterOrEqual(t, n, 4)
			require.LessOrEqual(t, n, 5)
			seated += n
		}
		require.Equal(t, 13, seated)
	}
	for i, host := range sc.Hosts() {
		require.Equal(t, []seating.Table{sc.Tables()[i]}, p.TablesOf(host))
	}
}

func TestGenerateFewerHostsThanTablesIsInvalid(t *testing.T) {
	sc := newScorer(t, testScenario(2, 10, 3, 3))

	p := seating.Generate(sc.Catalog(), rand.New(rand.NewSource(1)))
	require.False(t, sc.Score(p).Valid)
}

func TestRandomRestart(t *testing.T) {
	sc := newScorer(t, testScenario(4, 12, 3, 4))
	run := seating.NewRun(42, testr.New(t))

	res, err := seating.RandomRestart(context.Background(), run, sc, 50)
	require.NoError(t, err)
	require.True(t, res.Found())
	require.Equal(t, 50, res.Iterations)
	require.Len(t, res.History, 50)
	require.GreaterOrEqual(t, res.Accepted, 1)
	for _, s := range res.History {
		require.LessOrEqual(t, s, res.Score)
	}
	require.Equal(t, seating.Score{Valid: true, Value: res.Score}, sc.Score(res.Plan))
}

func TestRandomRestartNoValidPlan(t *testing.T) {
	sc := newScorer(t, testScenario(1, 8, 2, 3))
	run := seating.NewRun(9, logr.Discard())

	res, err := seating.RandomRestart(context.Background(), run, sc, 20)
	require.NoError(t, err)
	require.False(t, res.Found())
	require.Zero(t, res.Score)
	require.Zero(t, res.Accepted)
}

func TestRandomRestartDeterministic(t *testing.T) {
	sc := newScorer(t, testScenario(4, 14, 4, 4))

	a, err := seating.RandomRestart(context.Background(), seating.NewRun(1234, logr.Discard()), sc, 40)
	require.NoError(t, err)
	b, err := seating.RandomRestart(context.Background(), seating.NewRun(1234, logr.Discard()), sc, 40)
	require.NoError(t, err)

	require.Equal(t, a.History, b.History)
	require.Equal(t, a.Score, b.Score)
	require.Equal(t, a.Plan.Seatings(), b.Plan.Seatings())
}

func TestRandomRestartCancelled(t *testing.T) {
	sc := newScorer(t, testScenario(2, 6, 2, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := seating.RandomRestart(ctx, seating.NewRun(1, logr.Discard()), sc, 10)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Iterations)
	require.False(t, res.Found())
}

func TestParallelRandomRestart(t *testing.T) {
	sc := newScorer(t, testScenario(4, 14, 4, 4))
	params := seating.ParallelParams{Workers: 3, Iterations: 31, Seed: 77}

	a, err := seating.ParallelRandomRestart(context.Background(), sc, params, logr.Discard())
	require.NoError(t, err)
	b, err := seating.ParallelRandomRestart(context.Background(), sc, params, logr.Discard())
	require.NoError(t, err)

	require.True(t, a.Found())
	require.Equal(t, 31, a.Iterations)
	require.Len(t, a.History, 31)
	require.Equal(t, a.History, b.History)
	require.Equal(t, a.Plan.Seatings(), b.Plan.Seatings())
	for _, s := range a.History {
		require.LessOrEqual(t, s, a.Score)
	}
}

func TestHillClimbNeverGetsWorse(t *testing.T) {
	sc := newScorer(t, testScenario(4, 13, 4, 4))
	run := seating.NewRun(2024, testr.New(t))

	res, err := seating.HillClimb(context.Background(), run, sc, nil, 300)
	require.NoError(t, err)
	require.True(t, res.Found())
	require.Equal(t, 300, res.Iterations)
	require.Len(t, res.History, 300)
	for i := 1; i < len(res.History); i++ {
		require.GreaterOrEqual(t, res.History[i], res.History[i-1], "iteration %d", i)
	}
	require.Equal(t, res.History[len(res.History)-1], res.Score)
	require.Equal(t, seating.Score{Valid: true, Value: res.Score}, sc.Score(res.Plan))
}

func TestHillClimbImprovesOnSeed(t *testing.T) {
	sc := newScorer(t, testScenario(4, 13, 4, 4))
	run := seating.NewRun(8, logr.Discard())
	seed := seating.Generate(sc.Catalog(), run.Rand)
	seedScore := sc.Score(seed)
	before := seed.Seatings()

	res, err := seating.HillClimb(context.Background(), run, sc, seed, 500)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.Score, seedScore.Value)
	require.Equal(t, before, seed.Seatings(), "the seed plan must not be modified")
	require.Equal(t, seed.Len(), res.Plan.Len())
}

func TestHillClimbDeterministic(t *testing.T) {
	sc := newScorer(t, testScenario(3, 11, 3, 3))

	a, err := seating.HillClimb(context.Background(), seating.NewRun(99, logr.Discard()), sc, nil, 200)
	require.NoError(t, err)
	b, err := seating.HillClimb(context.Background(), seating.NewRun(99, logr.Discard()), sc, nil, 200)
	require.NoError(t, err)

	require.Equal(t, a.History, b.History)
	require.Equal(t, a.Accepted, b.Accepted)
	require.Equal(t, a.Plan.Seatings(), b.Plan.Seatings())
}

func TestHillClimbInvalidSeed(t *testing.T) {
	sc := newScorer(t, testScenario(1, 8, 2, 3))

	res, err := seating.HillClimb(context.Background(), seating.NewRun(5, logr.Discard()), sc, nil, 50)
	require.NoError(t, err)
	require.False(t, res.Found())
	require.Zero(t, res.Score)
	require.Zero(t, res.Accepted)
}

func TestParseStrategies(t *testing.T) {
	got, err := seating.ParseStrategies([]string{"Random, swap", "random"})
	require.NoError(t, err)
	require.Equal(t, []seating.Strategy{seating.StrategyRandom, seating.StrategySwap}, got)

	_, err = seating.ParseStrategies([]string{"walk"})
	require.Error(t, err)

	_, err = seating.ParseStrategies(nil)
	require.Error(t, err)
}

func TestStrategiesAgreeOnZeroWeights(t *testing.T) {
	sc, err := seating.NewScorer(testScenario(3, 9, 3, 3), seating.Weights{})
	require.NoError(t, err)

	random, err := seating.RandomRestart(context.Background(), seating.NewRun(8, logr.Discard()), sc, 10)
	require.NoError(t, err)
	require.True(t, random.Found())
	require.Zero(t, random.Score)
	require.Equal(t, 1, random.Accepted)

	climb, err := seating.HillClimb(context.Background(), seating.NewRun(8, logr.Discard()), sc, nil, 10)
	require.NoError(t, err)
	require.True(t, climb.Found())
	require.Zero(t, climb.Score)

	parallel, err := seating.ParallelRandomRestart(context.Background(), sc, seating.ParallelParams{Workers: 2, Iterations: 10, Seed: 8}, logr.Discard())
	require.NoError(t, err)
	require.True(t, parallel.Found())
}
