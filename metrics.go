package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seatingplan/seating"
)

type solveMetrics struct {
	registry *prometheus.Registry
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	score    *prometheus.HistogramVec
}

func newSolveMetrics() *solveMetrics {
	m := &solveMetrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seatingplan_solves_total",
			Help: "Solve requests by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seatingplan_solve_duration_seconds",
			Help:    "Time spent searching for a plan.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"strategy"}),
		score: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seatingplan_solve_score",
			Help:    "Score of the best plan found.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"strategy"}),
	}
	m.registry.MustRegister(
		m.solves,
		m.duration,
		m.score,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *solveMetrics) observe(strategy string, res seating.Result, err error, elapsed time.Duration) {
	outcome := "found"
	switch {
	case err != nil:
		outcome = "error"
	case !res.Found():
		outcome = "not_found"
	}
	m.solves.WithLabelValues(strategy, outcome).Inc()
	m.duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if res.Found() {
		m.score.WithLabelValues(strategy).Observe(res.Score)
	}
}

func (m *solveMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
