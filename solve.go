package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"seatingplan/report"
	"seatingplan/seating"
)

const (
	strategyBoth = "both"
	// maxIterationFactor bounds a request's iterations relative to the
	// event's stored count.
	maxIterationFactor = 100
)

type solveRequest struct {
	Strategy   string `json:"strategy"`
	Iterations *int   `json:"iterations"`
	Seed       int64  `json:"seed"`
}

// decodeSolveRequest reads an optional JSON body. Missing fields fall back
// to hill climbing with the event's iteration count; requested iterations
// may not exceed maxIterationFactor times that count.
func decodeSolveRequest(r io.Reader, defaultIterations int) (solveRequest, int, error) {
	var req solveRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, 0, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Strategy == "" {
		req.Strategy = string(seating.StrategySwap)
	}
	switch req.Strategy {
	case string(seating.StrategyRandom), string(seating.StrategySwap), strategyBoth:
	default:
		return req, 0, fmt.Errorf("unknown strategy %q", req.Strategy)
	}
	iterations := defaultIterations
	if req.Iterations != nil {
		if *req.Iterations < 1 {
			return req, 0, fmt.Errorf("iterations must be at least 1")
		}
		if limit := max(defaultIterations, 1) * maxIterationFactor; *req.Iterations > limit {
			return req, 0, fmt.Errorf("iterations must be at most %d", limit)
		}
		iterations = *req.Iterations
	}
	return req, iterations, nil
}

// solve runs the requested strategy. "both" climbs from the best random
// restart.
func solve(ctx context.Context, sc *seating.Scorer, strategy string, iterations int, seed int64, log logr.Logger) (seating.Result, error) {
	var initial *seating.Plan
	if strategy != string(seating.StrategySwap) {
		res, err := seating.RandomRestart(ctx, seating.NewRun(seed, log.WithName("random")), sc, iterations)
		if err != nil || strategy == string(seating.StrategyRandom) {
			return res, err
		}
		initial = res.Plan
	}
	return seating.HillClimb(ctx, seating.NewRun(seed, log.WithName("swap")), sc, initial, iterations)
}

func handleSolve(db *sql.DB, metrics *solveMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, eventID, ok := requireEventAdmin(db, w, r)
		if !ok {
			return
		}

		var e event
		if err := scanEvent(db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = $1", eventID), &e); err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		req, iterations, err := decodeSolveRequest(r.Body, e.Iterations)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		stored, err := loadPeople(db, eventID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		people := make([]seating.Person, len(stored))
		for i, p := range stored {
			people[i] = seating.Person{ID: int(p.ID), Name: p.Name, Host: p.Host}
		}
		scenario := seating.Numbered(people, e.Courses, e.Tables)
		scorer, err := seating.NewScorer(scenario, seating.Weights{People: e.PeopleWeight, Tables: e.TableWeight})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		runID := uuid.NewString()
		log := klog.FromContext(r.Context()).WithValues("event", eventID, "run", runID)
		if hosts := len(scenario.Hosts()); hosts < e.Tables {
			log.Info("Fewer hosts than tables, no plan can be valid", "hosts", hosts, "tables", e.Tables)
		}

		start := time.Now()
		res, err := solve(r.Context(), scorer, req.Strategy, iterations, req.Seed, log)
		metrics.observe(req.Strategy, res, err, time.Since(start))
		if err != nil {
			log.Error(err, "Solve interrupted")
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			RunID    string `json:"run_id"`
			Strategy string `json:"strategy"`
			report.Summary
		}{runID, req.Strategy, report.Build(scenario, res.Plan, res.Score)})
	}
}
