package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"seatingplan/report"
	"seatingplan/roster"
	"seatingplan/seating"
)

type options struct {
	Courses         int
	Tables          int
	TablesFromHosts bool
	Seed            int64
	PeopleFile      string
	Iterations      int
	Strategies      []string
	PeopleWeight    float64
	TableWeight     float64
	Workers         int
	Chain           bool
	Output          string
}

func newOptions() *options {
	return &options{
		Courses:      4,
		Tables:       5,
		Iterations:   1000,
		Strategies:   []string{string(seating.StrategySwap)},
		PeopleWeight: seating.DefaultWeights.People,
		TableWeight:  seating.DefaultWeights.Tables,
		Workers:      1,
		Output:       "text",
	}
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.Courses, "courses", "c", o.Courses, "Number of courses.")
	fs.IntVarP(&o.Tables, "tables", "t", o.Tables, "Number of tables.")
	fs.BoolVar(&o.TablesFromHosts, "tables-from-hosts", o.TablesFromHosts, "Use one table per host instead of --tables.")
	fs.Int64VarP(&o.Seed, "seed", "s", o.Seed, "Seed for random number generation, 0 for a random seed.")
	fs.StringVarP(&o.PeopleFile, "people-file", "p", o.PeopleFile, "File of people to include, one per line as 'name[, host]'. Use # to comment someone out. .yaml/.json files are also accepted.")
	fs.IntVarP(&o.Iterations, "iterations", "i", o.Iterations, "How many iterations each strategy should try.")
	fs.StringSliceVar(&o.Strategies, "strategy", o.Strategies, "Strategies to run, in order: random, swap.")
	fs.Float64Var(&o.PeopleWeight, "people-weight", o.PeopleWeight, "Score weight for meeting different people.")
	fs.Float64Var(&o.TableWeight, "table-weight", o.TableWeight, "Score weight for sitting at different tables.")
	fs.IntVar(&o.Workers, "workers", o.Workers, "Parallel workers for the random strategy.")
	fs.BoolVar(&o.Chain, "chain", o.Chain, "Start the swap strategy from the best plan of the random strategy.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: text or json.")
}

func (o *options) validate() error {
	if o.PeopleFile == "" {
		return fmt.Errorf("--people-file is required")
	}
	if o.Iterations < 0 {
		return fmt.Errorf("--iterations must not be negative")
	}
	if o.Output != "text" && o.Output != "json" {
		return fmt.Errorf("--output must be text or json, got %q", o.Output)
	}
	return nil
}

func main() {
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "seatingplan",
		Short: "Seat people at tables over several courses so that everyone meets as many others as possible",
		Long: `seatingplan assigns people to tables for every course of a dinner.

Each table keeps one host for the whole evening while guests move between
courses. Plans are searched with random restarts ("random") and with
swap/move hill climbing ("swap"), and scored on how many different people
and tables each person gets to see.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	fs := cmd.Flags()
	opts.addFlags(fs)
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlagSet(klogFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = klog.NewContext(ctx, klog.Background())

	err := cmd.ExecuteContext(ctx)
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	logger := klog.FromContext(ctx)

	strategies, err := seating.ParseStrategies(opts.Strategies)
	if err != nil {
		return err
	}
	people, err := roster.Load(opts.PeopleFile)
	if err != nil {
		return err
	}
	tables := opts.Tables
	if opts.TablesFromHosts {
		tables = seating.TablesFromHosts(people)
	}
	scenario := seating.Numbered(people, opts.Courses, tables)
	scorer, err := seating.NewScorer(scenario, seating.Weights{People: opts.PeopleWeight, Tables: opts.TableWeight})
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if hosts := len(scenario.Hosts()); hosts < tables {
		logger.Info("Warning: fewer hosts than tables, no plan can be valid", "hosts", hosts, "tables", tables)
	}
	logger.Info("Loaded scenario", "people", len(people), "hosts", len(scenario.Hosts()), "courses", opts.Courses, "tables", tables)

	var last seating.Result
	for _, strategy := range strategies {
		var res seating.Result
		switch strategy {
		case seating.StrategyRandom:
			res, err = seating.ParallelRandomRestart(ctx, scorer, seating.ParallelParams{
				Workers:    opts.Workers,
				Iterations: opts.Iterations,
				Seed:       opts.Seed,
			}, logger.WithName("random"))
		case seating.StrategySwap:
			var initial *seating.Plan
			if opts.Chain {
				initial = last.Plan
			}
			res, err = seating.HillClimb(ctx, seating.NewRun(opts.Seed, logger.WithName("swap")), scorer, initial, opts.Iterations)
		}
		if err != nil {
			return err
		}
		if err := render(out, opts.Output, scenario, strategy, res); err != nil {
			return err
		}
		last = res
	}
	return nil
}

func render(out io.Writer, format string, scenario *seating.Scenario, strategy seating.Strategy, res seating.Result) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Strategy seating.Strategy `json:"strategy"`
			report.Summary
		}{strategy, report.Build(scenario, res.Plan, res.Score)})
	}
	if !res.Found() {
		klog.ErrorS(nil, "No valid solution found", "strategy", strategy)
		return nil
	}
	return report.WriteTable(out, scenario, res.Plan, res.Score)
}
