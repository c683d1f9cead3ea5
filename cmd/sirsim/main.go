// Command sirsim generates a random contact network, runs an SIR epidemic
// over it and prints the epidemic curve summary and node centralities.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/GoSim-25-26J-441/contagion-core/internal/centrality"
	"github.com/GoSim-25-26J-441/contagion-core/internal/contact"
	"github.com/GoSim-25-26J-441/contagion-core/internal/engine"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "sirsim:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	seed       int64
	nodes      int
	degree     int
	steps      int
	beta       float64
	gamma      float64
	logLevel   string
	top        int
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("sirsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to an experiment YAML file")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed (0 picks a time-based seed)")
	fs.IntVar(&opts.nodes, "nodes", 0, "number of people in the contact network")
	fs.IntVar(&opts.degree, "degree", 0, "edges initiated per person")
	fs.IntVar(&opts.steps, "steps", 0, "number of simulation rounds")
	fs.Float64Var(&opts.beta, "beta", 0, "per-contact infection probability")
	fs.Float64Var(&opts.gamma, "gamma", 0, "per-round recovery probability")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.IntVar(&opts.top, "top", 0, "print only the N highest ranked nodes (0 prints all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.top < 0 {
		return fmt.Errorf("-top cannot be negative, got %d", opts.top)
	}

	cfg, err := buildConfig(fs, opts)
	if err != nil {
		return err
	}

	log := logger.NewText(cfg.LogLevel, stderr)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		effective, err := cfg.YAML()
		if err != nil {
			return err
		}
		log.Debug("effective config", "yaml", string(effective))
	}
	rng := utils.NewRandSource(cfg.Seed)
	log.Info("experiment starting",
		"seed", rng.Seed(),
		"nodes", cfg.Graph.Nodes,
		"average_degree", cfg.Graph.AverageDegree,
		"time_steps", cfg.SIR.TimeSteps)

	g, err := contact.Generate(cfg.Graph, rng)
	if err != nil {
		return fmt.Errorf("generate contact graph: %w", err)
	}

	sir, err := engine.NewSIREngine(cfg.SIR.TimeSteps, cfg.SIR.Beta, cfg.SIR.Gamma)
	if err != nil {
		return err
	}
	sir.SetLogger(log)

	result, err := sir.Simulate(g, rng)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	s := result.Summary
	fmt.Fprintf(out, "Seed: %d\n", rng.Seed())
	fmt.Fprintf(out, "Nodes: %d Edges: %d\n", g.NodeCount(), g.EdgeCount())
	fmt.Fprintf(out, "Peak infected: %d at round %d\n", s.PeakInfected, s.PeakRound)
	fmt.Fprintf(out, "Attack rate: %.2f%%\n", s.AttackRate*100)
	fmt.Fprintf(out, "Final: S=%d I=%d R=%d\n", s.Final.Susceptible, s.Final.Infected, s.Final.Recovered)

	if !cfg.Centrality.Enabled {
		return nil
	}

	cost, err := centrality.CostByName(cfg.Centrality.Cost)
	if err != nil {
		return err
	}
	analyzer := centrality.NewAnalyzer(g, centrality.WithCost(cost), centrality.WithLogger(log))

	degree := analyzer.DegreeCentrality()
	fmt.Fprintln(out, "Degree Centrality:")
	for _, id := range rankedIDs(degree, opts.top) {
		fmt.Fprintf(out, "Node %d: Degree %d\n", id, degree[id])
	}

	betweenness := analyzer.BetweennessCentrality()
	fmt.Fprintln(out, "Betweenness Centrality:")
	for _, id := range rankedIDs(betweenness, opts.top) {
		fmt.Fprintf(out, "Node %d: Betweenness %.2f\n", id, betweenness[id])
	}

	return nil
}

// buildConfig starts from the config file (or the defaults) and applies the
// flags that were set explicitly
func buildConfig(fs *flag.FlagSet, opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = opts.seed
		case "nodes":
			cfg.Graph.Nodes = opts.nodes
		case "degree":
			cfg.Graph.AverageDegree = opts.degree
		case "steps":
			cfg.SIR.TimeSteps = opts.steps
		case "beta":
			cfg.SIR.Beta = opts.beta
		case "gamma":
			cfg.SIR.Gamma = opts.gamma
		case "log-level":
			cfg.LogLevel = opts.logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// rankedIDs lists every node by id, or the top n by score
func rankedIDs[V int | float64](scores map[int]V, n int) []int {
	if n == 0 {
		return centrality.SortedIDs(scores)
	}
	ranked := centrality.Top(scores, n)
	ids := make([]int, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Node
	}
	return ids
}
