package simd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/contagion-core/internal/centrality"
	"github.com/GoSim-25-26J-441/contagion-core/internal/contact"
	"github.com/GoSim-25-26J-441/contagion-core/internal/engine"
	"github.com/GoSim-25-26J-441/contagion-core/internal/metrics"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// RunExecutor runs experiments in background goroutines, one graph and
// random source per run.
type RunExecutor struct {
	store   *RunStore
	metrics *metrics.Registry
	logger  *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunExecutor(store *RunStore, reg *metrics.Registry) *RunExecutor {
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	return &RunExecutor{
		store:   store,
		metrics: reg,
		logger:  logger.Default,
		cancels: make(map[string]context.CancelFunc),
	}
}

func (e *RunExecutor) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Start transitions a pending run to running and launches it
func (e *RunExecutor) Start(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status.IsTerminal() {
		return rec, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Status)
	}

	e.mu.Lock()
	if _, running := e.cancels[runID]; running {
		e.mu.Unlock()
		return rec, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancels[runID] = cancel
	e.mu.Unlock()

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		e.cleanup(runID)
		cancel()
		return updated, err
	}

	e.metrics.RunStarted()
	e.logger.Info("run started", "run_id", runID, "seed", rec.Seed)

	e.wg.Add(1)
	go e.runSimulation(ctx, runID, rec.Config)

	return updated, nil
}

// Stop cancels a run. The run is marked cancelled immediately; its goroutine
// notices at the next round boundary.
func (e *RunExecutor) Stop(runID string) (RunRecord, error) {
	if runID == "" {
		return RunRecord{}, ErrRunIDMissing
	}
	if _, ok := e.store.Get(runID); !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return updated, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}

	e.logger.Info("run stopped", "run_id", runID)
	return updated, nil
}

// IsRunning reports whether a goroutine is still executing the run
func (e *RunExecutor) IsRunning(runID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.cancels[runID]
	return ok
}

// Shutdown cancels every active run and waits for the goroutines to exit
func (e *RunExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil && !errors.Is(err, ErrRunTerminal) {
			e.logger.Warn("failed to stop run", "run_id", id, "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until all launched runs have returned
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cancels, runID)
}

func (e *RunExecutor) runSimulation(ctx context.Context, runID string, cfg *config.Config) {
	defer e.wg.Done()
	defer e.cleanup(runID)

	result, err := e.execute(ctx, runID, cfg)

	switch {
	case ctx.Err() != nil:
		// Stop already recorded the cancelled status
	case err != nil:
		e.logger.Error("run failed", "run_id", runID, "error", err)
		if _, serr := e.store.SetStatus(runID, models.RunStatusFailed, err.Error()); serr != nil {
			e.logger.Debug("could not mark run failed", "run_id", runID, "error", serr)
		}
	default:
		if serr := e.store.SetResult(runID, result); serr != nil {
			e.logger.Error("failed to store result", "run_id", runID, "error", serr)
		}
		if _, serr := e.store.SetStatus(runID, models.RunStatusCompleted, ""); serr != nil {
			e.logger.Debug("could not mark run completed", "run_id", runID, "error", serr)
		} else {
			e.logger.Info("run completed",
				"run_id", runID,
				"peak_infected", result.Summary.PeakInfected,
				"attack_rate", result.Summary.AttackRate)
		}
	}

	if rec, ok := e.store.Get(runID); ok {
		e.metrics.RunFinished(rec.Status, rec.Timing.Duration())
	}
}

func (e *RunExecutor) execute(ctx context.Context, runID string, cfg *config.Config) (*RunResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("run %s has no config", runID)
	}

	rng := utils.NewRandSource(cfg.Seed)
	if err := e.store.SetSeed(runID, rng.Seed()); err != nil {
		return nil, err
	}

	e.enterStage(runID, StageGraph)

	g, err := contact.Generate(cfg.Graph, rng)
	if err != nil {
		return nil, fmt.Errorf("generate graph: %w", err)
	}
	e.logger.Debug("graph generated", "run_id", runID, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	sir, err := engine.NewSIREngine(cfg.SIR.TimeSteps, cfg.SIR.Beta, cfg.SIR.Gamma)
	if err != nil {
		return nil, err
	}
	sir.SetLogger(e.logger)
	sir.WithObserver(func(round int, states []models.HealthState) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.metrics.ObserveRound(models.CountStates(round, states))
		return e.store.SetProgress(runID, round)
	})

	e.enterStage(runID, StageSimulation)
	simulated, err := sir.Simulate(g, rng)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	result := &RunResult{
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
		Curve:   simulated.Curve,
		Summary: simulated.Summary,
		People:  make([]models.PersonState, 0, g.NodeCount()),
	}
	for id := 0; id < g.NodeCount(); id++ {
		person, err := g.Person(id)
		if err != nil {
			return nil, err
		}
		result.People = append(result.People, person)
	}

	if !cfg.Centrality.Enabled {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cost, err := centrality.CostByName(cfg.Centrality.Cost)
	if err != nil {
		return nil, err
	}
	e.enterStage(runID, StageCentrality)
	analyzer := centrality.NewAnalyzer(g, centrality.WithCost(cost), centrality.WithLogger(e.logger))
	result.Degree = analyzer.DegreeCentrality()
	result.Betweenness, err = analyzer.BetweennessCentralityContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("betweenness: %w", err)
	}

	degrees := make([]float64, 0, len(result.Degree))
	for _, id := range centrality.SortedIDs(result.Degree) {
		degrees = append(degrees, float64(result.Degree[id]))
	}
	result.DegreeStats = utils.Describe(degrees)
	e.metrics.CentralityComputed()

	return result, nil
}

func (e *RunExecutor) enterStage(runID string, stage Stage) {
	if err := e.store.SetStage(runID, stage); err != nil {
		e.logger.Debug("could not record stage", "run_id", runID, "stage", stage, "error", err)
		return
	}
	e.logger.Debug("run stage", "run_id", runID, "stage", stage)
}
