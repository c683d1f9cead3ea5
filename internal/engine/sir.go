package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contact"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

var (
	// ErrInvalidParameter is returned by NewSIREngine for out-of-range parameters
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNilRandomSource is returned when Simulate is called without a source
	ErrNilRandomSource = errors.New("random source is required")
)

// RandomSource yields uniform draws in [0, 1)
type RandomSource interface {
	Float64() float64
}

// RoundObserver is called after each round with the states that round produced.
// states must not be retained or modified. A non-nil error aborts the simulation.
type RoundObserver func(round int, states []models.HealthState) error

// SIREngine steps the SIR model over a contact graph in synchronous rounds
type SIREngine struct {
	timeSteps int
	beta      float64
	gamma     float64
	observer  RoundObserver
	logger    *slog.Logger
}

// Result is the outcome of Simulate
type Result struct {
	// Curve[0] is the initial state, Curve[r] the state after round r
	Curve   []models.RoundCounts   `json:"curve"`
	Final   []models.HealthState   `json:"final"`
	Summary models.EpidemicSummary `json:"summary"`
}

// NewSIREngine validates the parameters and creates an engine.
// timeSteps may be zero; beta and gamma must lie in [0, 1].
func NewSIREngine(timeSteps int, beta, gamma float64) (*SIREngine, error) {
	if timeSteps < 0 {
		return nil, fmt.Errorf("%w: time steps cannot be negative, got %d", ErrInvalidParameter, timeSteps)
	}
	if !isProbability(beta) {
		return nil, fmt.Errorf("%w: beta must be in [0, 1], got %v", ErrInvalidParameter, beta)
	}
	if !isProbability(gamma) {
		return nil, fmt.Errorf("%w: gamma must be in [0, 1], got %v", ErrInvalidParameter, gamma)
	}
	return &SIREngine{
		timeSteps: timeSteps,
		beta:      beta,
		gamma:     gamma,
		logger:    logger.Default,
	}, nil
}

// SetLogger sets the engine's logger
func (e *SIREngine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// WithObserver registers a per-round callback and returns the engine
func (e *SIREngine) WithObserver(fn RoundObserver) *SIREngine {
	e.observer = fn
	return e
}

// TimeSteps returns the configured number of rounds
func (e *SIREngine) TimeSteps() int { return e.timeSteps }

// Beta returns the per-neighbour infection probability
func (e *SIREngine) Beta() float64 { return e.beta }

// Gamma returns the per-round recovery probability
func (e *SIREngine) Gamma() float64 { return e.gamma }

// InfectionProbability is the chance a susceptible node with k infected
// neighbours is infected in one round: each neighbour independently fails
// with probability 1-beta.
func (e *SIREngine) InfectionProbability(k int) float64 {
	if k <= 0 {
		return 0
	}
	return 1 - math.Pow(1-e.beta, float64(k))
}

// Simulate runs TimeSteps rounds over g and writes the final states back into g.
//
// Each round reads only the states from before the round (current buffer)
// and writes only the next buffer; the buffers are swapped at round end.
// Nodes are visited in ascending id and exactly one rng.Float64() is drawn
// for every Susceptible and every Infected node, none for Recovered nodes,
// so a fixed seed reproduces the run.
//
// If the observer aborts, its error is returned and g is left unchanged.
func (e *SIREngine) Simulate(g *contact.Graph, rng RandomSource) (*Result, error) {
	if rng == nil {
		return nil, ErrNilRandomSource
	}
	if g == nil {
		return nil, fmt.Errorf("contact graph is required")
	}

	n := g.NodeCount()
	current := g.States()
	next := make([]models.HealthState, n)

	curve := make([]models.RoundCounts, 0, e.timeSteps+1)
	curve = append(curve, models.CountStates(0, current))

	e.logger.Debug("SIR simulation starting",
		"nodes", n,
		"edges", g.EdgeCount(),
		"time_steps", e.timeSteps,
		"beta", e.beta,
		"gamma", e.gamma,
		"initial_infected", curve[0].Infected)

	for round := 1; round <= e.timeSteps; round++ {
		for id := 0; id < n; id++ {
			next[id] = e.step(current[id], infectedNeighbors(g, current, id), rng)
		}
		current, next = next, current

		counts := models.CountStates(round, current)
		curve = append(curve, counts)

		if e.observer != nil {
			if err := e.observer(round, current); err != nil {
				e.logger.Debug("SIR simulation aborted by observer", "round", round, "error", err)
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
		}
	}

	if err := g.SetStates(current); err != nil {
		return nil, fmt.Errorf("write back final states: %w", err)
	}

	result := &Result{
		Curve:   curve,
		Final:   g.States(),
		Summary: models.Summarize(curve),
	}

	e.logger.Debug("SIR simulation completed",
		"rounds", e.timeSteps,
		"susceptible", result.Summary.Final.Susceptible,
		"infected", result.Summary.Final.Infected,
		"recovered", result.Summary.Final.Recovered,
		"peak_infected", result.Summary.PeakInfected)

	return result, nil
}

// step applies the transition rule to one node
func (e *SIREngine) step(state models.HealthState, infected int, rng RandomSource) models.HealthState {
	var next models.HealthState
	switch state {
	case models.Susceptible:
		next = models.Susceptible
		if rng.Float64() < e.InfectionProbability(infected) {
			next = models.Infected
		}
	case models.Infected:
		next = models.Infected
		if rng.Float64() < e.gamma {
			next = models.Recovered
		}
	default:
		next = state
	}
	return next
}

func infectedNeighbors(g *contact.Graph, states []models.HealthState, id int) int {
	k := 0
	for _, l := range g.Links(id) {
		if states[l.Neighbor] == models.Infected {
			k++
		}
	}
	return k
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
