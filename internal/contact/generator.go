package contact

import (
	"fmt"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// Source is the randomness the generator draws from
type Source interface {
	Intn(n int) int
	IntRange(min, max int) int
	UniformFloat64(min, max float64) float64
	BernoulliBool(p float64) bool
}

// Generate builds a random contact graph.
//
// Every node is seeded Infected with probability InitialInfectedFraction,
// in id order. Then each node, in id order, initiates AverageDegree new
// edges to uniformly chosen non-adjacent targets, so the realised mean
// degree is roughly twice AverageDegree. A node already adjacent to
// everybody stops early.
func Generate(cfg config.GraphConfig, rng Source) (*Graph, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if cfg.Nodes < 0 {
		return nil, fmt.Errorf("node count cannot be negative, got %d", cfg.Nodes)
	}
	if cfg.AverageDegree < 0 {
		return nil, fmt.Errorf("average degree cannot be negative, got %d", cfg.AverageDegree)
	}

	n := cfg.Nodes
	g := New(n)
	for i := 0; i < n; i++ {
		state := models.Susceptible
		if rng.BernoulliBool(cfg.InitialInfectedFraction) {
			state = models.Infected
		}
		if _, err := g.AddNode(state); err != nil {
			return nil, err
		}
	}

	for id := 0; id < n; id++ {
		for initiated := 0; initiated < cfg.AverageDegree && g.DegreeOf(id) < n-1; {
			target := rng.Intn(n)
			if target == id || g.HasEdge(id, target) {
				continue
			}
			in := models.Interaction{
				Frequency: rng.IntRange(cfg.Frequency.Min, cfg.Frequency.Max),
				Strength:  rng.UniformFloat64(cfg.Strength.Min, cfg.Strength.Max),
			}
			if err := g.AddEdge(id, target, in); err != nil {
				return nil, fmt.Errorf("generate edge %d-%d: %w", id, target, err)
			}
			initiated++
		}
	}

	return g, nil
}
