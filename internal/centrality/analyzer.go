package centrality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/contagion-core/internal/contact"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/logger"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// CostFunc maps an interaction to a non-negative path cost.
// It must be monotonic in strength.
type CostFunc func(in models.Interaction) float64

// ScaledStrengthCost is floor(strength * 100). Strengths closer than 0.01
// may collapse to the same cost.
func ScaledStrengthCost(in models.Interaction) float64 {
	return math.Floor(in.Strength * 100)
}

// StrengthCost uses the strength itself as the cost
func StrengthCost(in models.Interaction) float64 {
	return in.Strength
}

// CostByName resolves a config.CentralityConfig cost name
func CostByName(name string) (CostFunc, error) {
	switch name {
	case "", config.CostScaled:
		return ScaledStrengthCost, nil
	case config.CostExact:
		return StrengthCost, nil
	default:
		return nil, fmt.Errorf("unknown cost function: %q", name)
	}
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCost sets the edge cost function
func WithCost(cost CostFunc) Option {
	return func(a *Analyzer) {
		if cost != nil {
			a.cost = cost
		}
	}
}

// WithLogger sets the analyzer's logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// Analyzer computes structural scores of a contact graph. It only reads the graph.
type Analyzer struct {
	graph  *contact.Graph
	cost   CostFunc
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer over g
func NewAnalyzer(g *contact.Graph, opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:  g,
		cost:   ScaledStrengthCost,
		logger: logger.Default,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DegreeCentrality returns the raw incident-edge count of every node
func (a *Analyzer) DegreeCentrality() map[int]int {
	n := a.graph.NodeCount()
	out := make(map[int]int, n)
	for id := 0; id < n; id++ {
		out[id] = a.graph.DegreeOf(id)
	}
	return out
}

// ShortestPaths returns the least total cost from source to every node,
// +Inf for unreachable nodes
func (a *Analyzer) ShortestPaths(source int) ([]float64, error) {
	n := a.graph.NodeCount()
	if source < 0 || source >= n {
		return nil, fmt.Errorf("%w: %d", contact.ErrUnknownNode, source)
	}
	dist := make([]float64, n)
	a.dijkstra(source, dist, newPathQueue(n))
	return dist, nil
}

// dijkstra fills dist (len NodeCount) from source using a lazy-deletion heap
func (a *Analyzer) dijkstra(source int, dist []float64, pq *pathQueue) {
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	pq.items = pq.items[:0]
	pq.push(source, 0)

	for pq.Len() > 0 {
		item := pq.pop()
		if item.dist > dist[item.node] {
			continue
		}
		for _, l := range a.graph.Links(item.node) {
			candidate := item.dist + a.cost(l.Interaction)
			if candidate < dist[l.Neighbor] {
				dist[l.Neighbor] = candidate
				pq.push(l.Neighbor, candidate)
			}
		}
	}
}

// BetweennessCentrality scores every node by how many other nodes reach it.
//
// For each source a single-source shortest-path search is run and every
// reachable target other than the source gains one point; the totals are
// divided by (N-1)(N-2)/2 for N > 2 and left as-is otherwise. Note this is
// a reachability-frequency score: a node is credited for being a path
// target, not for lying between other pairs as in Brandes betweenness.
// Every node is present in the result, with 0 if it is never reached.
func (a *Analyzer) BetweennessCentrality() map[int]float64 {
	out, _ := a.BetweennessCentralityContext(context.Background())
	return out
}

// BetweennessCentralityContext is BetweennessCentrality that checks ctx
// before each source search and returns ctx.Err() once it is done.
func (a *Analyzer) BetweennessCentralityContext(ctx context.Context) (map[int]float64, error) {
	n := a.graph.NodeCount()
	counts := make([]float64, n)
	dist := make([]float64, n)
	pq := newPathQueue(n)

	for source := 0; source < n; source++ {
		if err := ctx.Err(); err != nil {
			a.logger.Debug("betweenness aborted", "sources_done", source, "nodes", n, "error", err)
			return nil, err
		}
		a.dijkstra(source, dist, pq)
		for target, d := range dist {
			if target != source && !math.IsInf(d, 1) {
				counts[target]++
			}
		}
	}

	norm := NormalizationFactor(n)
	out := make(map[int]float64, n)
	for id, c := range counts {
		out[id] = c / norm
	}

	a.logger.Debug("betweenness computed", "nodes", n, "normalization", norm)
	return out, nil
}

// NormalizationFactor is (n-1)(n-2)/2 for n > 2 and 1 otherwise
func NormalizationFactor(n int) float64 {
	if n <= 2 {
		return 1
	}
	return float64(n-1) * float64(n-2) / 2
}

// Ranked is a node with its score
type Ranked struct {
	Node  int     `json:"node"`
	Score float64 `json:"score"`
}

// Top returns the n highest scoring nodes, ties broken by ascending id.
// n <= 0 returns every node.
func Top[V int | float64](scores map[int]V, n int) []Ranked {
	ranked := make([]Ranked, 0, len(scores))
	for id, v := range scores {
		ranked = append(ranked, Ranked{Node: id, Score: float64(v)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Node < ranked[j].Node
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// SortedIDs returns the keys of a per-node map in ascending order
func SortedIDs[V any](scores map[int]V) []int {
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
