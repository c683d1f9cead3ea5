package contact

import (
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

var (
	// ErrInvalidEdge is returned for self-loops and duplicate edges
	ErrInvalidEdge = errors.New("invalid edge")
	// ErrUnknownNode is returned for ids outside [0, NodeCount)
	ErrUnknownNode = errors.New("unknown node")
	// ErrInvalidInteraction is returned when an edge weight is out of range
	ErrInvalidInteraction = errors.New("invalid interaction")
	// ErrInvalidState is returned for health states outside the enumeration
	ErrInvalidState = errors.New("invalid health state")
)

// Link is one side of an undirected edge as seen from a node
type Link struct {
	Neighbor    int                `json:"neighbor"`
	Interaction models.Interaction `json:"interaction"`
}

// Edge is an undirected edge with A < B
type Edge struct {
	A           int                `json:"a"`
	B           int                `json:"b"`
	Interaction models.Interaction `json:"interaction"`
}

// Graph is an undirected, simple contact network. Nodes are dense integer
// ids in insertion order; each node keeps its own adjacency list and
// every edge is stored once in each endpoint's list.
type Graph struct {
	states []models.HealthState
	adj    [][]Link
	index  map[uint64]struct{}
	edges  int
}

// New creates an empty graph with room for capacity nodes
func New(capacity int) *Graph {
	if capacity < 0 {
		capacity = 0
	}
	return &Graph{
		states: make([]models.HealthState, 0, capacity),
		adj:    make([][]Link, 0, capacity),
		index:  make(map[uint64]struct{}),
	}
}

// AddNode appends a node and returns its id. Ids are never reused.
func (g *Graph) AddNode(initial models.HealthState) (int, error) {
	if !initial.Valid() {
		return -1, fmt.Errorf("%w: %d", ErrInvalidState, uint8(initial))
	}
	g.states = append(g.states, initial)
	g.adj = append(g.adj, nil)
	return len(g.states) - 1, nil
}

// AddEdge inserts an undirected edge between a and b
func (g *Graph) AddEdge(a, b int, in models.Interaction) error {
	if err := g.checkNode(a); err != nil {
		return err
	}
	if err := g.checkNode(b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: self-loop on node %d", ErrInvalidEdge, a)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInteraction, err)
	}
	key := pairKey(a, b)
	if _, exists := g.index[key]; exists {
		return fmt.Errorf("%w: duplicate edge %d-%d", ErrInvalidEdge, a, b)
	}

	g.index[key] = struct{}{}
	g.adj[a] = append(g.adj[a], Link{Neighbor: b, Interaction: in})
	g.adj[b] = append(g.adj[b], Link{Neighbor: a, Interaction: in})
	g.edges++
	return nil
}

// HasEdge reports whether a and b are adjacent
func (g *Graph) HasEdge(a, b int) bool {
	if a == b || !g.contains(a) || !g.contains(b) {
		return false
	}
	_, ok := g.index[pairKey(a, b)]
	return ok
}

// Neighbors returns the ids adjacent to id, in insertion order
func (g *Graph) Neighbors(id int) []int {
	if !g.contains(id) {
		return nil
	}
	out := make([]int, len(g.adj[id]))
	for i, l := range g.adj[id] {
		out[i] = l.Neighbor
	}
	return out
}

// Links returns id's adjacency list. The slice is owned by the graph and must not be modified.
func (g *Graph) Links(id int) []Link {
	if !g.contains(id) {
		return nil
	}
	return g.adj[id]
}

// DegreeOf returns the number of edges incident to id
func (g *Graph) DegreeOf(id int) int {
	if !g.contains(id) {
		return 0
	}
	return len(g.adj[id])
}

// Edges returns every edge once, ordered by (A, insertion)
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for a, links := range g.adj {
		for _, l := range links {
			if a < l.Neighbor {
				out = append(out, Edge{A: a, B: l.Neighbor, Interaction: l.Interaction})
			}
		}
	}
	return out
}

// NodeCount returns the population size
func (g *Graph) NodeCount() int {
	return len(g.states)
}

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int {
	return g.edges
}

// State returns the health state of id
func (g *Graph) State(id int) (models.HealthState, error) {
	if err := g.checkNode(id); err != nil {
		return 0, err
	}
	return g.states[id], nil
}

// Person returns the node as a PersonState record
func (g *Graph) Person(id int) (models.PersonState, error) {
	state, err := g.State(id)
	if err != nil {
		return models.PersonState{}, err
	}
	return models.NewPersonState(id, state), nil
}

// States returns a copy of every node's state, indexed by id
func (g *Graph) States() []models.HealthState {
	out := make([]models.HealthState, len(g.states))
	copy(out, g.states)
	return out
}

// SetStates overwrites every node's state. The slice length must match NodeCount.
func (g *Graph) SetStates(states []models.HealthState) error {
	if len(states) != len(g.states) {
		return fmt.Errorf("state count %d does not match node count %d", len(states), len(g.states))
	}
	for id, s := range states {
		if !s.Valid() {
			return fmt.Errorf("%w: node %d has %d", ErrInvalidState, id, uint8(s))
		}
	}
	copy(g.states, states)
	return nil
}

// Counts tallies the current compartments
func (g *Graph) Counts() models.RoundCounts {
	return models.CountStates(0, g.states)
}

func (g *Graph) contains(id int) bool {
	return id >= 0 && id < len(g.states)
}

func (g *Graph) checkNode(id int) error {
	if !g.contains(id) {
		return fmt.Errorf("%w: %d (node count %d)", ErrUnknownNode, id, len(g.states))
	}
	return nil
}

func pairKey(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}
