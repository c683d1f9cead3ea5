package simd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/contagion-core/internal/centrality"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/config"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrRunTerminal   = errors.New("run is terminal")
	ErrRunIDMissing  = errors.New("run_id is required")
	ErrRunExists     = errors.New("run already exists")
	ErrInvalidRunID  = errors.New("invalid run id")
	ErrInvalidConfig = errors.New("invalid config")
)

// Stage is the part of the pipeline a run is executing
type Stage string

const (
	StageGraph      Stage = "graph"
	StageSimulation Stage = "simulation"
	StageCentrality Stage = "centrality"
)

// RunInput is what a client submits
type RunInput struct {
	ConfigYAML string `json:"config_yaml"`
}

// RunResult is produced once a run completes
type RunResult struct {
	Nodes       int                    `json:"nodes"`
	Edges       int                    `json:"edges"`
	Curve       []models.RoundCounts   `json:"curve"`
	Summary     models.EpidemicSummary `json:"summary"`
	People      []models.PersonState   `json:"people"` // final state of every node, indexed by id
	Degree      map[int]int            `json:"degree,omitempty"`
	Betweenness map[int]float64        `json:"betweenness,omitempty"`
	DegreeStats utils.Stats            `json:"degree_stats"`
}

// HasCentrality reports whether centrality scores were computed
func (r *RunResult) HasCentrality() bool {
	return r != nil && r.Degree != nil && r.Betweenness != nil
}

// TopDegree returns the n best connected nodes
func (r *RunResult) TopDegree(n int) []centrality.Ranked {
	return centrality.Top(r.Degree, n)
}

// Node returns the final state and scores of one node
func (r *RunResult) Node(id int) (NodeReport, bool) {
	if r == nil || id < 0 || id >= len(r.People) {
		return NodeReport{}, false
	}
	report := NodeReport{Person: r.People[id]}
	if r.HasCentrality() {
		report.Degree = r.Degree[id]
		report.Betweenness = r.Betweenness[id]
		report.Scored = true
	}
	return report, true
}

// NodeReport is one node of a finished run
type NodeReport struct {
	Person      models.PersonState
	Degree      int
	Betweenness float64
	Scored      bool
}

// TopBetweenness returns the n most reachable nodes
func (r *RunResult) TopBetweenness(n int) []centrality.Ranked {
	return centrality.Top(r.Betweenness, n)
}

// RunRecord is a snapshot of a run. Result is immutable once set.
type RunRecord struct {
	ID          string           `json:"id"`
	Status      models.RunStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
	Timing      models.RunTiming `json:"timing"`
	Input       RunInput         `json:"input"`
	Config      *config.Config   `json:"-"`
	Seed        int64            `json:"seed"`
	Stage       Stage            `json:"stage,omitempty"`
	Round       int              `json:"round"`
	TotalRounds int              `json:"total_rounds"`
	Result      *RunResult       `json:"result,omitempty"`
}

// RunStore keeps runs in memory
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

// Create parses and validates the config and registers a pending run.
// An empty runID is replaced by a generated one.
func (s *RunStore) Create(runID string, input RunInput) (RunRecord, error) {
	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if err := utils.ValidateRunID(runID); err != nil {
		return RunRecord{}, fmt.Errorf("%w: %v", ErrInvalidRunID, err)
	}
	cfg, err := config.ParseConfigYAMLString(input.ConfigYAML)
	if err != nil {
		return RunRecord{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		ID:          runID,
		Status:      models.RunStatusPending,
		Timing:      models.RunTiming{CreatedAt: time.Now().UTC()},
		Input:       input,
		Config:      cfg,
		Seed:        cfg.Seed,
		TotalRounds: cfg.SIR.TimeSteps,
	}
	s.runs[runID] = rec
	return *rec, nil
}

func (s *RunStore) Get(runID string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

// List returns up to limit runs, newest first. An empty status matches all runs.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	out := make([]RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timing.CreatedAt.Equal(out[j].Timing.CreatedAt) {
			return out[i].Timing.CreatedAt.After(out[j].Timing.CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if offset >= len(out) {
		return []RunRecord{}
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetStatus moves a run to status. Terminal runs cannot change.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Status.IsTerminal() {
		return *rec, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Status)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}

	now := time.Now().UTC()
	switch status {
	case models.RunStatusRunning:
		if rec.Timing.StartedAt.IsZero() {
			rec.Timing.StartedAt = now
		}
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusCancelled:
		if rec.Timing.StartedAt.IsZero() {
			rec.Timing.StartedAt = now
		}
		rec.Timing.EndedAt = now
	}

	return *rec, nil
}

// SetSeed records the seed actually used by the run
func (s *RunStore) SetSeed(runID string, seed int64) error {
	return s.update(runID, func(rec *RunRecord) { rec.Seed = seed })
}

// SetStage records the pipeline stage a run has entered
func (s *RunStore) SetStage(runID string, stage Stage) error {
	return s.update(runID, func(rec *RunRecord) { rec.Stage = stage })
}

// SetProgress records the last completed round
func (s *RunStore) SetProgress(runID string, round int) error {
	return s.update(runID, func(rec *RunRecord) { rec.Round = round })
}

// SetResult attaches the outcome of a run
func (s *RunStore) SetResult(runID string, result *RunResult) error {
	return s.update(runID, func(rec *RunRecord) { rec.Result = result })
}

func (s *RunStore) update(runID string, fn func(*RunRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	fn(rec)
	return nil
}
