package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HealthState is the epidemic compartment a person is in
type HealthState uint8

const (
	Susceptible HealthState = iota
	Infected
	Recovered
)

// NumHealthStates is the number of compartments
const NumHealthStates = 3

var healthStateNames = [NumHealthStates]string{
	Susceptible: "susceptible",
	Infected:    "infected",
	Recovered:   "recovered",
}

// String returns the lowercase name of the state
func (s HealthState) String() string {
	if int(s) < len(healthStateNames) {
		return healthStateNames[s]
	}
	return fmt.Sprintf("HealthState(%d)", uint8(s))
}

// Valid reports whether s is one of the known compartments
func (s HealthState) Valid() bool {
	return s <= Recovered
}

// CanTransitionTo reports whether a single round may move a person from s to next.
// Staying put is always allowed; otherwise the only moves are
// Susceptible -> Infected and Infected -> Recovered.
func (s HealthState) CanTransitionTo(next HealthState) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case Susceptible:
		return next == Infected
	case Infected:
		return next == Recovered
	default:
		return false
	}
}

// ParseHealthState parses the textual form of a state (case-insensitive)
func ParseHealthState(text string) (HealthState, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "susceptible", "s":
		return Susceptible, nil
	case "infected", "i":
		return Infected, nil
	case "recovered", "r":
		return Recovered, nil
	default:
		return 0, fmt.Errorf("unknown health state: %q", text)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s HealthState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid health state: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *HealthState) UnmarshalText(text []byte) error {
	parsed, err := ParseHealthState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PersonState is a node of the contact graph. ID equals the node's graph index.
type PersonState struct {
	ID    int         `json:"id"`
	State HealthState `json:"state"`
}

// NewPersonState creates a PersonState
func NewPersonState(id int, state HealthState) PersonState {
	return PersonState{ID: id, State: state}
}

// Interaction is the weight of a contact edge
type Interaction struct {
	Frequency int     `json:"frequency"` // contacts per period, > 0
	Strength  float64 `json:"strength"`  // intensity in (0, 1)
}

// Validate checks the interaction ranges
func (in Interaction) Validate() error {
	if in.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", in.Frequency)
	}
	if math.IsNaN(in.Strength) || in.Strength <= 0 || in.Strength >= 1 {
		return fmt.Errorf("strength must be in (0, 1), got %v", in.Strength)
	}
	return nil
}

// RoundCounts holds the compartment sizes after a round
type RoundCounts struct {
	Round       int `json:"round"`
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
}

// Total returns the population size
func (c RoundCounts) Total() int {
	return c.Susceptible + c.Infected + c.Recovered
}

// Add increments the counter for state
func (c *RoundCounts) Add(state HealthState) {
	switch state {
	case Susceptible:
		c.Susceptible++
	case Infected:
		c.Infected++
	case Recovered:
		c.Recovered++
	}
}

// CountStates tallies a state slice
func CountStates(round int, states []HealthState) RoundCounts {
	counts := RoundCounts{Round: round}
	for _, s := range states {
		counts.Add(s)
	}
	return counts
}

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the run can no longer change status
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// ParseRunStatus parses a status name; unknown names return false
func ParseRunStatus(text string) (RunStatus, bool) {
	switch RunStatus(strings.ToLower(text)) {
	case RunStatusPending:
		return RunStatusPending, true
	case RunStatusRunning:
		return RunStatusRunning, true
	case RunStatusCompleted:
		return RunStatusCompleted, true
	case RunStatusFailed:
		return RunStatusFailed, true
	case RunStatusCancelled:
		return RunStatusCancelled, true
	}
	return "", false
}

// EpidemicSummary condenses an epidemic curve
type EpidemicSummary struct {
	PeakInfected int         `json:"peak_infected"`
	PeakRound    int         `json:"peak_round"`
	AttackRate   float64     `json:"attack_rate"` // fraction ever infected
	Final        RoundCounts `json:"final"`
}

// Summarize derives peak and attack rate from a curve whose first entry is the initial state
func Summarize(curve []RoundCounts) EpidemicSummary {
	var summary EpidemicSummary
	if len(curve) == 0 {
		return summary
	}
	for _, c := range curve {
		if c.Infected > summary.PeakInfected {
			summary.PeakInfected = c.Infected
			summary.PeakRound = c.Round
		}
	}
	summary.Final = curve[len(curve)-1]
	initial := curve[0]
	if n := summary.Final.Total(); n > 0 {
		everInfected := summary.Final.Infected + summary.Final.Recovered - initial.Recovered
		summary.AttackRate = float64(everInfected) / float64(n)
	}
	return summary
}

// RunTiming records wall-clock timestamps of a run
type RunTiming struct {
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Duration returns the elapsed run time, zero if the run has not ended
func (t RunTiming) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.EndedAt.IsZero() {
		return 0
	}
	return t.EndedAt.Sub(t.StartedAt)
}
