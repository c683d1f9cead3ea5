package config

// Config is an epidemic experiment: how to build the contact graph,
// how to step the SIR model over it and whether to score node centrality
type Config struct {
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Seed       int64            `yaml:"seed"` // 0 picks a time-based seed
	Graph      GraphConfig      `yaml:"graph"`
	SIR        SIRConfig        `yaml:"sir"`
	Centrality CentralityConfig `yaml:"centrality"`
}

// Upper bounds enforced by validation so a single experiment stays tractable
const (
	MaxNodes     = 100000
	MaxTimeSteps = 100000
)

// GraphConfig drives the random contact-graph generator
type GraphConfig struct {
	Nodes                   int        `yaml:"nodes" validate:"gt=0,lte=100000"`
	AverageDegree           int        `yaml:"average_degree" validate:"gte=0"`
	InitialInfectedFraction float64    `yaml:"initial_infected_fraction" validate:"gte=0,lte=1"`
	Frequency               IntRange   `yaml:"frequency"`
	Strength                FloatRange `yaml:"strength"`
}

// IntRange is an inclusive integer range
type IntRange struct {
	Min int `yaml:"min" validate:"gt=0"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// FloatRange is a half-open range [Min, Max)
type FloatRange struct {
	Min float64 `yaml:"min" validate:"gt=0,lt=1"`
	Max float64 `yaml:"max" validate:"gtfield=Min,lte=1"`
}

// SIRConfig holds the epidemic parameters
type SIRConfig struct {
	TimeSteps int     `yaml:"time_steps" validate:"gte=0,lte=100000"`
	Beta      float64 `yaml:"beta" validate:"gte=0,lte=1"`  // per-neighbour infection probability
	Gamma     float64 `yaml:"gamma" validate:"gte=0,lte=1"` // per-round recovery probability
}

// Cost function names accepted by CentralityConfig.Cost
const (
	CostScaled = "scaled" // floor(strength * 100)
	CostExact  = "exact"  // strength as-is
)

// CentralityConfig controls the post-simulation structural analysis
type CentralityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cost    string `yaml:"cost" validate:"oneof=scaled exact"`
}

// Default returns the reference experiment: 1000 people, average degree 15,
// 10% initially infected, 100 rounds with beta 0.3 and gamma 0.1
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Graph: GraphConfig{
			Nodes:                   1000,
			AverageDegree:           15,
			InitialInfectedFraction: 0.1,
			Frequency:               IntRange{Min: 1, Max: 9},
			Strength:                FloatRange{Min: 0.1, Max: 1.0},
		},
		SIR: SIRConfig{
			TimeSteps: 100,
			Beta:      0.3,
			Gamma:     0.1,
		},
		Centrality: CentralityConfig{
			Enabled: true,
			Cost:    CostScaled,
		},
	}
}
