package simulation

import (
	"fmt"
	"sort"
	"strings"
)

// Uncertainty models supported by the engine.
const (
	ModelPERT       = "pert"
	ModelTriangular = "triangular"
)

// Iteration bounds enforced by configuration validation.
const (
	MinIterations     = 100
	MaxIterations     = 100000
	DefaultIterations = 10000
)

// Config controls a single simulation run. The zero value is not valid; use
// DefaultConfig and override fields as needed.
type Config struct {
	Iterations       int    `json:"iterations"`
	ConfidenceLevels []int  `json:"confidenceLevels"`
	Model            string `json:"uncertaintyModel"`
}

// DefaultConfig returns the standard 10k-iteration PERT configuration with
// 50/80/90 confidence levels.
func DefaultConfig() Config {
	return Config{
		Iterations:       DefaultIterations,
		ConfidenceLevels: []int{50, 80, 90},
		Model:            ModelPERT,
	}
}

// ValidationError reports configuration fields that fall outside their
// declared bounds. It is always returned before any simulation state is
// allocated.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// withDefaults fills unset fields so callers can pass a sparse Config.
func (c Config) withDefaults() Config {
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if len(c.ConfidenceLevels) == 0 {
		c.ConfidenceLevels = []int{50, 80, 90}
	}
	if c.Model == "" {
		c.Model = ModelPERT
	}
	return c
}

// validate checks every declared bound and collects all offending fields.
func (c Config) validate() error {
	fields := make(map[string]string)

	if c.Iterations < MinIterations || c.Iterations > MaxIterations {
		fields["iterations"] = fmt.Sprintf("must be between %d and %d, got %d", MinIterations, MaxIterations, c.Iterations)
	}

	if len(c.ConfidenceLevels) < 1 || len(c.ConfidenceLevels) > 10 {
		fields["confidenceLevels"] = fmt.Sprintf("must contain between 1 and 10 values, got %d", len(c.ConfidenceLevels))
	} else {
		for _, lvl := range c.ConfidenceLevels {
			if lvl < 1 || lvl > 99 {
				fields["confidenceLevels"] = fmt.Sprintf("levels must be between 1 and 99, got %d", lvl)
				break
			}
		}
	}

	if c.Model != ModelPERT && c.Model != ModelTriangular {
		fields["uncertaintyModel"] = fmt.Sprintf("must be %q or %q, got %q", ModelPERT, ModelTriangular, c.Model)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
