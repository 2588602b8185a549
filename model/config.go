package model

import "math"

// weightSumTolerance is the floating-point tolerance when asserting that
// the criterion weights sum to exactly 1.0.
const weightSumTolerance = 1e-9

// BaselineConfig configures the flat keyword retriever.
type BaselineConfig struct {
	// Limit is the maximum number of nodes returned per query.
	Limit int `yaml:"limit" json:"limit"`
}

// DefaultBaselineConfig returns the default baseline retriever configuration.
func DefaultBaselineConfig() BaselineConfig {
	return BaselineConfig{Limit: 8}
}

// Validate checks the retriever parameters, returning a ConfigurationError
// on invalid values.
func (c BaselineConfig) Validate() error {
	if c.Limit <= 0 {
		return &ConfigurationError{Field: "limit", Reason: "must be positive"}
	}
	return nil
}

// GraphConfig configures the multi-hop graph retriever.
type GraphConfig struct {
	// SeedLimit caps how many direct topic matches anchor the traversal.
	SeedLimit int `yaml:"seed_limit" json:"seed_limit"`
	// MaxHops bounds the breadth-first expansion depth from the seed set.
	MaxHops int `yaml:"max_hops" json:"max_hops"`
	// MaxNodes caps the total result set size.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes"`
	// SampleSeed selects the frontier sampling policy: 0 keeps the first
	// candidates in discovery order (fully deterministic), any other value
	// shuffles over-full frontiers with a rand source seeded from it, so
	// randomized runs stay reproducible.
	SampleSeed int64 `yaml:"sample_seed" json:"sample_seed"`
}

// DefaultGraphConfig returns the default graph retriever configuration.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		SeedLimit: 3,
		MaxHops:   2,
		MaxNodes:  15,
	}
}

// Validate checks the retriever parameters, returning a ConfigurationError
// on invalid values.
func (c GraphConfig) Validate() error {
	if c.SeedLimit <= 0 {
		return &ConfigurationError{Field: "seed_limit", Reason: "must be positive"}
	}
	if c.MaxHops <= 0 {
		return &ConfigurationError{Field: "max_hops", Reason: "must be positive"}
	}
	if c.MaxNodes <= 0 {
		return &ConfigurationError{Field: "max_nodes", Reason: "must be positive"}
	}
	return nil
}

// Weights holds the fixed criterion weights for the composite score.
type Weights struct {
	Relevance    float64 `yaml:"relevance" json:"relevance"`
	Faithfulness float64 `yaml:"faithfulness" json:"faithfulness"`
	Integration  float64 `yaml:"integration" json:"integration"`
	Complexity   float64 `yaml:"complexity" json:"complexity"`
}

// DefaultWeights returns the rubric weights. Integration carries the
// largest weight since it is the criterion that separates multi-hop
// grounding from single-node sufficiency.
func DefaultWeights() Weights {
	return Weights{
		Relevance:    0.10,
		Faithfulness: 0.20,
		Integration:  0.40,
		Complexity:   0.30,
	}
}

// Get returns the weight for a criterion.
func (w Weights) Get(criterion Criterion) float64 {
	switch criterion {
	case CriterionRelevance:
		return w.Relevance
	case CriterionFaithfulness:
		return w.Faithfulness
	case CriterionIntegration:
		return w.Integration
	case CriterionComplexity:
		return w.Complexity
	}
	return 0
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Relevance + w.Faithfulness + w.Integration + w.Complexity
}

// Composite computes the weighted sum of the raw scores.
func (w Weights) Composite(scores Scores) float64 {
	composite := 0.0
	for _, criterion := range Criteria {
		composite += scores.Get(criterion) * w.Get(criterion)
	}
	return composite
}

// Validate asserts that every weight lies in [0,1] and that the weights
// sum to 1.0 within floating-point tolerance. A violation is a
// ConfigurationError and must abort before any topic runs.
func (w Weights) Validate() error {
	for _, criterion := range Criteria {
		weight := w.Get(criterion)
		if math.IsNaN(weight) || weight < 0 || weight > 1 {
			return &ConfigurationError{
				Field:  "weights." + string(criterion),
				Reason: "must be in [0,1]",
			}
		}
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return &ConfigurationError{Field: "weights", Reason: "must sum to 1.0"}
	}
	return nil
}
