package model

import (
	"time"

	"github.com/google/uuid"
)

// RetrievalMethod describes how a context node was retrieved
type RetrievalMethod string

const (
	RetrievalMethodKeyword RetrievalMethod = "keyword"
	RetrievalMethodGraph   RetrievalMethod = "graph"
)

// RetrievalResult represents a node retrieved for a query topic.
// Results are ordered and not persisted beyond the query.
type RetrievalResult struct {
	Node   *Node           `json:"node"`
	Hop    int             `json:"hop"` // graph distance from the seed set, 0 for direct matches
	Method RetrievalMethod `json:"retrieval_method"`
}

// Criterion is one of the four scoring dimensions of the rubric.
type Criterion string

const (
	CriterionRelevance    Criterion = "relevance"
	CriterionFaithfulness Criterion = "faithfulness"
	CriterionIntegration  Criterion = "integration"
	CriterionComplexity   Criterion = "complexity"
)

// Criteria lists all rubric criteria in scoring order.
var Criteria = []Criterion{
	CriterionRelevance,
	CriterionFaithfulness,
	CriterionIntegration,
	CriterionComplexity,
}

// Scores holds the four raw criterion scores, each in [0,1]. All four are
// retained on the record so per-criterion averages can be compared across
// variants, not just the composite.
type Scores struct {
	Relevance    float64 `json:"relevance"`
	Faithfulness float64 `json:"faithfulness"`
	Integration  float64 `json:"integration"`
	Complexity   float64 `json:"complexity"`
}

// Get returns the raw score for a criterion.
func (s Scores) Get(criterion Criterion) float64 {
	switch criterion {
	case CriterionRelevance:
		return s.Relevance
	case CriterionFaithfulness:
		return s.Faithfulness
	case CriterionIntegration:
		return s.Integration
	case CriterionComplexity:
		return s.Complexity
	}
	return 0
}

// Set stores the raw score for a criterion.
func (s *Scores) Set(criterion Criterion, value float64) {
	switch criterion {
	case CriterionRelevance:
		s.Relevance = value
	case CriterionFaithfulness:
		s.Faithfulness = value
	case CriterionIntegration:
		s.Integration = value
	case CriterionComplexity:
		s.Complexity = value
	}
}

// EvaluationRecord is the atomic result unit of the experiment: one per
// (topic, variant) run, immutable once created.
type EvaluationRecord struct {
	RID        uuid.UUID `json:"rid"`
	RunID      uuid.UUID `json:"run_id"`
	Topic      string    `json:"topic"`
	Variant    Variant   `json:"variant"`
	Question   *Question `json:"question"`
	ContextIDs []string  `json:"context_ids"`
	Scores     Scores    `json:"scores"`
	Composite  float64   `json:"composite"`
	// Flags names criteria whose judgments were clamped or defaulted,
	// e.g. "integration_clamped" or "complexity_defaulted".
	Flags     []string  `json:"flags,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantSummary aggregates all records of one variant across topics.
type VariantSummary struct {
	Variant       Variant `json:"variant"`
	Runs          int     `json:"runs"`
	MeanComposite float64 `json:"mean_composite"`
	MeanScores    Scores  `json:"mean_scores"`
}

// RunSummary is the run-level aggregation over all evaluation records.
type RunSummary struct {
	RunID    uuid.UUID                   `json:"run_id"`
	Variants map[Variant]*VariantSummary `json:"variants"`
}

// Improvement returns the graphrag mean composite minus the baseline mean
// composite, or 0 when either variant has no records.
func (s *RunSummary) Improvement() float64 {
	baseline, okB := s.Variants[VariantBaseline]
	graphrag, okG := s.Variants[VariantGraphRAG]
	if !okB || !okG {
		return 0
	}
	return graphrag.MeanComposite - baseline.MeanComposite
}
