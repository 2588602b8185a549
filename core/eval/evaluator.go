package eval

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/examgraph/examgraph/model"
	"github.com/google/uuid"
)

// Judge scores a single rubric criterion for a generated question against
// its retrieval context, returning a float in [0,1]. Production judges may
// call an LLM; tests use deterministic stubs.
type Judge interface {
	Judge(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error)
}

// JudgeFunc adapts a plain function to the Judge interface
type JudgeFunc func(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error)

// Judge implements the Judge interface
func (f JudgeFunc) Judge(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error) {
	return f(ctx, question, contexts, criterion)
}

// Evaluator owns the weighting and aggregation of the four-criterion
// rubric. Judgment itself is delegated to the Judge collaborator.
type Evaluator struct {
	judge   Judge
	weights model.Weights
	log     *slog.Logger
}

// NewEvaluator creates an evaluator, asserting at construction time that
// the weights sum to 1.0. An invalid weight set is a ConfigurationError
// and must abort before any topic runs.
func NewEvaluator(judge Judge, weights model.Weights, logger *slog.Logger) (*Evaluator, error) {
	if judge == nil {
		return nil, &model.ConfigurationError{Field: "judge", Reason: "must not be nil"}
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{judge: judge, weights: weights, log: logger}, nil
}

// Weights returns the fixed criterion weights
func (e *Evaluator) Weights() model.Weights {
	return e.weights
}

// Score judges all four criteria and produces the evaluation record with
// every raw score, the weighted composite and any clamp/default flags.
// Out-of-range judgments are clamped and flagged; unscorable criteria
// default to 0 and are flagged. No score ever reaches the composite as
// NaN, and judgment problems never crash the run.
func (e *Evaluator) Score(ctx context.Context, topic string, variant model.Variant, question *model.Question, retrieved []*model.RetrievalResult) (*model.EvaluationRecord, error) {
	if question == nil {
		return nil, &model.ConfigurationError{Field: "question", Reason: "must not be nil"}
	}

	contexts := make([]string, 0, len(retrieved))
	contextIDs := make([]string, 0, len(retrieved))
	for _, result := range retrieved {
		contexts = append(contexts, result.Node.Content)
		contextIDs = append(contextIDs, result.Node.ID)
	}

	var scores model.Scores
	var flags []string

	for _, criterion := range model.Criteria {
		value, err := e.judge.Judge(ctx, question, contexts, criterion)
		if err != nil {
			var formatErr *model.JudgmentFormatError
			if errors.As(err, &formatErr) {
				value = formatErr.Value
			} else {
				value = math.NaN()
			}
			e.log.Warn("Judgment failed, clamping",
				slog.String("topic", topic),
				slog.String("variant", string(variant)),
				slog.String("criterion", string(criterion)),
				slog.String("error", err.Error()),
			)
		}

		clamped, flag := clamp(value)
		if flag != "" {
			flags = append(flags, string(criterion)+"_"+flag)
		}
		scores.Set(criterion, clamped)
	}

	return &model.EvaluationRecord{
		RID:        uuid.New(),
		Topic:      topic,
		Variant:    variant,
		Question:   question,
		ContextIDs: contextIDs,
		Scores:     scores,
		Composite:  e.weights.Composite(scores),
		Flags:      flags,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// clamp forces a raw judgment into [0,1]. NaN defaults to 0. The returned
// flag is empty when the value was already in range.
func clamp(value float64) (float64, string) {
	switch {
	case math.IsNaN(value):
		return 0, "defaulted"
	case value < 0:
		return 0, "clamped"
	case value > 1:
		return 1, "clamped"
	}
	return value, ""
}
