package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/examgraph/examgraph/core/eval"
	"github.com/examgraph/examgraph/core/retrieval"
	"github.com/examgraph/examgraph/generate"
	"github.com/examgraph/examgraph/model"
	"github.com/google/uuid"
)

// Runner drives the experiment: for each topic it produces a baseline run
// and a graphrag run, each retrieve -> generate -> score -> record. The
// pipeline is sequential by design; the only shared state across topics is
// the read-only, build-once graph behind the strategies.
type Runner struct {
	baseline  retrieval.Strategy
	graphrag  retrieval.Strategy
	generator generate.QuestionGenerator
	evaluator *eval.Evaluator
	sinks     []RecordSink
	log       *slog.Logger
}

// NewRunner creates a runner, failing fast when a collaborator is missing.
func NewRunner(
	baseline retrieval.Strategy,
	graphrag retrieval.Strategy,
	generator generate.QuestionGenerator,
	evaluator *eval.Evaluator,
	logger *slog.Logger,
	sinks ...RecordSink,
) (*Runner, error) {
	if baseline == nil || graphrag == nil {
		return nil, &model.ConfigurationError{Field: "strategies", Reason: "must not be nil"}
	}
	if generator == nil {
		return nil, &model.ConfigurationError{Field: "generator", Reason: "must not be nil"}
	}
	if evaluator == nil {
		return nil, &model.ConfigurationError{Field: "evaluator", Reason: "must not be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		baseline:  baseline,
		graphrag:  graphrag,
		generator: generator,
		evaluator: evaluator,
		sinks:     sinks,
		log:       logger,
	}, nil
}

// Run processes all topics sequentially. A GenerationError aborts only the
// affected (topic, variant) pair; remaining runs continue. Cancelling the
// context stops the experiment between runs.
func (r *Runner) Run(ctx context.Context, topics []string) (*model.RunSummary, []*model.EvaluationRecord, error) {
	runID := uuid.New()
	records := make([]*model.EvaluationRecord, 0, len(topics)*len(model.Variants))

	r.log.Info("Starting experiment", slog.String("run_id", runID.String()), slog.Int("topics", len(topics)))

	for i, topic := range topics {
		r.log.Info(fmt.Sprintf("Topic %d/%d", i+1, len(topics)), slog.String("topic", topic))

		for _, variant := range model.Variants {
			if err := ctx.Err(); err != nil {
				return nil, records, err
			}

			record, err := r.runOne(ctx, runID, topic, variant)
			if err != nil {
				var genErr *model.GenerationError
				if errors.As(err, &genErr) {
					r.log.Error("Generation failed, skipping run",
						slog.String("topic", topic),
						slog.String("variant", string(variant)),
						slog.String("error", err.Error()),
					)
					continue
				}
				return nil, records, err
			}

			records = append(records, record)
			r.logRecord(record)

			for _, sink := range r.sinks {
				if err := sink.SaveRecord(record); err != nil {
					r.log.Error("Failed to persist record",
						slog.String("rid", record.RID.String()),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}

	summary := Summarize(runID, records)
	r.logSummary(summary)

	return summary, records, nil
}

func (r *Runner) runOne(ctx context.Context, runID uuid.UUID, topic string, variant model.Variant) (*model.EvaluationRecord, error) {
	strategy := r.baseline
	if variant == model.VariantGraphRAG {
		strategy = r.graphrag
	}

	retrieved, err := strategy.Retrieve(ctx, topic)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(retrieved))
	for i, result := range retrieved {
		contexts[i] = result.Node.Content
	}

	question, err := r.generator.Generate(ctx, topic, contexts, variant)
	if err != nil {
		var genErr *model.GenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: err}
	}

	record, err := r.evaluator.Score(ctx, topic, variant, question, retrieved)
	if err != nil {
		return nil, err
	}
	record.RunID = runID

	return record, nil
}

func (r *Runner) logRecord(record *model.EvaluationRecord) {
	r.log.Info("Scored question",
		slog.String("topic", record.Topic),
		slog.String("variant", string(record.Variant)),
		slog.Float64("composite", record.Composite),
		slog.Float64("relevance", record.Scores.Relevance),
		slog.Float64("faithfulness", record.Scores.Faithfulness),
		slog.Float64("integration", record.Scores.Integration),
		slog.Float64("complexity", record.Scores.Complexity),
		slog.Int("context_nodes", len(record.ContextIDs)),
	)
}

func (r *Runner) logSummary(summary *model.RunSummary) {
	for _, variant := range model.Variants {
		variantSummary, ok := summary.Variants[variant]
		if !ok {
			continue
		}
		r.log.Info("Variant summary",
			slog.String("variant", string(variant)),
			slog.Int("runs", variantSummary.Runs),
			slog.Float64("mean_composite", variantSummary.MeanComposite),
			slog.Float64("mean_integration", variantSummary.MeanScores.Integration),
			slog.Float64("mean_complexity", variantSummary.MeanScores.Complexity),
		)
	}
	r.log.Info("Experiment finished",
		slog.String("run_id", summary.RunID.String()),
		slog.Float64("improvement", summary.Improvement()),
	)
}

// Summarize computes the per-variant mean composite score and
// per-criterion means across all records of a run.
func Summarize(runID uuid.UUID, records []*model.EvaluationRecord) *model.RunSummary {
	summary := &model.RunSummary{
		RunID:    runID,
		Variants: make(map[model.Variant]*model.VariantSummary),
	}

	for _, record := range records {
		variantSummary, ok := summary.Variants[record.Variant]
		if !ok {
			variantSummary = &model.VariantSummary{Variant: record.Variant}
			summary.Variants[record.Variant] = variantSummary
		}
		variantSummary.Runs++
		variantSummary.MeanComposite += record.Composite
		variantSummary.MeanScores.Relevance += record.Scores.Relevance
		variantSummary.MeanScores.Faithfulness += record.Scores.Faithfulness
		variantSummary.MeanScores.Integration += record.Scores.Integration
		variantSummary.MeanScores.Complexity += record.Scores.Complexity
	}

	for _, variantSummary := range summary.Variants {
		n := float64(variantSummary.Runs)
		variantSummary.MeanComposite /= n
		variantSummary.MeanScores.Relevance /= n
		variantSummary.MeanScores.Faithfulness /= n
		variantSummary.MeanScores.Integration /= n
		variantSummary.MeanScores.Complexity /= n
	}

	return summary
}
