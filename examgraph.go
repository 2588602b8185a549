package examgraph

import (
	"context"
	"log/slog"
	"os"

	"github.com/examgraph/examgraph/core/eval"
	"github.com/examgraph/examgraph/core/graph"
	"github.com/examgraph/examgraph/core/retrieval"
	"github.com/examgraph/examgraph/experiment"
	"github.com/examgraph/examgraph/generate"
	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/model"
)

// ExamGraph provides a unified interface to the knowledge graph, the two
// retrieval strategies and the evaluator.
type ExamGraph struct {
	Store     *graph.Store
	Baseline  retrieval.Strategy
	GraphRAG  retrieval.Strategy
	Generator generate.QuestionGenerator
	Evaluator *eval.Evaluator
	// Logging
	log *slog.Logger
}

// Options configures a new ExamGraph instance. Generator and Judge are the
// external LLM collaborators; tests pass deterministic stubs.
type Options struct {
	Baseline  model.BaselineConfig
	Graph     model.GraphConfig
	Weights   model.Weights
	Generator generate.QuestionGenerator
	Judge     eval.Judge
	Logger    *slog.Logger
}

// NewExamGraph creates an ExamGraph instance with all components wired.
// Configuration problems (invalid retriever parameters, a weight set that
// does not sum to 1.0, missing collaborators) fail fast here, before any
// topic runs.
func NewExamGraph(opts *Options) (*ExamGraph, error) {
	if opts == nil {
		return nil, &model.ConfigurationError{Field: "options", Reason: "must not be nil"}
	}

	logger := opts.Logger
	if logger == nil {
		handlerOpts := helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelInfo,
			},
		}
		logger = slog.New(helper.NewPrettyHandler(os.Stdout, handlerOpts))
	}

	store := graph.NewStore(logger)

	baseline, err := retrieval.NewBaselineStrategy(store, opts.Baseline, logger)
	if err != nil {
		return nil, err
	}

	graphrag, err := retrieval.NewGraphStrategy(store, opts.Graph, logger)
	if err != nil {
		return nil, err
	}

	evaluator, err := eval.NewEvaluator(opts.Judge, opts.Weights, logger)
	if err != nil {
		return nil, err
	}

	if opts.Generator == nil {
		return nil, &model.ConfigurationError{Field: "generator", Reason: "must not be nil"}
	}

	return &ExamGraph{
		Store:     store,
		Baseline:  baseline,
		GraphRAG:  graphrag,
		Generator: opts.Generator,
		Evaluator: evaluator,
		log:       logger,
	}, nil
}

// DefaultOptions returns options with default retriever parameters and
// rubric weights; the collaborators still need to be set.
func DefaultOptions() *Options {
	return &Options{
		Baseline: model.DefaultBaselineConfig(),
		Graph:    model.DefaultGraphConfig(),
		Weights:  model.DefaultWeights(),
	}
}

// Build ingests the loaded chunks into the knowledge graph. The graph is
// build-once/read-many: call Build before retrieving, and do not call it
// concurrently with readers.
func (e *ExamGraph) Build(chunks []model.Chunk) error {
	return e.Store.Build(chunks)
}

// Retrieve returns the context for a topic using the given variant's
// strategy.
func (e *ExamGraph) Retrieve(ctx context.Context, topic string, variant model.Variant) ([]*model.RetrievalResult, error) {
	if variant == model.VariantGraphRAG {
		return e.GraphRAG.Retrieve(ctx, topic)
	}
	return e.Baseline.Retrieve(ctx, topic)
}

// NewRunner creates an experiment runner over this instance's components
func (e *ExamGraph) NewRunner(sinks ...experiment.RecordSink) (*experiment.Runner, error) {
	return experiment.NewRunner(e.Baseline, e.GraphRAG, e.Generator, e.Evaluator, e.log, sinks...)
}
