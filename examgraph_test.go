package examgraph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/examgraph/examgraph/core/eval"
	"github.com/examgraph/examgraph/generate"
	"github.com/examgraph/examgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubOptions() *Options {
	opts := DefaultOptions()
	opts.Generator = generate.GeneratorFunc(func(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error) {
		if len(contexts) == 0 {
			return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: errors.New("empty retrieval context")}
		}
		return &model.Question{
			Text:           fmt.Sprintf("Question about %s?", topic),
			Choices:        []string{"A", "B", "C", "D"},
			ExpectedAnswer: "A",
			Rationale:      "Stub rationale.",
		}, nil
	})
	opts.Judge = eval.JudgeFunc(func(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error) {
		if criterion == model.CriterionIntegration && len(contexts) > 1 {
			return 0.9, nil
		}
		return 0.5, nil
	})
	return opts
}

func sampleChunks() []model.Chunk {
	return []model.Chunk{
		{TextbookID: 1, SequenceIndex: 0, Topics: []string{"recursion"},
			Content: "Recursion reduces a problem to smaller instances."},
		{TextbookID: 1, SequenceIndex: 1, Topics: []string{"stack"},
			Content: "Each call pushes a frame onto the call stack."},
		{TextbookID: 1, SequenceIndex: 2, Topics: []string{"recursion", "memoization"},
			Content: "Memoization caches intermediate results."},
	}
}

func TestNewExamGraph(t *testing.T) {
	t.Run("Create instance with all components wired", func(t *testing.T) {
		instance, err := NewExamGraph(stubOptions())

		require.NoError(t, err)
		assert.NotNil(t, instance.Store)
		assert.NotNil(t, instance.Baseline)
		assert.NotNil(t, instance.GraphRAG)
		assert.NotNil(t, instance.Evaluator)
	})

	t.Run("Reject nil options and missing collaborators", func(t *testing.T) {
		var configErr *model.ConfigurationError

		_, err := NewExamGraph(nil)
		assert.ErrorAs(t, err, &configErr)

		opts := stubOptions()
		opts.Generator = nil
		_, err = NewExamGraph(opts)
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("Weights not summing to 1.0 fail before any run", func(t *testing.T) {
		opts := stubOptions()
		opts.Weights = model.Weights{Relevance: 0.5, Faithfulness: 0.5, Integration: 0.5, Complexity: 0.5}

		var configErr *model.ConfigurationError
		_, err := NewExamGraph(opts)
		assert.ErrorAs(t, err, &configErr)
	})
}

func TestExamGraphRetrieve(t *testing.T) {
	instance, err := NewExamGraph(stubOptions())
	require.NoError(t, err)
	require.NoError(t, instance.Build(sampleChunks()))

	ctx := context.Background()

	t.Run("Baseline variant uses flat keyword retrieval", func(t *testing.T) {
		results, err := instance.Retrieve(ctx, "recursion", model.VariantBaseline)

		require.NoError(t, err)
		assert.Len(t, results, 2, "Expected only the direct matches")
		for _, result := range results {
			assert.Equal(t, model.RetrievalMethodKeyword, result.Method)
		}
	})

	t.Run("Graphrag variant expands beyond the direct matches", func(t *testing.T) {
		results, err := instance.Retrieve(ctx, "recursion", model.VariantGraphRAG)

		require.NoError(t, err)
		assert.Len(t, results, 3, "Expected the bridging neighbor to be pulled in")
		for _, result := range results {
			assert.Equal(t, model.RetrievalMethodGraph, result.Method)
		}
	})
}

func TestExamGraphExperiment(t *testing.T) {
	t.Run("Full run over stub collaborators", func(t *testing.T) {
		instance, err := NewExamGraph(stubOptions())
		require.NoError(t, err)
		require.NoError(t, instance.Build(sampleChunks()))

		runner, err := instance.NewRunner()
		require.NoError(t, err)

		summary, records, err := runner.Run(context.Background(), []string{"recursion"})

		require.NoError(t, err)
		require.Len(t, records, 2, "Expected one record per variant")
		require.Contains(t, summary.Variants, model.VariantBaseline)
		require.Contains(t, summary.Variants, model.VariantGraphRAG)
		assert.Greater(t, summary.Variants[model.VariantGraphRAG].MeanScores.Integration,
			summary.Variants[model.VariantBaseline].MeanScores.Integration-1e-9,
			"Expected the graph variant to score at least as well on integration")
	})
}
