package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/examgraph/examgraph"
	"github.com/examgraph/examgraph/core/eval"
	"github.com/examgraph/examgraph/generate"
	"github.com/examgraph/examgraph/model"
)

// Minimal end-to-end walkthrough without any network calls: the generator
// and judge are deterministic stubs, so the output is stable.
func main() {
	chunks := []model.Chunk{
		{TextbookID: 1, SequenceIndex: 0, Topics: []string{"recursion"},
			Content: "Recursion solves a problem by reducing it to smaller instances of itself."},
		{TextbookID: 1, SequenceIndex: 1, Topics: []string{"stack"},
			Content: "Each recursive call pushes a frame onto the call stack."},
		{TextbookID: 1, SequenceIndex: 2, Topics: []string{"recursion", "memoization"},
			Content: "Memoization caches results of recursive calls to avoid recomputation."},
	}

	generator := generate.GeneratorFunc(func(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error) {
		return &model.Question{
			Text:           fmt.Sprintf("How do the %d retrieved passages about %s relate?", len(contexts), topic),
			ExpectedAnswer: "They describe complementary aspects of the same mechanism.",
			Rationale:      "Combined snippets " + strings.Repeat("*", len(contexts)),
		}, nil
	})

	judge := eval.JudgeFunc(func(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error) {
		if criterion == model.CriterionIntegration && len(contexts) > 1 {
			return 0.9, nil
		}
		return 0.5, nil
	})

	opts := examgraph.DefaultOptions()
	opts.Generator = generator
	opts.Judge = judge

	eg, err := examgraph.NewExamGraph(opts)
	if err != nil {
		log.Fatalf("Failed to create examgraph: %v", err)
	}

	if err := eg.Build(chunks); err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	fmt.Printf("Graph: %d nodes, %d directed edges\n", eg.Store.Len(), eg.Store.EdgeCount())

	ctx := context.Background()
	for _, variant := range model.Variants {
		results, err := eg.Retrieve(ctx, "recursion", variant)
		if err != nil {
			log.Fatalf("Retrieval failed: %v", err)
		}

		fmt.Printf("\n[%s] retrieved %d nodes:\n", variant, len(results))
		for _, result := range results {
			fmt.Printf("  %s (hop %d)\n", result.Node.ID, result.Hop)
		}

		question, err := generator.Generate(ctx, "recursion", contents(results), variant)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}

		record, err := eg.Evaluator.Score(ctx, "recursion", variant, question, results)
		if err != nil {
			log.Fatalf("Scoring failed: %v", err)
		}
		fmt.Printf("  composite score: %.3f\n", record.Composite)
	}
}

func contents(results []*model.RetrievalResult) []string {
	out := make([]string, len(results))
	for i, result := range results {
		out[i] = result.Node.Content
	}
	return out
}
