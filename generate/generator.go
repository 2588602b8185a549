package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/examgraph/examgraph/model"
)

// QuestionGenerator turns a retrieval context into an exam question. The
// call is blocking and synchronous; retry policy, if any, belongs to the
// implementation, not its callers.
type QuestionGenerator interface {
	Generate(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error)
}

// GeneratorFunc adapts a plain function to the QuestionGenerator interface
type GeneratorFunc func(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error)

// Generate implements the QuestionGenerator interface
func (f GeneratorFunc) Generate(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error) {
	return f(ctx, topic, contexts, variant)
}

// snippetLimit caps how much of each context snippet makes it into the
// prompt, matching the examiner's context window budget.
const snippetLimit = 300

const graphragInstructions = `You are an expert Computer Science Examiner.
The context contains graph-connected snippets about %q.
Task: Create a Multi-Hop Question that requires synthesizing information from AT LEAST TWO different snippets.
- The question MUST connect a concept from one snippet to a concept in another.
- Do NOT ask simple definition questions.`

const baselineInstructions = `You are an expert Computer Science Examiner.
Task: Create a Multiple Choice Question about %q based on the context.`

// BuildPrompt renders the full generation prompt for a variant. The
// graphrag variant demands multi-snippet synthesis; the baseline variant
// asks for a plain multiple choice question.
func BuildPrompt(topic string, contexts []string, variant model.Variant) string {
	instructions := baselineInstructions
	if variant == model.VariantGraphRAG {
		instructions = graphragInstructions
	}

	var b strings.Builder
	fmt.Fprintf(&b, instructions, topic)
	fmt.Fprintf(&b, "\n\nTopic: %s\nContext:\n%s\n\n", topic, SnippetList(contexts))
	b.WriteString(`Return JSON:
{
    "question": "...",
    "choices": ["...", "...", "...", "..."],
    "correct_answer": "...",
    "rationale": "Explain step-by-step how snippets were combined."
}`)

	return b.String()
}

// SnippetList renders the numbered, truncated context snippets used in
// generation and judgment prompts.
func SnippetList(contexts []string) string {
	var b strings.Builder
	for i, content := range contexts {
		snippet := content
		if len(snippet) > snippetLimit {
			snippet = snippet[:snippetLimit] + "..."
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, snippet)
	}
	return b.String()
}
