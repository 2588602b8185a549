package retrieval

import (
	"context"

	"github.com/examgraph/examgraph/model"
)

// Strategy produces the retrieval context for a query topic. An empty
// result is a valid degenerate outcome, not an error: callers must handle
// a possibly-empty context before invoking question generation.
type Strategy interface {
	Retrieve(ctx context.Context, topic string) ([]*model.RetrievalResult, error)
}
