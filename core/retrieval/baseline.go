package retrieval

import (
	"context"
	"log/slog"

	"github.com/examgraph/examgraph/core/graph"
	"github.com/examgraph/examgraph/model"
)

// BaselineStrategy is the flat keyword retriever: a case-insensitive
// substring scan over all nodes, ties broken by insertion order.
type BaselineStrategy struct {
	store  *graph.Store
	config model.BaselineConfig
	log    *slog.Logger
}

// NewBaselineStrategy creates a baseline strategy, failing fast on invalid
// retriever parameters.
func NewBaselineStrategy(store *graph.Store, config model.BaselineConfig, logger *slog.Logger) (*BaselineStrategy, error) {
	if store == nil {
		return nil, &model.ConfigurationError{Field: "store", Reason: "must not be nil"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BaselineStrategy{store: store, config: config, log: logger}, nil
}

// Retrieve returns up to Limit nodes whose content or topic labels contain
// the topic string. The scan order is the node insertion order, so repeated
// calls on a fixed graph return identical ordered results.
func (s *BaselineStrategy) Retrieve(ctx context.Context, topic string) ([]*model.RetrievalResult, error) {
	keyword := model.NormalizeTopic(topic)
	if keyword == "" {
		return nil, &model.ConfigurationError{Field: "topic", Reason: "must not be empty"}
	}

	var results []*model.RetrievalResult
	for _, node := range s.store.Nodes() {
		if !node.Matches(keyword) {
			continue
		}
		results = append(results, &model.RetrievalResult{
			Node:   node,
			Hop:    0,
			Method: model.RetrievalMethodKeyword,
		})
		if len(results) >= s.config.Limit {
			break
		}
	}

	s.log.Debug("Baseline retrieval",
		slog.String("topic", topic),
		slog.Int("matches", len(results)),
	)

	return results, nil
}
