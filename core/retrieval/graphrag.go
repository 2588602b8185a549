package retrieval

import (
	"context"
	"log/slog"

	"github.com/examgraph/examgraph/core/graph"
	"github.com/examgraph/examgraph/model"
)

// GraphStrategy is the multi-hop graph retriever: seed nodes are selected
// with the same keyword-matching rule as the baseline, then a bounded
// breadth-first expansion follows both follows and shares_topic edges.
type GraphStrategy struct {
	store  *graph.Store
	config model.GraphConfig
	sample graph.Sampler
	log    *slog.Logger
}

// NewGraphStrategy creates a graph strategy, failing fast on invalid
// retriever parameters. The frontier sampler is picked from the configured
// sample seed: 0 keeps discovery order, anything else shuffles
// reproducibly.
func NewGraphStrategy(store *graph.Store, config model.GraphConfig, logger *slog.Logger) (*GraphStrategy, error) {
	if store == nil {
		return nil, &model.ConfigurationError{Field: "store", Reason: "must not be nil"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	sample := graph.Sampler(graph.FirstK)
	if config.SampleSeed != 0 {
		sample = graph.ShuffleK(config.SampleSeed)
	}

	return &GraphStrategy{store: store, config: config, sample: sample, log: logger}, nil
}

// Retrieve anchors the traversal on the first SeedLimit direct topic
// matches and expands up to MaxHops layers or MaxNodes accepted nodes,
// whichever fills first. A topic with no seeds returns an empty result.
func (s *GraphStrategy) Retrieve(ctx context.Context, topic string) ([]*model.RetrievalResult, error) {
	keyword := model.NormalizeTopic(topic)
	if keyword == "" {
		return nil, &model.ConfigurationError{Field: "topic", Reason: "must not be empty"}
	}

	var seeds []string
	for _, node := range s.store.Nodes() {
		if !node.Matches(keyword) {
			continue
		}
		seeds = append(seeds, node.ID)
		if len(seeds) >= s.config.SeedLimit {
			break
		}
	}

	s.log.Debug("Graph retrieval seeds",
		slog.String("topic", topic),
		slog.Int("seeds", len(seeds)),
	)

	if len(seeds) == 0 {
		return nil, nil
	}

	visits := graph.BoundedBFS(s.store, seeds, s.config.MaxHops, s.config.MaxNodes, s.sample)

	results := make([]*model.RetrievalResult, 0, len(visits))
	for _, visit := range visits {
		node, ok := s.store.Node(visit.ID)
		if !ok {
			continue
		}
		results = append(results, &model.RetrievalResult{
			Node:   node,
			Hop:    visit.Hop,
			Method: model.RetrievalMethodGraph,
		})
	}

	s.log.Debug("Graph retrieval",
		slog.String("topic", topic),
		slog.Int("nodes", len(results)),
	)

	return results, nil
}
