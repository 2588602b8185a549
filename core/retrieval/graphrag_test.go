package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/examgraph/examgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraphStrategy(t *testing.T) {
	t.Run("Create graph strategy", func(t *testing.T) {
		store := buildStore(t, nil)

		strategy, err := NewGraphStrategy(store, model.DefaultGraphConfig(), slog.Default())

		require.NoError(t, err)
		assert.NotNil(t, strategy.sample, "Expected a frontier sampler to be picked")
	})

	t.Run("Reject nil store and invalid traversal bounds", func(t *testing.T) {
		store := buildStore(t, nil)
		var configErr *model.ConfigurationError

		_, err := NewGraphStrategy(nil, model.DefaultGraphConfig(), slog.Default())
		assert.ErrorAs(t, err, &configErr)

		_, err = NewGraphStrategy(store, model.GraphConfig{SeedLimit: 3, MaxHops: 0, MaxNodes: 15}, slog.Default())
		assert.ErrorAs(t, err, &configErr)
	})
}

func TestGraphStrategyRetrieve(t *testing.T) {
	chunks := []model.Chunk{
		{TextbookID: 1, SequenceIndex: 0, Topics: []string{"recursion"},
			Content: "Recursion reduces a problem to smaller instances."},
		{TextbookID: 1, SequenceIndex: 1, Topics: []string{"stack"},
			Content: "Each call pushes a frame onto the call stack."},
		{TextbookID: 1, SequenceIndex: 2, Topics: []string{"recursion", "memoization"},
			Content: "Memoization caches intermediate results."},
	}
	store := buildStore(t, chunks)
	ctx := context.Background()

	t.Run("One hop from topic seeds pulls in the bridging neighbor", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.GraphConfig{SeedLimit: 3, MaxHops: 1, MaxNodes: 10}, slog.Default())
		require.NoError(t, err)

		results, err := strategy.Retrieve(ctx, "recursion")

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"tb1_node0", "tb1_node2", "tb1_node1"}, resultIDs(results),
			"Expected both seeds plus their shared sequence neighbor")
		for _, result := range results {
			assert.Equal(t, model.RetrievalMethodGraph, result.Method)
			assert.LessOrEqual(t, result.Hop, 1, "Expected no result beyond maxHops")
		}
	})

	t.Run("Seeds carry hop 0, expanded nodes a positive hop", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.GraphConfig{SeedLimit: 3, MaxHops: 1, MaxNodes: 10}, slog.Default())
		require.NoError(t, err)

		results, err := strategy.Retrieve(ctx, "recursion")
		require.NoError(t, err)

		hops := make(map[string]int)
		for _, result := range results {
			hops[result.Node.ID] = result.Hop
		}
		assert.Equal(t, 0, hops["tb1_node0"])
		assert.Equal(t, 0, hops["tb1_node2"])
		assert.Equal(t, 1, hops["tb1_node1"])
	})

	t.Run("No seeds means an empty result, not an error", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.DefaultGraphConfig(), slog.Default())
		require.NoError(t, err)

		results, err := strategy.Retrieve(ctx, "linear algebra")

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Empty topic is a configuration error", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.DefaultGraphConfig(), slog.Default())
		require.NoError(t, err)

		var configErr *model.ConfigurationError
		_, err = strategy.Retrieve(ctx, "")
		assert.ErrorAs(t, err, &configErr)
	})
}

func TestGraphStrategyBounds(t *testing.T) {
	// One hub sharing a topic with many spokes, so the frontier overflows
	// the node cap on the first hop.
	chunks := []model.Chunk{
		{TextbookID: 1, SequenceIndex: 0, Topics: []string{"hashing"}, Content: "Hash functions map keys to buckets."},
	}
	for i := 1; i <= 30; i++ {
		chunks = append(chunks, model.Chunk{
			TextbookID:    i + 1,
			SequenceIndex: 0,
			Topics:        []string{"hashing_variants"},
			Content:       fmt.Sprintf("Bucket strategy %d.", i),
		})
	}
	store := buildStore(t, chunks)
	ctx := context.Background()

	t.Run("MaxNodes caps the expansion", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.GraphConfig{SeedLimit: 1, MaxHops: 2, MaxNodes: 6}, slog.Default())
		require.NoError(t, err)

		results, err := strategy.Retrieve(ctx, "hashing")

		require.NoError(t, err)
		assert.Len(t, results, 6, "Expected the traversal to stop at maxNodes")
	})

	t.Run("SeedLimit caps the anchor set", func(t *testing.T) {
		strategy, err := NewGraphStrategy(store, model.GraphConfig{SeedLimit: 2, MaxHops: 1, MaxNodes: 50}, slog.Default())
		require.NoError(t, err)

		results, err := strategy.Retrieve(ctx, "bucket")
		require.NoError(t, err)

		seeds := 0
		for _, result := range results {
			if result.Hop == 0 {
				seeds++
			}
		}
		assert.Equal(t, 2, seeds, "Expected only the first SeedLimit matches as anchors")
	})

	t.Run("Seeded sampling is reproducible across strategies", func(t *testing.T) {
		config := model.GraphConfig{SeedLimit: 1, MaxHops: 2, MaxNodes: 6, SampleSeed: 42}

		first, err := NewGraphStrategy(store, config, slog.Default())
		require.NoError(t, err)
		second, err := NewGraphStrategy(store, config, slog.Default())
		require.NoError(t, err)

		firstResults, err := first.Retrieve(ctx, "hashing")
		require.NoError(t, err)
		secondResults, err := second.Retrieve(ctx, "hashing")
		require.NoError(t, err)

		assert.Equal(t, resultIDs(firstResults), resultIDs(secondResults), "Expected the same seed to reproduce the sample")
	})
}
