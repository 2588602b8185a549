package graph

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/examgraph/examgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunks() []model.Chunk {
	return []model.Chunk{
		{TextbookID: 1, SequenceIndex: 0, Topics: []string{"recursion"},
			Content: "Recursion solves a problem by reducing it to smaller instances."},
		{TextbookID: 1, SequenceIndex: 1, Topics: []string{"stack"},
			Content: "Each call pushes a frame onto the call stack."},
		{TextbookID: 1, SequenceIndex: 2, Topics: []string{"recursion", "memoization"},
			Content: "Memoization caches intermediate results."},
	}
}

func hasNeighbor(neighbors []model.Neighbor, id string, kind model.EdgeKind) bool {
	for _, neighbor := range neighbors {
		if neighbor.ID == id && neighbor.Kind == kind {
			return true
		}
	}
	return false
}

func TestStoreBuild(t *testing.T) {
	t.Run("Build creates one node per chunk in insertion order", func(t *testing.T) {
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(testChunks()))

		assert.Equal(t, 3, store.Len(), "Expected 3 nodes")
		nodes := store.Nodes()
		for i, node := range nodes {
			assert.Equal(t, i, node.Order, "Expected insertion order to be stable")
			assert.Equal(t, fmt.Sprintf("tb1_node%d", i), node.ID, "Expected derived node id")
		}
	})

	t.Run("Follows edges chain consecutive chunks in both directions", func(t *testing.T) {
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(testChunks()))

		assert.True(t, hasNeighbor(store.Neighbors("tb1_node0"), "tb1_node1", model.EdgeKindFollows))
		assert.True(t, hasNeighbor(store.Neighbors("tb1_node1"), "tb1_node0", model.EdgeKindFollows))
		assert.True(t, hasNeighbor(store.Neighbors("tb1_node1"), "tb1_node2", model.EdgeKindFollows))
		assert.True(t, hasNeighbor(store.Neighbors("tb1_node2"), "tb1_node1", model.EdgeKindFollows))
		assert.False(t, hasNeighbor(store.Neighbors("tb1_node0"), "tb1_node2", model.EdgeKindFollows),
			"Expected no follows edge between non-adjacent chunks")
	})

	t.Run("Shares_topic edges connect nodes with intersecting topic sets symmetrically", func(t *testing.T) {
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(testChunks()))

		assert.True(t, hasNeighbor(store.Neighbors("tb1_node0"), "tb1_node2", model.EdgeKindSharesTopic))
		assert.True(t, hasNeighbor(store.Neighbors("tb1_node2"), "tb1_node0", model.EdgeKindSharesTopic))
		assert.False(t, hasNeighbor(store.Neighbors("tb1_node0"), "tb1_node1", model.EdgeKindSharesTopic))
	})

	t.Run("Shares_topic edges span textbooks", func(t *testing.T) {
		chunks := append(testChunks(), model.Chunk{
			TextbookID: 2, SequenceIndex: 0, Topics: []string{"recursion"},
			Content: "A recursive definition refers to itself.",
		})
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(chunks))

		assert.True(t, hasNeighbor(store.Neighbors("tb2_node0"), "tb1_node0", model.EdgeKindSharesTopic))
		assert.False(t, hasNeighbor(store.Neighbors("tb2_node0"), "tb1_node1", model.EdgeKindFollows),
			"Expected no follows edge across textbooks")
	})

	t.Run("Duplicate edges of the same kind are not recorded twice", func(t *testing.T) {
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(testChunks()))

		count := 0
		for _, neighbor := range store.Neighbors("tb1_node0") {
			if neighbor.ID == "tb1_node2" && neighbor.Kind == model.EdgeKindSharesTopic {
				count++
			}
		}
		assert.Equal(t, 1, count, "Expected exactly one shares_topic record per ordered pair")
	})

	t.Run("Malformed chunks are skipped and counted, not fatal", func(t *testing.T) {
		chunks := []model.Chunk{
			{TextbookID: 1, SequenceIndex: 0, Topics: []string{"recursion"}, Content: "Valid chunk."},
			{TextbookID: 1, SequenceIndex: 1, Topics: []string{"stack"}, Content: "   "},
			{TextbookID: 1, SequenceIndex: 2, Topics: nil, Content: "No topics."},
			{TextbookID: 1, SequenceIndex: 3, Topics: []string{"recursion"}, Content: "Another valid chunk."},
		}

		store := NewStore(slog.Default())
		require.NoError(t, store.Build(chunks))

		assert.Equal(t, 2, store.Len(), "Expected only the valid chunks")
		assert.Equal(t, 2, store.SkippedChunks(), "Expected skipped chunk count")
		// The two surviving chunks become sequence neighbors.
		assert.True(t, hasNeighbor(store.Neighbors("tb1_node0"), "tb1_node3", model.EdgeKindFollows))
	})

	t.Run("Rebuild replaces nodes and derived edges", func(t *testing.T) {
		store := NewStore(slog.Default())
		require.NoError(t, store.Build(testChunks()))
		require.NoError(t, store.Build(testChunks()[:1]))

		assert.Equal(t, 1, store.Len(), "Expected rebuild to start from scratch")
		assert.Empty(t, store.Neighbors("tb1_node0"), "Expected no stale edges after rebuild")
	})
}

func TestStoreNodesByTopic(t *testing.T) {
	store := NewStore(slog.Default())
	require.NoError(t, store.Build(testChunks()))

	t.Run("Exact keyword match", func(t *testing.T) {
		ids := store.NodesByTopic("recursion")

		assert.Equal(t, []string{"tb1_node0", "tb1_node2"}, ids, "Expected insertion-ordered topic matches")
	})

	t.Run("Substring keyword match is case-insensitive", func(t *testing.T) {
		ids := store.NodesByTopic("MEMO")

		assert.Equal(t, []string{"tb1_node2"}, ids)
	})

	t.Run("Unknown keyword returns no ids", func(t *testing.T) {
		assert.Empty(t, store.NodesByTopic("quicksort"))
		assert.Empty(t, store.NodesByTopic(""))
	})

	t.Run("Topic index is consistent with node topic sets", func(t *testing.T) {
		for _, node := range store.Nodes() {
			for _, topic := range node.Topics {
				assert.Contains(t, store.NodesByTopic(topic), node.ID,
					"Expected node %s to be indexed under %s", node.ID, topic)
			}
		}
	})
}
