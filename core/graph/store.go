package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/examgraph/examgraph/model"
)

type edgeKey struct {
	from string
	to   string
	kind model.EdgeKind
}

// Store is the in-memory knowledge graph: chunk nodes, typed adjacency and
// a topic index. It has a build-once/read-many lifecycle; after Build
// returns, the store is never mutated, which is what makes concurrent
// readers safe without locking.
type Store struct {
	nodes      map[string]*model.Node
	order      []string // node ids in insertion order
	adjacency  map[string][]model.Neighbor
	edgeSet    map[edgeKey]struct{}
	topicIndex map[string]map[string]struct{} // normalized keyword -> node ids
	skipped    int
	log        *slog.Logger
}

// NewStore creates an empty graph store
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		nodes:      make(map[string]*model.Node),
		adjacency:  make(map[string][]model.Neighbor),
		edgeSet:    make(map[edgeKey]struct{}),
		topicIndex: make(map[string]map[string]struct{}),
		log:        logger,
	}
}

// Build ingests the loaded chunks and derives all edges. Chunks without
// content or topic labels are skipped and counted, not fatal. Calling
// Build again rebuilds the graph from scratch; edges are derived data and
// are never carried over.
func (s *Store) Build(chunks []model.Chunk) error {
	s.nodes = make(map[string]*model.Node, len(chunks))
	s.order = make([]string, 0, len(chunks))
	s.adjacency = make(map[string][]model.Neighbor)
	s.edgeSet = make(map[edgeKey]struct{})
	s.topicIndex = make(map[string]map[string]struct{})
	s.skipped = 0

	// Chunks arrive in textbook reading order, so the previous node per
	// textbook is all that is needed to chain follows edges.
	previous := make(map[int]string)

	for i, chunk := range chunks {
		if err := validateChunk(i, chunk); err != nil {
			s.skipped++
			s.log.Debug("Skipping chunk", slog.Int("index", i), slog.String("reason", err.Error()))
			continue
		}

		node := s.addNode(chunk)

		if prevID, ok := previous[chunk.TextbookID]; ok {
			// Both directions recorded: traversal must walk a chain
			// either way.
			s.addEdge(prevID, node.ID, model.EdgeKindFollows)
			s.addEdge(node.ID, prevID, model.EdgeKindFollows)
		}
		previous[chunk.TextbookID] = node.ID
	}

	s.buildSharesTopicEdges()

	s.log.Info("Built knowledge graph",
		slog.Int("nodes", len(s.order)),
		slog.Int("edges", s.EdgeCount()),
		slog.Int("topics", len(s.topicIndex)),
		slog.Int("skipped_chunks", s.skipped),
	)

	return nil
}

func validateChunk(index int, chunk model.Chunk) error {
	if strings.TrimSpace(chunk.Content) == "" {
		return &model.MalformedChunkError{Index: index, Reason: "missing content"}
	}
	if len(model.NormalizeTopics(chunk.Topics)) == 0 {
		return &model.MalformedChunkError{Index: index, Reason: "missing topic labels"}
	}
	return nil
}

// addNode creates a node from a chunk and updates the topic index. The
// index is updated in the same step as the insertion, so it is consistent
// with the node topic sets at all times.
func (s *Store) addNode(chunk model.Chunk) *model.Node {
	id := chunk.ID
	if id == "" {
		id = fmt.Sprintf("tb%d_node%d", chunk.TextbookID, chunk.SequenceIndex)
	}

	node := &model.Node{
		ID:            id,
		TextbookID:    chunk.TextbookID,
		Chapter:       chunk.Chapter,
		Section:       chunk.Section,
		SequenceIndex: chunk.SequenceIndex,
		Content:       chunk.Content,
		Topics:        model.NormalizeTopics(chunk.Topics),
		Order:         len(s.order),
	}

	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)

	for _, topic := range node.Topics {
		if s.topicIndex[topic] == nil {
			s.topicIndex[topic] = make(map[string]struct{})
		}
		s.topicIndex[topic][node.ID] = struct{}{}
	}

	return node
}

// addEdge records one directed edge, skipping self edges and duplicates of
// the same kind between the same ordered pair.
func (s *Store) addEdge(from, to string, kind model.EdgeKind) {
	if from == to {
		return
	}
	key := edgeKey{from: from, to: to, kind: kind}
	if _, exists := s.edgeSet[key]; exists {
		return
	}
	s.edgeSet[key] = struct{}{}
	s.adjacency[from] = append(s.adjacency[from], model.Neighbor{ID: to, Kind: kind})
}

// buildSharesTopicEdges connects every pair of nodes with intersecting
// topic sets, within and across textbooks. This is a deliberate O(n^2)
// pairwise comparison: the dataset is hundreds of chunks, and the exact
// substring matching keeps edge creation fully deterministic, which a
// smarter similarity join would not.
func (s *Store) buildSharesTopicEdges() {
	for i := 0; i < len(s.order); i++ {
		for j := i + 1; j < len(s.order); j++ {
			a := s.nodes[s.order[i]]
			b := s.nodes[s.order[j]]
			if model.TopicsOverlap(a.Topics, b.Topics) {
				s.addEdge(a.ID, b.ID, model.EdgeKindSharesTopic)
				s.addEdge(b.ID, a.ID, model.EdgeKindSharesTopic)
			}
		}
	}
}

// Node returns the node with the given id
func (s *Store) Node(id string) (*model.Node, bool) {
	node, ok := s.nodes[id]
	return node, ok
}

// Nodes returns all nodes in insertion order
func (s *Store) Nodes() []*model.Node {
	nodes := make([]*model.Node, len(s.order))
	for i, id := range s.order {
		nodes[i] = s.nodes[id]
	}
	return nodes
}

// Neighbors returns the adjacent nodes of a node together with the edge
// kind that connects them.
func (s *Store) Neighbors(id string) []model.Neighbor {
	return s.adjacency[id]
}

// NodesByTopic returns the ids of all nodes whose topic labels match the
// keyword (case-insensitive exact or substring match), in insertion order.
func (s *Store) NodesByTopic(topic string) []string {
	keyword := model.NormalizeTopic(topic)
	if keyword == "" {
		return nil
	}

	matched := make(map[string]struct{})
	for indexed, ids := range s.topicIndex {
		if !strings.Contains(indexed, keyword) {
			continue
		}
		for id := range ids {
			matched[id] = struct{}{}
		}
	}

	result := make([]string, 0, len(matched))
	for id := range matched {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool {
		return s.nodes[result[i]].Order < s.nodes[result[j]].Order
	})

	return result
}

// Len returns the number of nodes in the graph
func (s *Store) Len() int {
	return len(s.order)
}

// EdgeCount returns the number of directed edge records in the graph.
// Every undirected relation is recorded in both directions, so this is
// twice the number of node pairs connected per kind.
func (s *Store) EdgeCount() int {
	return len(s.edgeSet)
}

// SkippedChunks returns how many malformed chunks the last build skipped
func (s *Store) SkippedChunks() int {
	return s.skipped
}
