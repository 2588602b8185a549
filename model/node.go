package model

import "strings"

// Node is a chunk node in the knowledge graph. Nodes are created once
// during the build and are immutable afterwards; the graph store is their
// exclusive owner.
type Node struct {
	ID            string   `json:"id"`
	TextbookID    int      `json:"textbook_id"`
	Chapter       string   `json:"chapter,omitempty"`
	Section       string   `json:"section,omitempty"`
	SequenceIndex int      `json:"sequence_index"`
	Content       string   `json:"content"`
	Topics        []string `json:"topics"` // normalized keywords
	Order         int      `json:"order"`  // insertion order during the build
}

// Matches reports whether the node's content or any of its topic labels
// contains the given normalized keyword. This is the single topic-matching
// rule shared by the topic index, the baseline retriever and graph seed
// selection: case-insensitive substring, no semantic similarity.
func (n *Node) Matches(keyword string) bool {
	if keyword == "" {
		return false
	}
	for _, topic := range n.Topics {
		if strings.Contains(topic, keyword) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(n.Content), keyword)
}

// TopicsOverlap reports whether two normalized topic sets intersect,
// counting exact matches and substring containment in either direction.
func TopicsOverlap(a, b []string) bool {
	for _, ta := range a {
		for _, tb := range b {
			if ta == tb || strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				return true
			}
		}
	}
	return false
}
