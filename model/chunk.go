package model

import "strings"

// Chunk is a single pre-split textbook passage as supplied by the loader.
// Chunks are the only input to the graph build; they are never mutated.
type Chunk struct {
	ID            string   `json:"id,omitempty"`
	TextbookID    int      `json:"textbook_id"`
	Chapter       string   `json:"chapter,omitempty"`
	Section       string   `json:"section,omitempty"`
	SequenceIndex int      `json:"sequence_index"`
	Content       string   `json:"content"`
	Topics        []string `json:"topics"`
	Metadata      Metadata `json:"metadata,omitempty"`
}

// NormalizeTopic lowercases and trims a topic keyword. All topic matching
// in the graph and the retrievers runs on normalized keywords.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// NormalizeTopics normalizes a topic set, dropping empties and duplicates
// while keeping the original order.
func NormalizeTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	normalized := make([]string, 0, len(topics))
	for _, topic := range topics {
		t := NormalizeTopic(topic)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}
	return normalized
}
