package loader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/model"
)

// textbookEntry is one record of a structured textbook file. The loader is
// a trusted input boundary: beyond JSON shape, validation (and skipping of
// malformed records) happens at graph build time.
type textbookEntry struct {
	ID      string         `json:"id,omitempty"`
	Chapter string         `json:"chapter,omitempty"`
	Section string         `json:"section,omitempty"`
	Content string         `json:"content"`
	Topics  []string       `json:"topics"`
	Extra   map[string]any `json:"metadata,omitempty"`
}

// LoadTextbook reads one structured textbook file and returns its chunks
// in file order, with textbook id and sequence indices assigned.
func LoadTextbook(path string, textbookID int) ([]model.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read textbook file", err)
	}

	var entries []textbookEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, helper.NewError("parse textbook file", err)
	}

	chunks := make([]model.Chunk, 0, len(entries))
	for i, entry := range entries {
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("tb%d_node%d", textbookID, i)
		}
		chunks = append(chunks, model.Chunk{
			ID:            id,
			TextbookID:    textbookID,
			Chapter:       entry.Chapter,
			Section:       entry.Section,
			SequenceIndex: i,
			Content:       entry.Content,
			Topics:        entry.Topics,
			Metadata:      entry.Extra,
		})
	}

	return chunks, nil
}

// LoadDirectory reads all structured textbooks under root, laid out as
// textbook<N>/textbook<N>_structured.json for N starting at 1. Missing
// textbooks are silently skipped; unreadable or invalid files are logged
// and skipped. The returned chunks keep textbook reading order.
func LoadDirectory(root string, maxTextbooks int, logger *slog.Logger) ([]model.Chunk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTextbooks <= 0 {
		return nil, &model.ConfigurationError{Field: "max_textbooks", Reason: "must be positive"}
	}

	var chunks []model.Chunk
	loaded, failed := 0, 0

	for i := 1; i <= maxTextbooks; i++ {
		path := filepath.Join(root, fmt.Sprintf("textbook%d", i), fmt.Sprintf("textbook%d_structured.json", i))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		textbookChunks, err := LoadTextbook(path, i)
		if err != nil {
			failed++
			logger.Warn("Skipping textbook", slog.Int("textbook", i), slog.String("error", err.Error()))
			continue
		}

		chunks = append(chunks, textbookChunks...)
		loaded++
		logger.Info("Loaded textbook", slog.Int("textbook", i), slog.Int("chunks", len(textbookChunks)))
	}

	logger.Info("Loaded textbook directory",
		slog.String("root", root),
		slog.Int("textbooks", loaded),
		slog.Int("failed", failed),
		slog.Int("chunks", len(chunks)),
	)

	return chunks, nil
}
