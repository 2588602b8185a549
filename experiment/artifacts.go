package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/model"
)

// RecordSink persists one evaluation record. The runner fans every record
// out to all configured sinks.
type RecordSink interface {
	SaveRecord(record *model.EvaluationRecord) error
}

// ArtifactWriter writes one JSON artifact per evaluation record into
// <dir>/generated_questions, named <topic>_<variant>.json.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates the artifact directory if needed
func NewArtifactWriter(outputDir string) (*ArtifactWriter, error) {
	dir := filepath.Join(outputDir, "generated_questions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, helper.NewError("create artifact directory", err)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// SaveRecord writes the record as an indented JSON file
func (w *ArtifactWriter) SaveRecord(record *model.EvaluationRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return helper.NewError("marshal record", err)
	}

	name := fmt.Sprintf("%s_%s.json", strings.ReplaceAll(record.Topic, " ", "_"), record.Variant)
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return helper.NewError("write artifact", err)
	}

	return nil
}
