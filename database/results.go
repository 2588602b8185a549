package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// ResultsDBHandlerFunctions defines the interface for evaluation-record
// database operations.
type ResultsDBHandlerFunctions interface {
	InsertEvaluationRecord(record *model.EvaluationRecord) error
	SelectEvaluationRecord(rid uuid.UUID) (*model.EvaluationRecord, error)
	SelectEvaluationRecordsByRun(runID uuid.UUID) ([]*model.EvaluationRecord, error)
	SelectRunSummary(runID uuid.UUID) (*model.RunSummary, error)
}

// ResultsDBHandler persists evaluation records and aggregates run
// summaries in SQL.
type ResultsDBHandler struct {
	db *helper.Database
}

// NewResultsDBHandler creates a new results database handler and ensures
// the evaluation_records table exists.
func NewResultsDBHandler(db *helper.Database) (*ResultsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	handler := &ResultsDBHandler{db: db}

	if err := handler.CreateTable(); err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ResultsDBHandler")

	return handler, nil
}

// CreateTable creates the 'evaluation_records' table if it does not exist
func (h *ResultsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.db.Instance.ExecContext(ctx, schemaSQL); err != nil {
		return helper.NewError("exec schema", err)
	}

	h.db.Logger.Info("Checked/created table evaluation_records")

	return nil
}

// InsertEvaluationRecord inserts a new evaluation record. Records are the
// experiment's atomic result unit and are never updated afterwards.
func (h *ResultsDBHandler) InsertEvaluationRecord(record *model.EvaluationRecord) error {
	if record == nil {
		return helper.NewError("record validation", fmt.Errorf("record is nil"))
	}
	if record.RID == uuid.Nil {
		record.RID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	questionJSON, err := json.Marshal(record.Question)
	if err != nil {
		return helper.NewError("marshal question", err)
	}

	row := h.db.Instance.QueryRow(
		`INSERT INTO evaluation_records
			(rid, run_id, topic, variant, question, context_ids,
			 relevance, faithfulness, integration, complexity, composite,
			 flags, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		record.RID,
		record.RunID,
		record.Topic,
		string(record.Variant),
		questionJSON,
		pq.Array(record.ContextIDs),
		record.Scores.Relevance,
		record.Scores.Faithfulness,
		record.Scores.Integration,
		record.Scores.Complexity,
		record.Composite,
		pq.Array(record.Flags),
		record.Metadata,
		record.CreatedAt,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEvaluationRecord retrieves an evaluation record by its RID
func (h *ResultsDBHandler) SelectEvaluationRecord(rid uuid.UUID) (*model.EvaluationRecord, error) {
	row := h.db.Instance.QueryRow(
		`SELECT rid, run_id, topic, variant, question, context_ids,
			relevance, faithfulness, integration, complexity, composite,
			flags, metadata, created_at
		 FROM evaluation_records WHERE rid = $1`,
		rid,
	)

	record, err := scanRecord(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return record, nil
}

// SelectEvaluationRecordsByRun retrieves all records of a run, ordered by
// creation time.
func (h *ResultsDBHandler) SelectEvaluationRecordsByRun(runID uuid.UUID) ([]*model.EvaluationRecord, error) {
	rows, err := h.db.Instance.Query(
		`SELECT rid, run_id, topic, variant, question, context_ids,
			relevance, faithfulness, integration, complexity, composite,
			flags, metadata, created_at
		 FROM evaluation_records WHERE run_id = $1 ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.EvaluationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return records, nil
}

// SelectRunSummary aggregates the per-variant mean composite and
// per-criterion means of a run in SQL.
func (h *ResultsDBHandler) SelectRunSummary(runID uuid.UUID) (*model.RunSummary, error) {
	rows, err := h.db.Instance.Query(
		`SELECT variant, COUNT(*),
			AVG(composite), AVG(relevance), AVG(faithfulness), AVG(integration), AVG(complexity)
		 FROM evaluation_records WHERE run_id = $1
		 GROUP BY variant ORDER BY variant`,
		runID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	summary := &model.RunSummary{
		RunID:    runID,
		Variants: make(map[model.Variant]*model.VariantSummary),
	}

	for rows.Next() {
		var variant string
		variantSummary := &model.VariantSummary{}
		err := rows.Scan(
			&variant,
			&variantSummary.Runs,
			&variantSummary.MeanComposite,
			&variantSummary.MeanScores.Relevance,
			&variantSummary.MeanScores.Faithfulness,
			&variantSummary.MeanScores.Integration,
			&variantSummary.MeanScores.Complexity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		variantSummary.Variant = model.Variant(variant)
		summary.Variants[variantSummary.Variant] = variantSummary
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return summary, nil
}

// SaveRecord implements the experiment record sink
func (h *ResultsDBHandler) SaveRecord(record *model.EvaluationRecord) error {
	return h.InsertEvaluationRecord(record)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*model.EvaluationRecord, error) {
	record := &model.EvaluationRecord{}
	var variant string
	var questionJSON []byte
	var contextIDs, flags pq.StringArray

	err := row.Scan(
		&record.RID,
		&record.RunID,
		&record.Topic,
		&variant,
		&questionJSON,
		&contextIDs,
		&record.Scores.Relevance,
		&record.Scores.Faithfulness,
		&record.Scores.Integration,
		&record.Scores.Complexity,
		&record.Composite,
		&flags,
		&record.Metadata,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Variant = model.Variant(variant)
	record.ContextIDs = contextIDs
	record.Flags = flags

	if len(questionJSON) > 0 {
		question := &model.Question{}
		if err := json.Unmarshal(questionJSON, question); err != nil {
			return nil, err
		}
		record.Question = question
	}

	return record, nil
}
