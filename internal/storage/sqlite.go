// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"nutrifacil/internal/models"
)

const (
	memoryPath = ":memory:"
	// Fixed width so that created_at sorts chronologically as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// CallLog is the audit trail of outbound AI requests. It stores operation
// metadata only; prompts, replies and profile data never reach disk.
type CallLog struct {
	db *sql.DB
}

func NewCallLog(dbPath string) (*CallLog, error) {
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	callLog := &CallLog{db: db}
	if err := callLog.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return callLog, nil
}

func (l *CallLog) Close() error {
	return l.db.Close()
}

func (l *CallLog) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS ai_calls (
        id TEXT PRIMARY KEY,
        operation TEXT NOT NULL,
        model TEXT NOT NULL,
        status TEXT NOT NULL,
        error_kind TEXT NOT NULL DEFAULT '',
        duration_ms INTEGER NOT NULL,
        created_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_ai_calls_created_at ON ai_calls(created_at);
    CREATE INDEX IF NOT EXISTS idx_ai_calls_operation ON ai_calls(operation);
    `

	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (l *CallLog) SaveCall(ctx context.Context, record models.CallRecord) error {
	query := `
        INSERT INTO ai_calls (id, operation, model, status, error_kind, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := l.db.ExecContext(ctx, query,
		record.ID, record.Operation, record.Model, string(record.Status), record.ErrorKind,
		record.Duration.Milliseconds(), record.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert call: %w", err)
	}

	return nil
}

// RecordCall lets the log act as the gateway's recorder.
func (l *CallLog) RecordCall(ctx context.Context, record models.CallRecord) error {
	return l.SaveCall(ctx, record)
}

// RecentCalls returns up to limit records, newest first.
func (l *CallLog) RecentCalls(ctx context.Context, limit int) ([]models.CallRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, operation, model, status, error_kind, duration_ms, created_at
        FROM ai_calls
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	var records []models.CallRecord
	for rows.Next() {
		var (
			record       models.CallRecord
			status       string
			durationMs   int64
			createdAtStr string
		)

		err := rows.Scan(&record.ID, &record.Operation, &record.Model, &status,
			&record.ErrorKind, &durationMs, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}

		if record.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		record.Status = models.CallStatus(status)
		record.Duration = time.Duration(durationMs) * time.Millisecond

		records = append(records, record)
	}

	return records, rows.Err()
}

// Summary aggregates the log per operation, ordered by operation name.
func (l *CallLog) Summary(ctx context.Context) ([]models.CallSummary, error) {
	query := `
        SELECT operation,
               COUNT(*),
               SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
               AVG(duration_ms)
        FROM ai_calls
        GROUP BY operation
        ORDER BY operation
    `
	rows, err := l.db.QueryContext(ctx, query, string(models.CallFailed))
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.CallSummary
	for rows.Next() {
		var (
			summary   models.CallSummary
			averageMs float64
		)
		if err := rows.Scan(&summary.Operation, &summary.Calls, &summary.Failures, &averageMs); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summary.Average = time.Duration(averageMs * float64(time.Millisecond))
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}
