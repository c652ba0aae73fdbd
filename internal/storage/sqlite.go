package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		documents INTEGER NOT NULL DEFAULT 0,
		chunks INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON ingest_runs(started_at);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		title TEXT,
		path TEXT,
		chunks INTEGER NOT NULL,
		ingested_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, id),
		FOREIGN KEY (run_id) REFERENCES ingest_runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		answer_chars INTEGER NOT NULL,
		error_tag TEXT,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// StartRun inserts a run in the running state.
func (s *SQLiteJournal) StartRun(ctx context.Context) (*models.IngestRun, error) {
	run := &models.IngestRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    models.RunStatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at, status) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordDocument inserts one ingested document under its run.
func (s *SQLiteJournal) RecordDocument(ctx context.Context, rec *models.DocumentRecord) error {
	if rec.IngestedAt.IsZero() {
		rec.IngestedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, run_id, title, path, chunks, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Title, rec.Path, rec.Chunks, rec.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", rec.ID, err)
	}
	return nil
}

// FinishRun stores the final counters and marks the run completed, or failed
// when runErr is non-nil.
func (s *SQLiteJournal) FinishRun(ctx context.Context, run *models.IngestRun, runErr error) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.Error = ""
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET finished_at = ?, documents = ?, chunks = ?, status = ?, error = ?
		 WHERE id = ?`,
		run.FinishedAt, run.Documents, run.Chunks, run.Status, nullString(run.Error), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

// LastRun returns the most recently started run, or nil if there is none.
func (s *SQLiteJournal) LastRun(ctx context.Context) (*models.IngestRun, error) {
	var run models.IngestRun
	var finished sql.NullTime
	var errText sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, documents, chunks, status, error
		 FROM ingest_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.StartedAt, &finished, &run.Documents, &run.Chunks, &run.Status, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	run.Error = errText.String
	return &run, nil
}

// ListDocuments returns the documents recorded for a run in ingestion order.
func (s *SQLiteJournal) ListDocuments(ctx context.Context, runID string) ([]*models.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, title, path, chunks, ingested_at
		 FROM documents WHERE run_id = ? ORDER BY ingested_at, rowid`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.DocumentRecord
	for rows.Next() {
		var rec models.DocumentRecord
		var title, path sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &title, &path, &rec.Chunks, &rec.IngestedAt); err != nil {
			return nil, err
		}
		rec.Title = title.String
		rec.Path = path.String
		docs = append(docs, &rec)
	}
	return docs, rows.Err()
}

// RecordQuestion inserts a question record, assigning an id when empty.
func (s *SQLiteJournal) RecordQuestion(ctx context.Context, rec *models.QuestionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, query, answer_chars, error_tag, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.AnswerChars, nullString(rec.ErrorTag), rec.DurationMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// RecentQuestions returns up to limit questions, newest first.
func (s *SQLiteJournal) RecentQuestions(ctx context.Context, limit int) ([]*models.QuestionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, answer_chars, error_tag, duration_ms, created_at
		 FROM questions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.QuestionRecord
	for rows.Next() {
		var rec models.QuestionRecord
		var tag sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.AnswerChars, &tag, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ErrorTag = tag.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Stats returns row counts across the journal.
func (s *SQLiteJournal) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM ingest_runs),
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM questions WHERE error_tag IS NOT NULL)`,
	).Scan(&st.Runs, &st.Documents, &st.Questions, &st.Failures)
	return st, err
}

// Close closes the database.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
