package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout matches SQLite's datetime() output so retention queries can
// compare strings.
const timeLayout = "2006-01-02 15:04:05"

// GenerationRecord is one row of generation_log.
type GenerationRecord struct {
	ID          int64
	SessionID   string
	EntryID     string
	Provider    string
	Model       string
	RawPrompt   string
	FinalPrompt string
	Style       string
	SizeLabel   string
	Width       int
	Height      int
	Random      bool
	Outcome     string
	Error       string
	Duration    time.Duration
	CreatedAt   time.Time
}

// Repository reads and writes generation_log.
type Repository struct {
	db *Database
}

// NewRepository creates a Repository over database.
func NewRepository(database *Database) *Repository {
	return &Repository{db: database}
}

// InsertGeneration writes rec and returns its row ID.
func (r *Repository) InsertGeneration(ctx context.Context, rec GenerationRecord) (int64, error) {
	conn := r.db.DB()
	if conn == nil {
		return 0, errClosed
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := conn.ExecContext(ctx, `
		INSERT INTO generation_log (
			session_id, entry_id, provider, model, raw_prompt, final_prompt,
			style, size_label, width, height, random, outcome, error_message,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, nullString(rec.EntryID), rec.Provider, rec.Model,
		rec.RawPrompt, rec.FinalPrompt, rec.Style, rec.SizeLabel,
		rec.Width, rec.Height, rec.Random, rec.Outcome, nullString(rec.Error),
		rec.Duration.Milliseconds(), createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation record: %w", err)
	}
	return res.LastInsertId()
}

// RecentGenerations returns up to limit records, newest first.
func (r *Repository) RecentGenerations(ctx context.Context, limit int) ([]GenerationRecord, error) {
	return r.query(ctx, `
		SELECT `+selectColumns+` FROM generation_log
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// GenerationsBySession returns a session's records, newest first.
func (r *Repository) GenerationsBySession(ctx context.Context, sessionID string) ([]GenerationRecord, error) {
	return r.query(ctx, `
		SELECT `+selectColumns+` FROM generation_log
		WHERE session_id = ? ORDER BY created_at DESC, id DESC`, sessionID)
}

// CountGenerations returns the number of records.
func (r *Repository) CountGenerations(ctx context.Context) (int64, error) {
	conn := r.db.DB()
	if conn == nil {
		return 0, errClosed
	}
	var n int64
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM generation_log").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count generation records: %w", err)
	}
	return n, nil
}

// CountByOutcome returns record counts keyed by outcome.
func (r *Repository) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	conn := r.db.DB()
	if conn == nil {
		return nil, errClosed
	}
	rows, err := conn.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM generation_log GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

const selectColumns = `id, session_id, entry_id, provider, model, raw_prompt, final_prompt,
	style, size_label, width, height, random, outcome, error_message, duration_ms, created_at`

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]GenerationRecord, error) {
	conn := r.db.DB()
	if conn == nil {
		return nil, errClosed
	}
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation records: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var (
			rec        GenerationRecord
			entryID    sql.NullString
			errMsg     sql.NullString
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &entryID, &rec.Provider, &rec.Model,
			&rec.RawPrompt, &rec.FinalPrompt, &rec.Style, &rec.SizeLabel,
			&rec.Width, &rec.Height, &rec.Random, &rec.Outcome, &errMsg,
			&durationMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		rec.EntryID = entryID.String
		rec.Error = errMsg.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// parseTime accepts our own layout and the RFC3339 form the driver may
// return for DATETIME columns.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nullString converts empty strings to NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
