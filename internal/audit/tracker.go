package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hjs-etl/internal/debug"
	"github.com/hjs-etl/internal/etl"
)

// Tracker keeps the ledger of load runs in etl_load_run.
type Tracker struct {
	db         *sql.DB
	localDebug bool
}

// NewTracker creates a new audit tracker
func NewTracker(db *sql.DB, localDebug bool) *Tracker {
	return &Tracker{db: db, localDebug: localDebug}
}

var _ etl.RunRecorder = (*Tracker)(nil)

// RecordRun stores one finished load report under a fresh run id.
func (t *Tracker) RecordRun(ctx context.Context, report *etl.LoadReport) error {
	debug.DebugHeader(t.localDebug)
	defer debug.DebugFooter(t.localDebug)

	details, err := detailsJSON(report.Details)
	if err != nil {
		return err
	}

	// jsonb takes text parameters; []byte would be sent as bytea
	var detailsArg any
	if details != nil {
		detailsArg = string(details)
	}

	runID := uuid.New()
	debug.DebugOutput(t.localDebug, "Recording run %s for %s", runID, report.Source)

	_, err = t.db.ExecContext(ctx, `
		INSERT INTO etl_load_run (
			run_id, source, started_at, finished_at, rows_read, inserted, updated,
			unchanged, skipped, skipped_fk, nulled_fk, duplicates, errors,
			resolved, unresolved, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, runID, report.Source, report.StartedAt, finishedAt(report), report.Read, report.Inserted, report.Updated,
		report.Unchanged, report.Skipped, report.SkippedFK, report.NulledFK, report.Duplicates, report.Errors,
		report.Resolved, report.Unresolved, detailsArg)
	if err != nil {
		return fmt.Errorf("failed to insert load run: %w", err)
	}
	return nil
}

// detailsJSON renders the free-form details, nil when there are none.
func detailsJSON(details map[string]any) ([]byte, error) {
	if len(details) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run details: %w", err)
	}
	return b, nil
}

func finishedAt(report *etl.LoadReport) time.Time {
	if report.FinishedAt.IsZero() {
		return time.Now().UTC()
	}
	return report.FinishedAt
}

// RunEntry is one row of the load-run ledger.
type RunEntry struct {
	RunID      string          `json:"run_id"`
	Source     string          `json:"source"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Read       int             `json:"read"`
	Inserted   int             `json:"inserted"`
	Updated    int             `json:"updated"`
	Unchanged  int             `json:"unchanged"`
	Skipped    int             `json:"skipped"`
	SkippedFK  int             `json:"skipped_fk"`
	NulledFK   int             `json:"nulled_fk"`
	Errors     int             `json:"errors"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Duration is the wall time of the run.
func (e RunEntry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// RecentRuns returns the latest runs, newest first, optionally for one source.
func (t *Tracker) RecentRuns(ctx context.Context, source string, limit int) ([]RunEntry, error) {
	debug.DebugHeader(t.localDebug)
	defer debug.DebugFooter(t.localDebug)

	rows, err := t.db.QueryContext(ctx, `
		SELECT run_id, source, started_at, finished_at, rows_read, inserted, updated,
			unchanged, skipped, skipped_fk, nulled_fk, errors, details
		FROM etl_load_run
		WHERE $1 = '' OR source = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var details sql.NullString
		if err := rows.Scan(&e.RunID, &e.Source, &e.StartedAt, &e.FinishedAt, &e.Read, &e.Inserted, &e.Updated,
			&e.Unchanged, &e.Skipped, &e.SkippedFK, &e.NulledFK, &e.Errors, &details); err != nil {
			return nil, fmt.Errorf("failed to scan load run: %w", err)
		}
		if details.Valid {
			e.Details = json.RawMessage(details.String)
		}
		entries = append(entries, e)
	}

	debug.DebugOutput(t.localDebug, "Found %d load runs", len(entries))
	return entries, rows.Err()
}
