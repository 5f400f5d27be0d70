package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hjs-etl/internal/etl"
	"github.com/hjs-etl/internal/logger"
)

// upsertWriter writes one batch per transaction. When the multi-row
// statement fails the batch is replayed row by row, each row under its own
// savepoint, so one bad row only fails itself.
type upsertWriter[T any] struct {
	db     *sql.DB
	log    *logger.Logger
	table  table
	key    func(T) string
	values func(T) []any
}

func newWriter[T any](db *sql.DB, log *logger.Logger, t table, key func(T) string, values func(T) []any) *upsertWriter[T] {
	return &upsertWriter[T]{db: db, log: log, table: t, key: key, values: values}
}

// Write implements etl.Writer.
func (w *upsertWriter[T]) Write(ctx context.Context, rows []T) ([]etl.Result, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SAVEPOINT batch"); err != nil {
		return nil, err
	}

	results, err := w.writeBulk(ctx, tx, rows)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		w.log.Warn("batch rejected, retrying row by row", "table", w.table.name, "rows", len(rows), "error", err)
		if _, rerr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT batch"); rerr != nil {
			return nil, fmt.Errorf("failed to roll back batch: %w", rerr)
		}
		results, err = w.writeRows(ctx, tx, rows)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s batch: %w", w.table.name, err)
	}
	return results, nil
}

func (w *upsertWriter[T]) writeBulk(ctx context.Context, tx *sql.Tx, rows []T) ([]etl.Result, error) {
	touched := make(map[string]etl.Outcome, len(rows))
	step := w.table.rowsPerStatement()

	for start := 0; start < len(rows); start += step {
		chunk := rows[start:min(start+step, len(rows))]
		args := make([]any, 0, len(chunk)*len(w.table.columns))
		for _, r := range chunk {
			args = append(args, w.values(r)...)
		}
		if err := w.exec(ctx, tx, len(chunk), args, touched); err != nil {
			return nil, err
		}
	}

	results := make([]etl.Result, len(rows))
	for i, r := range rows {
		k := w.key(r)
		outcome, ok := touched[k]
		if !ok {
			outcome = etl.Unchanged
		}
		results[i] = etl.Result{Key: k, Outcome: outcome}
	}
	return results, nil
}

func (w *upsertWriter[T]) writeRows(ctx context.Context, tx *sql.Tx, rows []T) ([]etl.Result, error) {
	results := make([]etl.Result, len(rows))
	for i, r := range rows {
		k := w.key(r)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT row"); err != nil {
			return nil, err
		}

		touched := make(map[string]etl.Outcome, 1)
		if err := w.exec(ctx, tx, 1, w.values(r), touched); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, rerr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT row"); rerr != nil {
				return nil, fmt.Errorf("failed to roll back row %s: %w", k, rerr)
			}
			results[i] = etl.Result{Key: k, Outcome: etl.Failed, Err: err}
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT row"); err != nil {
			return nil, err
		}

		outcome, ok := touched[k]
		if !ok {
			outcome = etl.Unchanged
		}
		results[i] = etl.Result{Key: k, Outcome: outcome}
	}
	return results, nil
}

// exec runs one upsert statement and records the returned keys.
func (w *upsertWriter[T]) exec(ctx context.Context, tx *sql.Tx, n int, args []any, touched map[string]etl.Outcome) error {
	rows, err := tx.QueryContext(ctx, w.table.upsertSQL(n), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	keys := make([]string, len(w.table.keys))
	dest := make([]any, 0, len(keys)+1)
	for i := range keys {
		dest = append(dest, &keys[i])
	}
	var inserted bool
	dest = append(dest, &inserted)

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		outcome := etl.Updated
		if inserted {
			outcome = etl.Inserted
		}
		touched[strings.Join(keys, "|")] = outcome
	}
	return rows.Err()
}
