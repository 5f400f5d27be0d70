package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hjs-etl/internal/debug"
	import_pkg "github.com/hjs-etl/internal/import"
	"github.com/hjs-etl/internal/logger"
)

// Policy decides what happens to a row whose foreign key is not in the
// reference snapshot.
type Policy int

const (
	// NullOnInvalid clears the reference and keeps the row.
	NullOnInvalid Policy = iota
	// DropOnInvalid discards the row. An empty reference is invalid too.
	DropOnInvalid
)

func (p Policy) String() string {
	switch p {
	case NullOnInvalid:
		return "null-on-invalid"
	case DropOnInvalid:
		return "drop-on-invalid"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// KeySet is a read-only snapshot of the keys present in a reference table.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Len() int {
	return len(s)
}

// ForeignKey declares one reference of T checked before a row is written.
type ForeignKey[T any] struct {
	Name   string
	Valid  KeySet
	Get    func(T) string
	Clear  func(*T)
	Policy Policy
}

// Outcome of writing one row.
type Outcome int

const (
	Inserted Outcome = iota
	Updated
	// Unchanged rows hit an existing key and left it as it was.
	Unchanged
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the outcome of one row, independent of the transaction it ran in.
type Result struct {
	Key     string
	Outcome Outcome
	Err     error
}

// Writer persists one batch in one transaction and reports every row. A
// returned error means the batch was not committed and the load must stop.
type Writer[T any] interface {
	Write(ctx context.Context, rows []T) ([]Result, error)
}

// Source yields rows until io.EOF. import_pkg.ErrSkipRow and *import_pkg.RowError
// are per-row conditions; any other error ends the load.
type Source[T any] interface {
	Next() (T, error)
}

// Spec describes how one source is loaded.
type Spec[T any] struct {
	Name        string
	Key         func(T) string
	ForeignKeys []ForeignKey[T]
	// BatchSize rows trigger a flush; zero means only explicit Flush calls do.
	BatchSize int
	// KeepFirst keeps the first of several rows with the same key in a batch
	// (insert-if-absent targets); otherwise the last one wins.
	KeepFirst bool
}

// LoaderOptions configures progress output.
type LoaderOptions struct {
	Out   io.Writer
	Log   *logger.Logger
	Debug bool
}

// Loader validates, deduplicates and batches rows of one source.
type Loader[T any] struct {
	spec   Spec[T]
	writer Writer[T]
	opts   LoaderOptions
	report *LoadReport

	batch []T
	index map[string]int
}

// NewLoader creates a loader for spec writing through w.
func NewLoader[T any](spec Spec[T], w Writer[T], opts LoaderOptions) *Loader[T] {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	opts.Log = opts.Log.With("source", spec.Name)
	return &Loader[T]{
		spec:   spec,
		writer: w,
		opts:   opts,
		report: NewLoadReport(spec.Name),
		index:  make(map[string]int),
	}
}

// Report returns the running report.
func (l *Loader[T]) Report() *LoadReport {
	return l.report
}

// Skip counts a row that carried no record.
func (l *Loader[T]) Skip() {
	l.report.Read++
	l.report.Skipped++
}

// Fail counts a row that could not be mapped.
func (l *Loader[T]) Fail(err error) {
	l.report.Read++
	l.report.Errors++
	l.opts.Log.Warn("row rejected", "error", err)
}

// Add validates row and queues it, flushing when the batch is full.
func (l *Loader[T]) Add(ctx context.Context, row T) error {
	l.report.Read++

	nulled := false
	for _, fk := range l.spec.ForeignKeys {
		ref := fk.Get(row)
		if ref != "" && fk.Valid.Has(ref) {
			continue
		}
		switch fk.Policy {
		case DropOnInvalid:
			l.report.SkippedFK++
			debug.DebugOutput(l.opts.Debug, "%s: dropping row %q, %s %q not found", l.spec.Name, l.spec.Key(row), fk.Name, ref)
			return nil
		case NullOnInvalid:
			if ref != "" {
				fk.Clear(&row)
				nulled = true
			}
		}
	}
	if nulled {
		l.report.NulledFK++
	}

	key := l.spec.Key(row)
	if key == "" {
		l.report.Skipped++
		return nil
	}
	if i, dup := l.index[key]; dup {
		l.report.Duplicates++
		if !l.spec.KeepFirst {
			l.batch[i] = row
		}
		return nil
	}
	l.index[key] = len(l.batch)
	l.batch = append(l.batch, row)

	if l.spec.BatchSize > 0 && len(l.batch) >= l.spec.BatchSize {
		return l.Flush(ctx)
	}
	return nil
}

// Flush writes the queued rows as one batch.
func (l *Loader[T]) Flush(ctx context.Context) error {
	if len(l.batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := debug.DebugTiming(l.opts.Debug, fmt.Sprintf("%s batch %d (%d rows)", l.spec.Name, l.report.Batches+1, len(l.batch)))
	results, err := l.writer.Write(ctx, l.batch)
	done()
	if err != nil {
		return fmt.Errorf("%s: batch %d failed: %w", l.spec.Name, l.report.Batches+1, err)
	}
	if len(results) != len(l.batch) {
		return fmt.Errorf("%s: writer returned %d results for %d rows", l.spec.Name, len(results), len(l.batch))
	}

	for _, r := range results {
		l.report.Record(r)
		if r.Outcome == Failed {
			l.opts.Log.Warn("row failed", "key", r.Key, "error", r.Err)
		}
	}
	l.report.Batches++

	l.batch = l.batch[:0]
	clear(l.index)

	fmt.Fprintf(l.opts.Out, "   Saved %d %s rows (batch %d)...\n", l.report.Written(), l.spec.Name, l.report.Batches)
	return nil
}

// Run drains src through the loader. Batches committed before an error stay
// committed; rerunning the load is idempotent.
func (l *Loader[T]) Run(ctx context.Context, src Source[T]) (*LoadReport, error) {
	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, import_pkg.ErrSkipRow) {
			l.Skip()
			continue
		}
		var rowErr *import_pkg.RowError
		if errors.As(err, &rowErr) {
			l.Fail(rowErr)
			continue
		}
		if err != nil {
			return l.report, fmt.Errorf("%s: read: %w", l.spec.Name, err)
		}
		if err := l.Add(ctx, row); err != nil {
			return l.report, err
		}
	}
	if err := l.Flush(ctx); err != nil {
		return l.report, err
	}
	return l.report, nil
}
