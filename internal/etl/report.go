package etl

import (
	"fmt"
	"strings"
	"time"
)

// LoadReport accumulates the per-row outcomes of one load run.
type LoadReport struct {
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time

	Read       int
	Inserted   int
	Updated    int
	Unchanged  int
	Skipped    int
	SkippedFK  int
	NulledFK   int
	Duplicates int
	Errors     int
	Batches    int

	// Name resolution, for sources carrying free-text municipalities.
	Resolved   int
	Unresolved int

	Details map[string]any
}

// NewLoadReport starts a report for source.
func NewLoadReport(source string) *LoadReport {
	return &LoadReport{
		Source:    source,
		StartedAt: time.Now().UTC(),
		Details:   make(map[string]any),
	}
}

// Record counts one row result.
func (r *LoadReport) Record(res Result) {
	switch res.Outcome {
	case Inserted:
		r.Inserted++
	case Updated:
		r.Updated++
	case Unchanged:
		r.Unchanged++
	case Failed:
		r.Errors++
	}
}

// Written is the number of rows the store accepted.
func (r *LoadReport) Written() int {
	return r.Inserted + r.Updated + r.Unchanged
}

// Merge adds the counters of other into r. Details are copied under other's
// source name.
func (r *LoadReport) Merge(other *LoadReport) {
	if other == nil {
		return
	}
	r.Read += other.Read
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.Skipped += other.Skipped
	r.SkippedFK += other.SkippedFK
	r.NulledFK += other.NulledFK
	r.Duplicates += other.Duplicates
	r.Errors += other.Errors
	r.Batches += other.Batches
	r.Resolved += other.Resolved
	r.Unresolved += other.Unresolved
	if len(other.Details) > 0 {
		r.Details[other.Source] = other.Details
	}
}

// Finish stamps the end time.
func (r *LoadReport) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration is the wall time of a finished run.
func (r *LoadReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary renders the one-line end-of-run summary.
func (r *LoadReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: read %d, inserted %d, updated %d, unchanged %d, skipped %d",
		r.Source, r.Read, r.Inserted, r.Updated, r.Unchanged, r.Skipped)
	if r.SkippedFK > 0 || r.NulledFK > 0 {
		fmt.Fprintf(&b, ", skipped_fk %d, nulled_fk %d", r.SkippedFK, r.NulledFK)
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, ", duplicates %d", r.Duplicates)
	}
	if r.Resolved > 0 || r.Unresolved > 0 {
		fmt.Fprintf(&b, ", resolved %d, unresolved %d", r.Resolved, r.Unresolved)
	}
	fmt.Fprintf(&b, ", errors %d", r.Errors)
	return b.String()
}
