package etl

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/hjs-etl/internal/geo"
)

// fakeWriter records every batch and reports each row as inserted, or as
// failed when its key is listed in fail.
type fakeWriter[T any] struct {
	key     func(T) string
	batches [][]T
	fail    map[string]bool
	err     error
	errAt   int
}

func (w *fakeWriter[T]) Write(ctx context.Context, rows []T) ([]Result, error) {
	if w.err != nil && len(w.batches) == w.errAt {
		return nil, w.err
	}
	w.batches = append(w.batches, append([]T(nil), rows...))
	results := make([]Result, len(rows))
	for i, r := range rows {
		k := w.key(r)
		if w.fail[k] {
			results[i] = Result{Key: k, Outcome: Failed, Err: errors.New("constraint violation")}
			continue
		}
		results[i] = Result{Key: k, Outcome: Inserted}
	}
	return results, nil
}

func (w *fakeWriter[T]) rows() []T {
	var out []T
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

type fakeStage struct {
	copied      []CensusRecord
	checkpoints int
	failChunk   int
	chunks      int
	closed      bool
}

func (s *fakeStage) Copy(ctx context.Context, rows []CensusRecord) error {
	s.chunks++
	if s.chunks == s.failChunk {
		return errors.New("invalid input syntax")
	}
	s.copied = append(s.copied, rows...)
	return nil
}

func (s *fakeStage) Checkpoint(ctx context.Context) error {
	s.checkpoints++
	return nil
}

// Publish inserts distinct documents.
func (s *fakeStage) Publish(ctx context.Context) (int64, error) {
	seen := make(map[string]bool)
	for _, r := range s.copied {
		seen[r.Document] = true
	}
	return int64(len(seen)), nil
}

func (s *fakeStage) Close() error {
	s.closed = true
	return nil
}

type fakeStore struct {
	companies      KeySet
	documents      KeySet
	groupIDs       map[string]int64
	municipalities []geo.Municipality

	places    *fakeWriter[geo.Place]
	companyW  *fakeWriter[Company]
	employees *fakeWriter[Employee]
	legalReps *fakeWriter[LegalRep]
	contacts  *fakeWriter[Contact]
	relations *fakeWriter[GroupRelation]

	insertedGroups []string
	snapshotErr    error
	stage          *fakeStage
	candidates     []Candidate
	leaders        []Leader
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: NewKeySet(),
		documents: NewKeySet(),
		groupIDs:  map[string]int64{},
		places:    &fakeWriter[geo.Place]{key: geo.Place.Key},
		companyW:  &fakeWriter[Company]{key: func(c Company) string { return c.ID }},
		employees: &fakeWriter[Employee]{key: func(e Employee) string { return e.ID }},
		legalReps: &fakeWriter[LegalRep]{key: func(l LegalRep) string { return l.ContactID }},
		contacts:  &fakeWriter[Contact]{key: func(c Contact) string { return c.Document }},
		relations: &fakeWriter[GroupRelation]{key: func(r GroupRelation) string { return r.Document + "|" + r.Group }},
		stage:     &fakeStage{},
	}
}

func (s *fakeStore) CompanyIDs(ctx context.Context) (KeySet, error) { return s.companies, nil }
func (s *fakeStore) ContactDocuments(ctx context.Context) (KeySet, error) {
	return s.documents, s.snapshotErr
}
func (s *fakeStore) GroupIDs(ctx context.Context) (map[string]int64, error) {
	return s.groupIDs, s.snapshotErr
}
func (s *fakeStore) Municipalities(ctx context.Context) ([]geo.Municipality, error) {
	return s.municipalities, nil
}

func (s *fakeStore) Places() Writer[geo.Place] { return s.places }
func (s *fakeStore) Companies() Writer[Company] { return s.companyW }
func (s *fakeStore) Employees() Writer[Employee] { return s.employees }
func (s *fakeStore) LegalReps() Writer[LegalRep] { return s.legalReps }
func (s *fakeStore) Contacts() Writer[Contact] { return s.contacts }
func (s *fakeStore) Relations() Writer[GroupRelation] { return s.relations }

func (s *fakeStore) InsertGroups(ctx context.Context, names []string) (int, error) {
	n := 0
	for _, name := range names {
		if _, ok := s.groupIDs[name]; ok {
			continue
		}
		s.groupIDs[name] = int64(len(s.groupIDs) + 1)
		s.insertedGroups = append(s.insertedGroups, name)
		n++
	}
	return n, nil
}

func (s *fakeStore) BeginCensus(ctx context.Context) (CensusStage, error) { return s.stage, nil }

func (s *fakeStore) ReplaceTracking(ctx context.Context, candidates []Candidate, leaders []Leader) error {
	s.candidates, s.leaders = candidates, leaders
	return nil
}

type fakeRuns struct {
	reports []*LoadReport
}

func (r *fakeRuns) RecordRun(ctx context.Context, report *LoadReport) error {
	r.reports = append(r.reports, report)
	return nil
}

func newTestPipeline(t *testing.T, store *fakeStore, runs *fakeRuns, dataDir string) *Pipeline {
	t.Helper()
	p, err := NewPipeline(store, Options{Runs: runs, Out: io.Discard, DataDir: dataDir})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}
