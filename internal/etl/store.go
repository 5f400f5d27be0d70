package etl

import (
	"context"

	"github.com/hjs-etl/internal/geo"
)

// Store is the warehouse as seen by the pipeline: reference snapshots taken
// once per run, and one batch writer per target table.
type Store interface {
	CompanyIDs(ctx context.Context) (KeySet, error)
	ContactDocuments(ctx context.Context) (KeySet, error)
	GroupIDs(ctx context.Context) (map[string]int64, error)
	Municipalities(ctx context.Context) ([]geo.Municipality, error)

	Places() Writer[geo.Place]
	Companies() Writer[Company]
	Employees() Writer[Employee]
	LegalReps() Writer[LegalRep]
	Contacts() Writer[Contact]
	Relations() Writer[GroupRelation]

	// InsertGroups adds the names not yet present and returns how many were new.
	InsertGroups(ctx context.Context, names []string) (int, error)
	// BeginCensus prepares a fresh staging area for the census bulk load.
	BeginCensus(ctx context.Context) (CensusStage, error)
	// ReplaceTracking swaps the campaign tracking tables in one transaction.
	ReplaceTracking(ctx context.Context, candidates []Candidate, leaders []Leader) error
}

// CensusStage is an open census bulk load.
type CensusStage interface {
	// Copy stages one chunk. A failing chunk is rolled back alone.
	Copy(ctx context.Context, rows []CensusRecord) error
	// Checkpoint commits the chunks staged so far.
	Checkpoint(ctx context.Context) error
	// Publish moves distinct staged rows into person_census, keeping existing
	// documents, and returns how many rows were inserted.
	Publish(ctx context.Context) (int64, error)
	Close() error
}

// RunRecorder persists finished load reports.
type RunRecorder interface {
	RecordRun(ctx context.Context, report *LoadReport) error
}
