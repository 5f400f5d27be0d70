package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hjs-etl/internal/etl"
	"github.com/hjs-etl/internal/logger"
)

const stagingTable = "staging_census_import"

var censusColumns = []string{
	"document", "document_type", "dept_code", "muni_code", "zone_code", "place_code", "registered_on",
}

// censusStage bulk loads census chunks into an unlogged staging table and
// publishes them with one insert-if-absent.
type censusStage struct {
	db  *sql.DB
	log *logger.Logger
	tx  *sql.Tx
}

// BeginCensus recreates the staging table and opens its first transaction.
func (s *Store) BeginCensus(ctx context.Context) (etl.CensusStage, error) {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+stagingTable); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE UNLOGGED TABLE `+stagingTable+` (
			document       VARCHAR(20),
			document_type  VARCHAR(10),
			dept_code      VARCHAR(5),
			muni_code      VARCHAR(5),
			zone_code      VARCHAR(5),
			place_code     VARCHAR(20),
			registered_on  DATE
		)`); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", stagingTable, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &censusStage{db: s.db, log: s.log, tx: tx}, nil
}

// Copy stages rows with COPY under a savepoint; a failing chunk is rolled
// back without losing earlier chunks.
func (c *censusStage) Copy(ctx context.Context, rows []etl.CensusRecord) error {
	if c.tx == nil {
		return fmt.Errorf("census stage is closed")
	}
	if _, err := c.tx.ExecContext(ctx, "SAVEPOINT census_chunk"); err != nil {
		return err
	}

	if err := c.copyRows(ctx, rows); err != nil {
		if _, rerr := c.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT census_chunk"); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}

	_, err := c.tx.ExecContext(ctx, "RELEASE SAVEPOINT census_chunk")
	return err
}

func (c *censusStage) copyRows(ctx context.Context, rows []etl.CensusRecord) error {
	stmt, err := c.tx.PrepareContext(ctx, pq.CopyIn(stagingTable, censusColumns...))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Document, r.DocumentType, r.DeptCode, r.MuniCode, r.ZoneCode, r.PlaceCode, r.RegisteredOn,
		); err != nil {
			return err
		}
	}
	// flush buffered rows
	_, err = stmt.ExecContext(ctx)
	return err
}

// Checkpoint commits the staged chunks and starts a new transaction.
func (c *censusStage) Checkpoint(ctx context.Context) error {
	if c.tx == nil {
		return fmt.Errorf("census stage is closed")
	}
	if err := c.tx.Commit(); err != nil {
		c.tx = nil
		return fmt.Errorf("failed to commit census chunks: %w", err)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.tx = nil
		return err
	}
	c.tx = tx
	return nil
}

// Publish moves one row per document into person_census. Documents already
// present are left untouched.
func (c *censusStage) Publish(ctx context.Context) (int64, error) {
	if c.tx == nil {
		return 0, fmt.Errorf("census stage is closed")
	}
	res, err := c.tx.ExecContext(ctx, `
		INSERT INTO person_census (
			document, document_type, dept_code, muni_code, zone_code, place_code, registered_on
		)
		SELECT DISTINCT ON (document)
			document, document_type, dept_code, muni_code, zone_code, place_code, registered_on
		FROM `+stagingTable+`
		ORDER BY document
		ON CONFLICT (document) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := c.tx.Commit(); err != nil {
		c.tx = nil
		return 0, fmt.Errorf("failed to commit census publish: %w", err)
	}
	c.tx = nil
	return inserted, nil
}

// Close rolls back anything uncommitted and drops the staging table.
func (c *censusStage) Close() error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	if _, err := c.db.Exec("DROP TABLE IF EXISTS " + stagingTable); err != nil {
		c.log.Warn("failed to drop census staging table", "error", err)
		return err
	}
	return nil
}
