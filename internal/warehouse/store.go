// Package warehouse is the Postgres side of the ETL: reference snapshots,
// batch upsert writers and the census bulk path.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hjs-etl/internal/etl"
	"github.com/hjs-etl/internal/geo"
	"github.com/hjs-etl/internal/logger"
)

// groupDescription marks groups created from the contact workbooks.
const groupDescription = "Carga masiva"

// Store implements etl.Store on a Postgres warehouse.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// NewStore creates a new warehouse store
func NewStore(db *sql.DB, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{db: db, log: log}
}

var _ etl.Store = (*Store)(nil)

// CompanyIDs snapshots core_company keys.
func (s *Store) CompanyIDs(ctx context.Context) (etl.KeySet, error) {
	return s.fetchKeys(ctx, "SELECT company_id FROM core_company")
}

// ContactDocuments snapshots person_contact keys.
func (s *Store) ContactDocuments(ctx context.Context) (etl.KeySet, error) {
	return s.fetchKeys(ctx, "SELECT document FROM person_contact")
}

func (s *Store) fetchKeys(ctx context.Context, query string) (etl.KeySet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := etl.NewKeySet()
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys.Add(k)
	}
	return keys, rows.Err()
}

// GroupIDs maps every group name to its id.
func (s *Store) GroupIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, group_id FROM "group"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// Municipalities returns the distinct municipalities of the geographic
// dimension in a stable order.
func (s *Store) Municipalities(ctx context.Context) ([]geo.Municipality, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT dept_code, muni_code, muni_name
		FROM dim_geo_place
		WHERE muni_name IS NOT NULL
		ORDER BY dept_code, muni_code, muni_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []geo.Municipality
	for rows.Next() {
		var m geo.Municipality
		if err := rows.Scan(&m.DeptCode, &m.MuniCode, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Places() etl.Writer[geo.Place] {
	return newWriter(s.db, s.log, placeTable, geo.Place.Key, placeValues)
}

func (s *Store) Companies() etl.Writer[etl.Company] {
	return newWriter(s.db, s.log, companyTable, func(c etl.Company) string { return c.ID }, companyValues)
}

func (s *Store) Employees() etl.Writer[etl.Employee] {
	return newWriter(s.db, s.log, employeeTable, func(e etl.Employee) string { return e.ID }, employeeValues)
}

func (s *Store) LegalReps() etl.Writer[etl.LegalRep] {
	return newWriter(s.db, s.log, legalRepTable, func(l etl.LegalRep) string { return l.ContactID }, legalRepValues)
}

func (s *Store) Contacts() etl.Writer[etl.Contact] {
	return newWriter(s.db, s.log, contactTable, func(c etl.Contact) string { return c.Document }, contactValues)
}

func (s *Store) Relations() etl.Writer[etl.GroupRelation] {
	return newWriter(s.db, s.log, relationTable, relationKey, relationValues)
}

// InsertGroups inserts the names that are not present yet.
func (s *Store) InsertGroups(ctx context.Context, names []string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO "group" (name, description)
		SELECT DISTINCT unnest($1::text[]), $2
		ON CONFLICT (name) DO NOTHING`,
		pq.Array(names), groupDescription)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ReplaceTracking truncates and reloads the campaign tracking tables.
func (s *Store) ReplaceTracking(ctx context.Context, candidates []etl.Candidate, leaders []etl.Leader) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE campaign_candidate, campaign_leader RESTART IDENTITY"); err != nil {
		return err
	}

	candStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_candidate (
			name, party, votes, shared_ads, resumes, verified,
			ladies_free, bingo_tickets, banners, meeting
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return err
	}
	defer candStmt.Close()

	for _, c := range candidates {
		if _, err := candStmt.ExecContext(ctx,
			c.Name, c.Party, c.Votes, c.SharedAds, c.Resumes, c.Verified,
			c.LadiesFree, c.BingoTickets, c.Banners, c.Meeting,
		); err != nil {
			return fmt.Errorf("failed to insert candidate %q: %w", c.Name, err)
		}
	}

	leaderStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_leader (
			name, vote_goal, verified, resumes, bingo_tickets,
			ladies_free, banners, meeting
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return err
	}
	defer leaderStmt.Close()

	for _, l := range leaders {
		if _, err := leaderStmt.ExecContext(ctx,
			l.Name, l.VoteGoal, l.Verified, l.Resumes, l.BingoTickets,
			l.LadiesFree, l.Banners, l.Meeting,
		); err != nil {
			return fmt.Errorf("failed to insert leader %q: %w", l.Name, err)
		}
	}

	return tx.Commit()
}
