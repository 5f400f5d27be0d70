package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Tables lists the warehouse tables in load order.
var Tables = []string{
	"dim_geo_place",
	"core_company",
	"person_employee",
	"legal_representative_contact",
	"person_census",
	"person_contact",
	`"group"`,
	"person_group_relation",
	"campaign_candidate",
	"campaign_leader",
	"etl_load_run",
}

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}

// ApplySchema creates every warehouse table that does not exist yet.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	fmt.Println("Applying warehouse schema...")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	fmt.Println("✓ Schema applied")
	return nil
}

// TableCount is the row count of one table, or the error that prevented it.
type TableCount struct {
	Table string
	Rows  int64
	Err   error
}

// TableCounts counts the rows of every warehouse table. A missing table is
// reported in its entry rather than failing the whole call.
func TableCounts(ctx context.Context, db *sql.DB) ([]TableCount, error) {
	out := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		tc := TableCount{Table: table}
		tc.Err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&tc.Rows)
		out = append(out, tc)
	}
	return out, nil
}
