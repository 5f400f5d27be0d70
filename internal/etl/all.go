package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Default source file names under the data directory.
const (
	CompaniesFile = "EMPRESAS.csv"
	EmployeesFile = "EMPLEADOS_EMPRESAS.csv"
	LegalRepsFile = "REP_LEGAL_EMPRESA.csv"
	CensusFile    = "CENSO.csv"
	ContactsFile  = "BD_completa_HJS.xlsx"
	RelationsFile = "relaciones_persona_grupo.csv"
	TrackingFile  = "SEGUIMIENTO A LIDERES CAMPAÑA HJS 2023.xlsx"
)

// Files locates every source of a full load.
type Files struct {
	Divipole  string
	Companies string
	Employees string
	LegalReps string
	Census    string
	Contacts  string
	// Relations is written by the groups step.
	Relations string
	Tracking  string
}

// DefaultFiles resolves the default file names against dataDir.
func DefaultFiles(dataDir, divipole string) Files {
	return Files{
		Divipole:  divipole,
		Companies: filepath.Join(dataDir, CompaniesFile),
		Employees: filepath.Join(dataDir, EmployeesFile),
		LegalReps: filepath.Join(dataDir, LegalRepsFile),
		Census:    filepath.Join(dataDir, CensusFile),
		Contacts:  filepath.Join(dataDir, ContactsFile),
		Relations: filepath.Join(dataDir, RelationsFile),
		Tracking:  filepath.Join(dataDir, TrackingFile),
	}
}

type step struct {
	name    string
	path    string
	noInput bool // run without checking path
	run     func(ctx context.Context, localDebug bool, path string) (*LoadReport, error)
}

// LoadAll runs every load in dependency order: the geographic dimension and
// companies before the sources that reference them, contacts before groups.
// Steps whose input file is missing are skipped; the first failing step stops
// the run.
func (p *Pipeline) LoadAll(ctx context.Context, localDebug bool, files Files) ([]*LoadReport, error) {
	steps := []step{
		{name: "divipole", path: files.Divipole, run: p.LoadDivipole},
		{name: "companies", path: files.Companies, run: p.LoadCompanies},
		{name: "employees", path: files.Employees, run: p.LoadEmployees},
		{name: "legal_reps", path: files.LegalReps, run: p.LoadLegalReps},
		{name: "census", path: files.Census, run: p.LoadCensus},
		{name: "contacts", path: files.Contacts, run: p.LoadContacts},
		{name: "groups", path: files.Relations, noInput: true, run: func(ctx context.Context, localDebug bool, out string) (*LoadReport, error) {
			return p.LoadGroups(ctx, localDebug, out)
		}},
		{name: "tracking", path: files.Tracking, run: p.LoadTracking},
	}

	var reports []*LoadReport
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		if !s.noInput {
			if _, err := os.Stat(s.path); s.path == "" || err != nil {
				fmt.Fprintf(p.out, "⚠ [%d/%d] %s: file not found, skipping (%s)\n", i+1, len(steps), s.name, s.path)
				continue
			}
		}

		fmt.Fprintf(p.out, "\n=== [%d/%d] %s ===\n", i+1, len(steps), s.name)
		report, err := s.run(ctx, localDebug, s.path)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return reports, nil
}
