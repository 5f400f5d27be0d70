package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hjs-etl/internal/debug"
	"github.com/hjs-etl/internal/geo"
	"github.com/hjs-etl/internal/groups"
	import_pkg "github.com/hjs-etl/internal/import"
	"github.com/hjs-etl/internal/logger"
	"github.com/hjs-etl/internal/symspell"
)

const (
	// DivipoleCommitPages source pages are committed together.
	DivipoleCommitPages = 50
	// CensusChunkSize rows are staged per COPY.
	CensusChunkSize = 100000
	// CensusCommitChunks staged chunks are committed together.
	CensusCommitChunks = 10

	companyBatchSize  = 5000
	employeeBatchSize = 10000
	legalRepBatchSize = 5000
	contactBatchSize  = 5000
	relationBatchSize = 5000

	unresolvedReportSize = 20
)

// Options configures a Pipeline.
type Options struct {
	Runs    RunRecorder
	Log     *logger.Logger
	Out     io.Writer
	DataDir string
	Suggest *symspell.Config
}

// Pipeline runs the per-source loads against a Store.
type Pipeline struct {
	store    Store
	runs     RunRecorder
	mappings *import_pkg.Mappings
	log      *logger.Logger
	out      io.Writer
	dataDir  string
	suggest  *symspell.Config
}

// NewPipeline creates a pipeline over store.
func NewPipeline(store Store, opts Options) (*Pipeline, error) {
	mappings, err := import_pkg.LoadMappings()
	if err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Suggest == nil {
		opts.Suggest = symspell.DefaultConfig()
	}
	return &Pipeline{
		store:    store,
		runs:     opts.Runs,
		mappings: mappings,
		log:      opts.Log,
		out:      opts.Out,
		dataDir:  opts.DataDir,
		suggest:  opts.Suggest,
	}, nil
}

func (p *Pipeline) loaderOptions(localDebug bool) LoaderOptions {
	return LoaderOptions{Out: p.out, Log: p.log, Debug: localDebug}
}

// finish stamps, prints and records a report. Recording failures are logged
// and never replace the load's own outcome.
func (p *Pipeline) finish(ctx context.Context, report *LoadReport, err error) (*LoadReport, error) {
	report.Finish()
	if err != nil {
		report.Details["error"] = err.Error()
		fmt.Fprintf(p.out, "✗ %s stopped: %v\n", report.Source, err)
	}
	fmt.Fprintf(p.out, "✓ %s (%.1fs)\n", report.Summary(), report.Duration().Seconds())
	p.log.Info("load finished", "source", report.Source, "read", report.Read, "written", report.Written(), "errors", report.Errors)

	if p.runs != nil {
		if rerr := p.runs.RecordRun(context.WithoutCancel(ctx), report); rerr != nil {
			p.log.Warn("failed to record load run", "source", report.Source, "error", rerr)
		}
	}
	return report, err
}

// LoadDivipole extracts polling places from the DIVIPOLE table (PDF or CSV
// export) and upserts them, committing every DivipoleCommitPages pages.
func (p *Pipeline) LoadDivipole(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	src, err := import_pkg.OpenPages(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	spec := Spec[geo.Place]{Name: "divipole", Key: geo.Place.Key}
	loader := NewLoader(spec, p.store.Places(), p.loaderOptions(localDebug))
	report := loader.Report()

	total := src.NumPages()
	fmt.Fprintf(p.out, "Starting extraction from %s (%d pages)...\n", path, total)

	pageErrors := 0
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, report, err)
		}

		rows, err := src.PageRows(page)
		if err != nil {
			pageErrors++
			p.log.Warn("page extraction failed", "page", page, "error", err)
			continue
		}
		debug.DebugOutput(localDebug, "page %d: %d rows", page, len(rows))

		for _, cells := range rows {
			place, ok := geo.ParsePlaceRow(cells)
			if !ok {
				loader.Skip()
				continue
			}
			if err := loader.Add(ctx, place); err != nil {
				return p.finish(ctx, report, err)
			}
		}

		if page%DivipoleCommitPages == 0 {
			if err := loader.Flush(ctx); err != nil {
				return p.finish(ctx, report, err)
			}
			fmt.Fprintf(p.out, "Processed %d/%d pages. Rows written: %d\n", page, total, report.Written())
		}
	}
	if err := loader.Flush(ctx); err != nil {
		return p.finish(ctx, report, err)
	}

	report.Details["pages"] = total
	if pageErrors > 0 {
		report.Details["page_errors"] = pageErrors
	}
	return p.finish(ctx, report, nil)
}

// LoadCompanies upserts EMPRESAS.csv into core_company.
func (p *Pipeline) LoadCompanies(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	r, err := openSemicolonCSV(path, "company_id")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fmt.Fprintf(p.out, "Loading companies from %s...\n", path)
	spec := Spec[Company]{
		Name:      "companies",
		Key:       func(c Company) string { return c.ID },
		BatchSize: companyBatchSize,
	}
	loader := NewLoader(spec, p.store.Companies(), p.loaderOptions(localDebug))
	report, err := loader.Run(ctx, &recordSource[Company]{csv: r, mapFn: mapCompany})
	return p.finish(ctx, report, err)
}

// LoadEmployees upserts EMPLEADOS_EMPRESAS.csv. Unknown companies are
// nulled so the employee is still loaded.
func (p *Pipeline) LoadEmployees(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	r, err := openSemicolonCSV(path, "nominated_citizen_id")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	companies, err := p.store.CompanyIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company ids: %w", err)
	}
	fmt.Fprintf(p.out, "Found %d valid companies.\n", companies.Len())

	spec := Spec[Employee]{
		Name:      "employees",
		Key:       func(e Employee) string { return e.ID },
		BatchSize: employeeBatchSize,
		ForeignKeys: []ForeignKey[Employee]{{
			Name:   "company_id",
			Valid:  companies,
			Get:    func(e Employee) string { return deref(e.CompanyID) },
			Clear:  func(e *Employee) { e.CompanyID = nil },
			Policy: NullOnInvalid,
		}},
	}
	loader := NewLoader(spec, p.store.Employees(), p.loaderOptions(localDebug))
	report, err := loader.Run(ctx, &recordSource[Employee]{csv: r, mapFn: mapEmployee})
	return p.finish(ctx, report, err)
}

// LoadLegalReps inserts REP_LEGAL_EMPRESA.csv rows whose company exists.
func (p *Pipeline) LoadLegalReps(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	r, err := openSemicolonCSV(path, "company_contact_id", "company_id")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	companies, err := p.store.CompanyIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company ids: %w", err)
	}
	fmt.Fprintf(p.out, "Key cache: %d companies found.\n", companies.Len())

	spec := Spec[LegalRep]{
		Name:      "legal_reps",
		Key:       func(l LegalRep) string { return l.ContactID },
		BatchSize: legalRepBatchSize,
		KeepFirst: true,
		ForeignKeys: []ForeignKey[LegalRep]{{
			Name:   "company_id",
			Valid:  companies,
			Get:    func(l LegalRep) string { return l.CompanyID },
			Policy: DropOnInvalid,
		}},
	}
	loader := NewLoader(spec, p.store.LegalReps(), p.loaderOptions(localDebug))
	report, err := loader.Run(ctx, &recordSource[LegalRep]{csv: r, mapFn: mapLegalRep})
	return p.finish(ctx, report, err)
}

// LoadCensus bulk loads CENSO.csv through a staging table. Existing
// documents are kept as they are.
func (p *Pipeline) LoadCensus(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	r, err := openSemicolonCSV(path, "identification_number")
	if err != nil {
		return nil, err
	}
	defer r.Close()

	stage, err := p.store.BeginCensus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare census staging: %w", err)
	}
	defer stage.Close()

	report := NewLoadReport("census")
	chunk := make([]CensusRecord, 0, CensusChunkSize)
	chunks, staged := 0, 0

	flushChunk := func() error {
		if len(chunk) == 0 {
			return nil
		}
		chunks++
		if err := stage.Copy(ctx, chunk); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("census chunk rolled back", "chunk", chunks, "rows", len(chunk), "error", err)
			report.Errors += len(chunk)
		} else {
			staged += len(chunk)
		}
		chunk = chunk[:0]

		if chunks%CensusCommitChunks == 0 {
			if err := stage.Checkpoint(ctx); err != nil {
				return err
			}
			elapsed := report.Duration().Seconds()
			fmt.Fprintf(p.out, "   Chunk %d processed. Total rows staged: %d (%.0f rows/sec)\n", chunks, staged, float64(staged)/max(elapsed, 0.001))
		}
		return nil
	}

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Read++
		var rowErr *import_pkg.RowError
		if errors.As(err, &rowErr) {
			report.Errors++
			p.log.Warn("census row rejected", "error", rowErr)
			continue
		}
		if err != nil {
			return p.finish(ctx, report, err)
		}

		row, err := mapCensus(rec)
		if errors.As(err, &rowErr) {
			report.Errors++
			p.log.Warn("census row rejected", "error", rowErr)
			continue
		}
		if err != nil {
			report.Skipped++
			continue
		}
		chunk = append(chunk, row)
		if len(chunk) >= CensusChunkSize {
			if err := flushChunk(); err != nil {
				return p.finish(ctx, report, err)
			}
		}
	}
	if err := flushChunk(); err != nil {
		return p.finish(ctx, report, err)
	}
	if err := stage.Checkpoint(ctx); err != nil {
		return p.finish(ctx, report, err)
	}
	fmt.Fprintf(p.out, "Staging complete. Total rows staged: %d\n", staged)

	fmt.Fprintln(p.out, "Moving data from staging to person_census...")
	inserted, err := stage.Publish(ctx)
	if err != nil {
		return p.finish(ctx, report, fmt.Errorf("failed to publish census: %w", err))
	}
	report.Inserted = int(inserted)
	report.Unchanged = staged - int(inserted)
	report.Batches = chunks
	report.Details["staged"] = staged
	return p.finish(ctx, report, nil)
}

// LoadContacts upserts the contacts workbook, resolving each free-text
// municipality against the geographic dimension.
func (p *Pipeline) LoadContacts(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	mapping, err := p.mappings.Sheet("contacts")
	if err != nil {
		return nil, err
	}
	wb, err := import_pkg.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	table, _, err := wb.ReadTable(wb.FirstSheet(), mapping)
	if err != nil {
		return nil, err
	}
	if !table.Columns.Has("document") {
		return nil, fmt.Errorf("%s: no document column in header %v", path, table.Header)
	}

	municipalities, err := p.store.Municipalities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch municipalities: %w", err)
	}
	ix := geo.BuildIndex(municipalities)
	fmt.Fprintf(p.out, "Loaded %d municipalities for lookup.\n", ix.Len())
	for _, c := range ix.Collisions() {
		p.log.Warn("municipality name maps to several codes, keeping first seen",
			"name", c.Key, "kept", c.Kept, "ignored", c.Ignored)
	}

	tally := &geo.Tally{}
	src := &tableSource[Contact]{table: table, mapFn: func(row []string) (Contact, error) {
		return mapContact(table, row, ix, tally)
	}}

	spec := Spec[Contact]{
		Name:      "contacts",
		Key:       func(c Contact) string { return c.Document },
		BatchSize: contactBatchSize,
	}
	loader := NewLoader(spec, p.store.Contacts(), p.loaderOptions(localDebug))
	report, err := loader.Run(ctx, src)

	report.Resolved = tally.Resolved
	report.Unresolved = tally.Unresolved
	report.Details["municipality_collisions"] = len(ix.Collisions())
	if tally.Unresolved > 0 {
		dict := symspell.BuildFromMunicipalities(municipalities, p.suggest)
		unresolved := symspell.NewSuggester(dict, p.suggest).Report(tally, unresolvedReportSize)
		report.Details["unresolved_municipalities"] = unresolved
		for _, u := range unresolved {
			debug.DebugOutput(localDebug, "unresolved municipality %q x%d, suggestions %v", u.Name, u.Count, u.Suggestions)
		}
	}
	fmt.Fprintf(p.out, "Resolved municipality for %d records, %d unresolved.\n", tally.Resolved, tally.Unresolved)
	return p.finish(ctx, report, err)
}

// LoadGroups builds the group vocabulary from the workbooks listed in the
// header mappings, inserts new groups, optionally writes the deduplicated
// relations to relationsOut, and loads the relations.
func (p *Pipeline) LoadGroups(ctx context.Context, localDebug bool, relationsOut string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	d := groups.NewDeduplicator()
	for _, gs := range p.mappings.GroupSources {
		path := filepath.Join(p.dataDir, gs.File)
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(p.out, "⚠ File not found: %s\n", path)
			continue
		}
		n, err := collectGroups(path, gs, d)
		if err != nil {
			p.log.Warn("group source failed", "file", gs.File, "error", err)
			continue
		}
		fmt.Fprintf(p.out, "   %s: %d new relations.\n", gs.File, n)
	}

	names := d.Names()
	inserted := 0
	withGroups := func(r *LoadReport) *LoadReport {
		r.Details["groups"] = len(names)
		r.Details["groups_inserted"] = inserted
		return r
	}
	if len(names) > 0 {
		var err error
		inserted, err = p.store.InsertGroups(ctx, names)
		if err != nil {
			return p.finish(ctx, withGroups(NewLoadReport("groups")), fmt.Errorf("failed to insert groups: %w", err))
		}
	}
	fmt.Fprintf(p.out, "Groups: %d distinct, %d new.\n", len(names), inserted)

	if relationsOut != "" && d.Len() > 0 {
		if err := groups.WriteFile(relationsOut, d.Relations()); err != nil {
			return p.finish(ctx, withGroups(NewLoadReport("groups")), err)
		}
		fmt.Fprintf(p.out, "Relations file written: %s (%d unique relations)\n", relationsOut, d.Len())
	}

	report, err := p.loadRelations(ctx, localDebug, "groups", &sliceSource[groups.Relation]{rows: d.Relations()})
	return p.finish(ctx, withGroups(report), err)
}

// LoadRelations loads a relations file written by LoadGroups.
func (p *Pipeline) LoadRelations(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	r, err := groups.OpenRelations(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	report, err := p.loadRelations(ctx, localDebug, "relations", r)
	return p.finish(ctx, report, err)
}

// loadRelations never returns a nil report, so failed runs are still recorded.
func (p *Pipeline) loadRelations(ctx context.Context, localDebug bool, name string, src Source[groups.Relation]) (*LoadReport, error) {
	ids, err := p.store.GroupIDs(ctx)
	if err != nil {
		return NewLoadReport(name), fmt.Errorf("failed to fetch group ids: %w", err)
	}
	documents, err := p.store.ContactDocuments(ctx)
	if err != nil {
		return NewLoadReport(name), fmt.Errorf("failed to fetch contact documents: %w", err)
	}
	fmt.Fprintf(p.out, "Mapped %d groups and %d valid documents.\n", len(ids), documents.Len())

	known := make(KeySet, len(ids))
	for g := range ids {
		known.Add(g)
	}

	spec := Spec[GroupRelation]{
		Name:      name,
		Key:       func(r GroupRelation) string { return r.Document + "|" + r.Group },
		BatchSize: relationBatchSize,
		KeepFirst: true,
		ForeignKeys: []ForeignKey[GroupRelation]{
			{Name: "document", Valid: documents, Get: func(r GroupRelation) string { return r.Document }, Policy: DropOnInvalid},
			{Name: "group", Valid: known, Get: func(r GroupRelation) string { return r.Group }, Policy: DropOnInvalid},
		},
	}
	loader := NewLoader(spec, p.store.Relations(), p.loaderOptions(localDebug))
	return loader.Run(ctx, &relationSource{src: src, ids: ids})
}

// LoadTracking replaces the campaign tracking tables with the candidate and
// leader sheets of the tracking workbook.
func (p *Pipeline) LoadTracking(ctx context.Context, localDebug bool, path string) (*LoadReport, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	candMapping, err := p.mappings.Sheet("candidates")
	if err != nil {
		return nil, err
	}
	leaderMapping, err := p.mappings.Sheet("leaders")
	if err != nil {
		return nil, err
	}

	wb, err := import_pkg.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	fmt.Fprintf(p.out, "Sheets found: %v\n", wb.Sheets())

	report := NewLoadReport("tracking")

	var candidates []Candidate
	for _, sheet := range wb.SheetsContaining("Candidatos", "Otros partidos") {
		table, found, err := wb.ReadTable(sheet, candMapping)
		if err != nil {
			return p.finish(ctx, report, err)
		}
		if !found {
			fmt.Fprintf(p.out, "⚠ Could not find header row in %s, using row 0\n", sheet)
		}
		debug.DebugOutput(localDebug, "%s header at row %d: %v", sheet, table.HeaderRow, table.Header)

		rows, skipped := parseCandidates(table, sheet)
		candidates = append(candidates, rows...)
		report.Read += len(table.Rows)
		report.Skipped += skipped
	}

	var leaders []Leader
	if sheets := wb.SheetsContaining("LIDERES"); len(sheets) > 0 {
		table, found, err := wb.ReadTable(sheets[0], leaderMapping)
		if err != nil {
			return p.finish(ctx, report, err)
		}
		if !found {
			fmt.Fprintf(p.out, "⚠ Could not find header row for leaders in %s, using row 0\n", sheets[0])
		}
		var skipped int
		leaders, skipped = parseLeaders(table)
		report.Read += len(table.Rows)
		report.Skipped += skipped
	} else {
		fmt.Fprintln(p.out, "⚠ Leader sheet not found")
	}

	if err := p.store.ReplaceTracking(ctx, candidates, leaders); err != nil {
		return p.finish(ctx, report, fmt.Errorf("failed to replace tracking tables: %w", err))
	}
	report.Inserted = len(candidates) + len(leaders)
	report.Batches = 1
	report.Details["candidates"] = len(candidates)
	report.Details["leaders"] = len(leaders)
	return p.finish(ctx, report, nil)
}

func openSemicolonCSV(path string, required ...string) (*import_pkg.CSVReader, error) {
	r, err := import_pkg.OpenCSV(path, ';')
	if err != nil {
		return nil, err
	}
	if err := r.Require(required...); err != nil {
		r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// collectGroups feeds the document and group columns of a workbook's first
// sheet into d and returns the number of new relations.
func collectGroups(path string, gs import_pkg.GroupSource, d *groups.Deduplicator) (int, error) {
	wb, err := import_pkg.OpenWorkbook(path)
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	rows, err := wb.Rows(wb.FirstSheet())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	cols := import_pkg.ResolveColumns(rows[0], map[string][]string{"document": gs.Document, "group": gs.Group})
	if !cols.Has("document") || !cols.Has("group") {
		return 0, fmt.Errorf("expected columns %v and %v in header %v", gs.Document, gs.Group, rows[0])
	}

	added := 0
	for _, row := range rows[1:] {
		added += d.Add(cols.Get(row, "document"), cols.Get(row, "group"))
	}
	return added, nil
}

// tableSource serves the data rows of a sheet.
type tableSource[T any] struct {
	table *import_pkg.Table
	i     int
	mapFn func(row []string) (T, error)
}

func (s *tableSource[T]) Next() (T, error) {
	if s.i >= len(s.table.Rows) {
		var zero T
		return zero, io.EOF
	}
	row := s.table.Rows[s.i]
	s.i++
	return s.mapFn(row)
}

// relationSource attaches group ids to deduplicated relations.
type relationSource struct {
	src Source[groups.Relation]
	ids map[string]int64
}

func (s *relationSource) Next() (GroupRelation, error) {
	rel, err := s.src.Next()
	if err != nil {
		return GroupRelation{}, err
	}
	return GroupRelation{Document: rel.Document, Group: rel.Group, GroupID: s.ids[rel.Group]}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
