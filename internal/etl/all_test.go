package etl

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLoadAllSkipsMissingFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles(dir, filepath.Join(dir, "missing.pdf"))
	writeFile(t, dir, CompaniesFile, "company_id;legal_name\nC1;ACME\n")
	writeFile(t, dir, EmployeesFile, "nominated_citizen_id;company_id\nE1;C1\nE2;X\n")

	store := newFakeStore()
	runs := &fakeRuns{}
	p := newTestPipeline(t, store, runs, dir)

	reports, err := p.LoadAll(context.Background(), false, files)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	var sources []string
	for _, r := range reports {
		sources = append(sources, r.Source)
	}
	// groups always runs; it has no single input file
	want := []string{"companies", "employees", "groups"}
	if len(sources) != len(want) {
		t.Fatalf("ran %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, sources[i], want[i])
		}
	}
	if len(runs.reports) != 3 {
		t.Errorf("recorded %d runs, want 3", len(runs.reports))
	}
	if len(store.employees.rows()) != 2 {
		t.Errorf("employees written = %d, want 2", len(store.employees.rows()))
	}
}

func TestLoadAllStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, newFakeStore(), &fakeRuns{}, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := p.LoadAll(ctx, false, DefaultFiles(dir, ""))
	if err == nil || len(reports) != 0 {
		t.Errorf("LoadAll() = %d reports, %v; want cancellation before any step", len(reports), err)
	}
}
