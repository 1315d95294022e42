package syncrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"usecasesync/internal/catalog"
	"usecasesync/internal/config"
	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
	"usecasesync/internal/records"
	"usecasesync/internal/registry"
	"usecasesync/internal/source"
	"usecasesync/internal/testsupport"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func runSync(t *testing.T, cfg *config.Config, mutate ...func(*Options)) *Report {
	t.Helper()
	opts := Options{Config: cfg, Logger: logging.NewNop(), Now: fixedNow}
	for _, m := range mutate {
		m(&opts)
	}
	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return report
}

func loadCatalog(t *testing.T, cfg *config.Config) *catalog.Document {
	t.Helper()
	doc, exists, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if !exists {
		t.Fatal("catalog was not written")
	}
	return doc
}

func catalogIDs(doc *catalog.Document) map[string]ident.ID {
	out := make(map[string]ident.ID, len(doc.UseCases))
	for _, uc := range doc.UseCases {
		out[uc.Title] = uc.ID
	}
	return out
}

func TestRegistryModeLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTitles(t, cfg.Paths.Source, "Summarize logs", "Refactor function")

	first := runSync(t, cfg)
	if first.RunID == "" || first.Stats.Allocated != 2 {
		t.Fatalf("first run report = %+v", first)
	}
	doc := loadCatalog(t, cfg)
	if got := catalogIDs(doc); got["Summarize logs"] != 1 || got["Refactor function"] != 2 {
		t.Fatalf("first run ids = %v", got)
	}
	if doc.Metadata == nil || doc.Metadata.RunID != first.RunID || doc.Metadata.Mode != "registry" {
		t.Fatalf("metadata = %+v", doc.Metadata)
	}
	if doc.Metadata.Version != cfg.Catalog.Version || doc.Metadata.LastUpdated != "2025-03-01 12:00:00" {
		t.Fatalf("metadata = %+v", doc.Metadata)
	}

	// A typo keeps its identifier; a dropped title retires.
	testsupport.WriteTitles(t, cfg.Paths.Source, "Refactor functoin", "New feature X")
	second := runSync(t, cfg)
	if second.Stats.Fuzzy != 1 || second.Stats.Allocated != 1 {
		t.Fatalf("second run stats = %+v", second.Stats)
	}
	doc = loadCatalog(t, cfg)
	got := catalogIDs(doc)
	if got["Refactor functoin"] != 2 || got["New feature X"] != 3 {
		t.Fatalf("second run ids = %v", got)
	}
	if !slices.Equal(doc.Metadata.RetiredIDs, []uint64{1}) || doc.Metadata.TotalIDs != 3 {
		t.Fatalf("second run metadata = %+v", doc.Metadata)
	}
	if doc.UseCases[0].ID != 2 || doc.UseCases[1].ID != 3 {
		t.Fatalf("catalog not sorted by id: %+v", doc.UseCases)
	}

	reg := testsupport.LoadRegistry(t, cfg)
	if reg.NextID() != 4 || !reg.IsRetired(1) {
		t.Fatalf("registry next=%s retired=%v", reg.NextID(), reg.Retired())
	}
	if id, ok := reg.ResolveExact("Refactor functoin"); !ok || id != 2 {
		t.Fatalf("alias not persisted: %s %v", id, ok)
	}

	// The dropped title comes back with its old identifier.
	testsupport.WriteTitles(t, cfg.Paths.Source, "Summarize logs", "Refactor functoin", "New feature X")
	third := runSync(t, cfg)
	if third.Stats.Exact != 3 || len(third.Allocated) != 0 {
		t.Fatalf("third run stats = %+v", third.Stats)
	}
	if got := catalogIDs(loadCatalog(t, cfg)); got["Summarize logs"] != 1 {
		t.Fatalf("returning title got %s", got["Summarize logs"])
	}
}

func TestExampleScenarioThroughStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SaveRegistry(t, cfg, map[string]ident.ID{"Summarize logs": 1, "Refactor function": 2}, 3)
	testsupport.WriteTitles(t, cfg.Paths.Source, "Summarize logs", "Refactor functoin", "New feature X")

	report := runSync(t, cfg)
	got := catalogIDs(loadCatalog(t, cfg))
	want := map[string]ident.ID{"Summarize logs": 1, "Refactor functoin": 2, "New feature X": 3}
	for title, id := range want {
		if got[title] != id {
			t.Errorf("%q = %s, want %s", title, got[title], id)
		}
	}
	if len(report.NewlyRetired) != 0 {
		t.Fatalf("unexpected retirements %v", report.NewlyRetired)
	}
	if next := testsupport.LoadRegistry(t, cfg).NextID(); next != 4 {
		t.Fatalf("next id = %s, want 4", next)
	}
}

func TestSnapshotModeFillsGaps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModeSnapshot))
	prev := &catalog.Document{UseCases: []records.UseCase{
		{ID: 1, Title: "Alpha"},
		{ID: 3, Title: "Gamma"},
	}}
	if err := catalog.Write(cfg.Paths.Catalog, prev); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha", "Gamma", "Beta")

	report := runSync(t, cfg)
	if report.Registry != "" {
		t.Fatalf("snapshot mode should not open a registry, got %q", report.Registry)
	}
	if got := catalogIDs(loadCatalog(t, cfg)); got["Beta"] != 2 {
		t.Fatalf("gap not filled: %v", got)
	}
	if _, err := os.Stat(cfg.Paths.Registry); !os.IsNotExist(err) {
		t.Fatalf("snapshot mode wrote a registry: %v", err)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha", "Beta")

	report := runSync(t, cfg, func(o *Options) { o.DryRun = true })
	if !report.DryRun || report.Stats.Allocated != 2 {
		t.Fatalf("report = %+v", report)
	}
	for _, path := range []string{cfg.Paths.Catalog, cfg.Paths.Registry, cfg.LockTarget() + ".lock"} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("dry run wrote %s", path)
		}
	}
}

func TestEmptySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.SaveRegistry(t, cfg, map[string]ident.ID{"Alpha": 1}, 2)
	testsupport.WriteTitles(t, cfg.Paths.Source)

	_, err := Run(context.Background(), Options{Config: cfg, Logger: logging.NewNop()})
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Paths.Catalog); !os.IsNotExist(statErr) {
		t.Fatal("catalog written for a refused run")
	}

	report := runSync(t, cfg, func(o *Options) { o.AllowEmpty = true })
	if !slices.Equal(report.NewlyRetired, []ident.ID{1}) {
		t.Fatalf("allow-empty should retire everything, got %v", report.NewlyRetired)
	}
}

func TestMissingTitleColumnIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteCSV(t, cfg.Paths.Source, []string{"Name", "Description"}, [][]string{{"Alpha", "x"}})

	_, err := Run(context.Background(), Options{Config: cfg, Logger: logging.NewNop()})
	if !errors.Is(err, source.ErrMissingColumn) || !errors.Is(err, source.ErrSourceUnreadable) {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Paths.Catalog); !os.IsNotExist(statErr) {
		t.Fatal("catalog written for an unreadable source")
	}
}

func TestMissingSourceFailsPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := Run(context.Background(), Options{Config: cfg, Logger: logging.NewNop()})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestConcurrentRunIsRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha")

	held := registry.NewLock(cfg.LockTarget())
	if err := held.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	_, err := Run(context.Background(), Options{Config: cfg, Logger: logging.NewNop()})
	if !errors.Is(err, registry.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

type failingStore struct {
	registry.Store
}

func (failingStore) Save(context.Context, *registry.Registry) error {
	return errors.New("disk full")
}

func TestRegistrySaveFailureRestoresCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha")
	runSync(t, cfg)
	before, err := os.ReadFile(cfg.Paths.Catalog)
	if err != nil {
		t.Fatal(err)
	}

	original := openStore
	openStore = func(c *config.Config, l *slog.Logger) (registry.Store, error) {
		store, err := original(c, l)
		if err != nil {
			return nil, err
		}
		return failingStore{Store: store}, nil
	}
	t.Cleanup(func() { openStore = original })

	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha", "Beta")
	if _, err := Run(context.Background(), Options{Config: cfg, Logger: logging.NewNop()}); err == nil {
		t.Fatal("expected save failure")
	}
	after, err := os.ReadFile(cfg.Paths.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("catalog not restored after registry save failure")
	}
	if next := testsupport.LoadRegistry(t, cfg).NextID(); next != 2 {
		t.Fatalf("registry changed: next=%s", next)
	}
}

func TestSeedFromCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	prev := &catalog.Document{
		UseCases: []records.UseCase{{ID: 5, Title: "Alpha"}, {ID: 7, Title: "Beta"}},
		Metadata: &catalog.Metadata{TotalIDs: 7, RetiredIDs: []uint64{6}},
	}
	if err := catalog.Write(cfg.Paths.Catalog, prev); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha", "Beta", "Gamma")

	report := runSync(t, cfg)
	if !report.Seeded {
		t.Fatal("expected registry to be seeded from catalog")
	}
	got := catalogIDs(loadCatalog(t, cfg))
	if got["Alpha"] != 5 || got["Beta"] != 7 || got["Gamma"] != 8 {
		t.Fatalf("ids = %v", got)
	}
	if !testsupport.LoadRegistry(t, cfg).IsRetired(6) {
		t.Fatal("retired id lost while seeding")
	}
}

func TestBackupIsTakenOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackup())
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha")
	if report := runSync(t, cfg); report.BackedUp {
		t.Fatal("first run has no catalog to back up")
	}
	if report := runSync(t, cfg); !report.BackedUp {
		t.Fatal("second run should back up the catalog")
	}
	if report := runSync(t, cfg); report.BackedUp {
		t.Fatal("backup should only be taken once")
	}
	if _, err := os.Stat(cfg.Paths.Catalog + catalog.BackupSuffix); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
}

func TestSQLiteBackendRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendSQLite))
	testsupport.WriteTitles(t, cfg.Paths.Source, "Alpha", "Beta")

	first := runSync(t, cfg)
	runSync(t, cfg, func(o *Options) { o.DryRun = true })

	store := testsupport.MustOpenStore(t, cfg)
	recorder, ok := store.(registry.HistoryRecorder)
	if !ok {
		t.Fatal("sqlite store should record history")
	}
	runs, err := recorder.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	var found bool
	for _, run := range runs {
		if run.ID == first.RunID {
			found = true
			if run.Allocated != 2 || run.DryRun {
				t.Fatalf("recorded run = %+v", run)
			}
		}
	}
	if !found {
		t.Fatal("first run missing from history")
	}
}

func TestReportSummarizesCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteCSV(t, cfg.Paths.Source, testsupport.DefaultHeader, [][]string{
		{"Get my IP address", "d", "p", "Step-by-step", "", "", "40", "yes", ""},
		{"Set Up Development Environment", "d", "p", "Beginner", "", "", "120", "no", ""},
		{"Plain prompt", "d", "p", "", "", "", "", "yes", ""},
	})

	report := runSync(t, cfg)
	s := report.Summary
	if s.Total != 3 || s.Verified != 2 || s.WithClicks != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.SessionTypes[records.SessionStepByStep] != 1 || s.SessionTypes[records.SessionInstant] != 2 {
		t.Fatalf("session types = %v", s.SessionTypes)
	}
	wantCategories := map[string]int{
		"Server Configuration": 1,
		"Environment Setup":    1,
		records.NoTaskCategory: 1,
	}
	if len(s.TaskCategories) != len(wantCategories) {
		t.Fatalf("task categories = %v", s.TaskCategories)
	}
	for name, n := range wantCategories {
		if s.TaskCategories[name] != n {
			t.Fatalf("task categories = %v", s.TaskCategories)
		}
	}
	if len(s.TopClicked) != 2 || s.TopClicked[0].ID != 2 || s.TopClicked[0].Clicks != 120 || s.TopClicked[1].ID != 1 {
		t.Fatalf("top clicked = %+v", s.TopClicked)
	}

	dry := runSync(t, cfg, func(o *Options) { o.DryRun = true })
	if dry.Summary.Total != 3 || dry.Summary.Verified != 2 {
		t.Fatalf("dry run summary = %+v", dry.Summary)
	}
}

func TestXLSXSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSourceName("export.xlsx"))
	testsupport.WriteXLSX(t, cfg.Paths.Source, testsupport.DefaultHeader, [][]string{
		{"Alpha", "About alpha", "Prompt", "Beginner", "Engineers", "Development", "12", "yes", "DC Team"},
	})

	runSync(t, cfg)
	doc := loadCatalog(t, cfg)
	if len(doc.UseCases) != 1 {
		t.Fatalf("use cases = %d", len(doc.UseCases))
	}
	uc := doc.UseCases[0]
	if uc.ID != 1 || uc.Author != "DC team" || !uc.Verified || uc.GAClicks != 12 {
		t.Fatalf("use case = %+v", uc)
	}
}
