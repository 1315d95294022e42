package syncrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"usecasesync/internal/catalog"
	"usecasesync/internal/config"
	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
	"usecasesync/internal/preflight"
	"usecasesync/internal/reconcile"
	"usecasesync/internal/records"
	"usecasesync/internal/registry"
	"usecasesync/internal/source"
)

// ErrEmptySource refuses to retire every identifier because of an export
// with a header and no data rows.
var ErrEmptySource = errors.New("source has no data rows")

var openStore = registry.Open

// Options controls a sync run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// DryRun reconciles without writing the catalog or the registry.
	DryRun bool
	// AllowEmpty accepts a source with no data rows, retiring every
	// known identifier.
	AllowEmpty bool
	// Now overrides the clock for catalog timestamps.
	Now func() time.Time
}

// Report summarizes a finished run.
type Report struct {
	RunID        string            `json:"run_id"`
	Mode         reconcile.Mode    `json:"mode"`
	Source       string            `json:"source"`
	Catalog      string            `json:"catalog"`
	Registry     string            `json:"registry,omitempty"`
	DryRun       bool              `json:"dry_run"`
	BackedUp     bool              `json:"backed_up"`
	Seeded       bool              `json:"seeded"`
	Stats        reconcile.Stats   `json:"stats"`
	Allocated    []ident.ID        `json:"allocated"`
	NewlyRetired []ident.ID        `json:"newly_retired"`
	Retired      []ident.ID        `json:"retired"`
	TotalIDs     uint64            `json:"total_ids"`
	Warnings     records.Warnings  `json:"warnings"`
	Summary      records.Summary   `json:"summary"`
	Entries      []reconcile.Entry `json:"entries,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// Run performs one sync. Nothing is written when it returns an error before
// the catalog write, and a failed registry save restores the catalog.
func Run(ctx context.Context, opts Options) (*Report, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("sync requires config")
	}
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "sync"))

	mode, ok := reconcile.ParseMode(cfg.Registry.Mode)
	if !ok {
		return nil, fmt.Errorf("unknown registry mode %q", cfg.Registry.Mode)
	}

	report := &Report{
		RunID:     runID,
		Mode:      mode,
		Source:    cfg.Paths.Source,
		Catalog:   cfg.Paths.Catalog,
		DryRun:    opts.DryRun,
		StartedAt: now(),
	}

	logger.Info("sync started",
		logging.String(logging.FieldEventType, "sync_start"),
		logging.String("source", cfg.Paths.Source),
		logging.String("catalog", cfg.Paths.Catalog),
		logging.String("mode", string(mode)),
		logging.Bool("dry_run", opts.DryRun))

	if err := preflight.Err(preflight.RunAll(cfg, preflight.Options{SkipDestinations: opts.DryRun})); err != nil {
		return nil, err
	}

	useCases, warnings, err := readSource(cfg, opts.AllowEmpty)
	if err != nil {
		return nil, err
	}
	report.Warnings = warnings

	if !opts.DryRun {
		lock := registry.NewLock(cfg.LockTarget())
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("release lock failed", logging.Error(err))
			}
		}()
	}

	var (
		src   reconcile.IdentitySource
		store registry.Store
		reg   *registry.Registry
	)
	switch mode {
	case reconcile.ModeSnapshot:
		doc, _, err := catalog.Load(cfg.Paths.Catalog)
		if err != nil {
			return nil, err
		}
		src = reconcile.NewSnapshotSource(doc.Bindings(), doc.RetiredIDs(), doc.TotalIDs())
	default:
		store, err = openStore(cfg, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("open registry: %w", err)
		}
		defer store.Close()
		report.Registry = store.Path()

		reg, report.Seeded, err = loadRegistry(ctx, cfg, store, logger)
		if err != nil {
			return nil, err
		}
		src = reconcile.NewRegistrySource(reg)
	}

	result, err := reconcile.New(src, opts.Logger).Reconcile(ctx, useCases)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	report.Stats = result.Stats
	report.Allocated = result.Allocated
	report.NewlyRetired = result.NewlyRetired
	report.Retired = result.Retired
	report.TotalIDs = result.TotalIDs
	report.Entries = result.Entries
	report.Summary = records.Summarize(result.UseCases())

	if !warnings.Empty() {
		logging.WarnWithContext(logger, "source rows needed defaults", "record_defaults",
			logging.Int("count", warnings.Total()),
			logging.String("warnings", warnings.Summary()),
			logging.String(logging.FieldErrorHint, "fill the missing cells in the source export"),
			logging.String(logging.FieldImpact, "defaults were written to the catalog"))
	}

	if opts.DryRun {
		report.FinishedAt = now()
		recordHistory(ctx, store, report, logger)
		logger.Info("dry run complete; nothing written", summaryAttrs(report)...)
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Catalog.Backup {
		backedUp, err := catalog.Backup(cfg.Paths.Catalog)
		if err != nil {
			return nil, err
		}
		report.BackedUp = backedUp
		if backedUp {
			logger.Info("catalog backed up", logging.String("path", cfg.Paths.Catalog+catalog.BackupSuffix))
		}
	}

	previous, err := catalog.TakeSnapshot(cfg.Paths.Catalog)
	if err != nil {
		return nil, err
	}

	out := result.UseCases()
	meta := catalog.NewMetadata(out, result.TotalIDs, result.Retired, now())
	meta.Version = cfg.Catalog.Version
	meta.Source = cfg.Catalog.SourceLabel
	meta.Mode = string(mode)
	meta.RunID = runID
	if err := catalog.Write(cfg.Paths.Catalog, &catalog.Document{UseCases: out, Metadata: meta}); err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Save(ctx, reg); err != nil {
			saveErr := fmt.Errorf("save registry: %w", err)
			if restoreErr := previous.Restore(); restoreErr != nil {
				logging.ErrorWithContext(logger, "catalog rollback failed", "catalog_rollback",
					logging.Error(restoreErr),
					logging.String(logging.FieldErrorHint, "restore the catalog from its backup before the next run"))
				return nil, errors.Join(saveErr, restoreErr)
			}
			logging.ErrorWithContext(logger, "registry save failed; catalog restored", "registry_save",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on "+store.Path()))
			return nil, saveErr
		}
	}

	report.FinishedAt = now()
	recordHistory(ctx, store, report, logger)
	logger.Info("sync complete", summaryAttrs(report)...)
	return report, nil
}

func readSource(cfg *config.Config, allowEmpty bool) ([]records.UseCase, records.Warnings, error) {
	table, err := source.Open(cfg.Paths.Source, source.Options{Sheet: cfg.Source.Sheet})
	if err != nil {
		return nil, records.Warnings{}, err
	}
	if err := table.Require(records.ColumnTitle); err != nil {
		return nil, records.Warnings{}, err
	}
	if table.Len() == 0 && !allowEmpty {
		return nil, records.Warnings{}, fmt.Errorf("%w: %s", ErrEmptySource, cfg.Paths.Source)
	}

	rows := make([]records.Row, 0, table.Len())
	for _, row := range table.Rows() {
		rows = append(rows, row)
	}
	normalizer := records.NewNormalizer(records.OptionsFromConfig(cfg.Records))
	useCases := normalizer.NormalizeAll(rows)
	return useCases, normalizer.Warnings(), nil
}

// loadRegistry loads the persisted registry. When none exists and seeding is
// enabled, the registry is rebuilt from the current catalog so existing
// identifiers survive the switch to registry mode.
func loadRegistry(ctx context.Context, cfg *config.Config, store registry.Store, logger *slog.Logger) (*registry.Registry, bool, error) {
	reg, exists, err := store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load registry: %w", err)
	}
	if exists || !cfg.Registry.SeedFromCatalog {
		return reg, false, nil
	}

	doc, found, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return nil, false, err
	}
	if !found || len(doc.UseCases) == 0 {
		return reg, false, nil
	}
	seeded, err := registry.Seed(doc.Bindings(), doc.RetiredIDs(), doc.TotalIDs())
	if err != nil {
		return nil, false, fmt.Errorf("seed registry from catalog: %w", err)
	}
	logger.Info("registry seeded from catalog",
		logging.String(logging.FieldEventType, "registry_seed"),
		logging.Int("titles", seeded.Len()),
		logging.String("next_id", seeded.NextID().String()))
	return seeded, true, nil
}

func recordHistory(ctx context.Context, store registry.Store, report *Report, logger *slog.Logger) {
	recorder, ok := store.(registry.HistoryRecorder)
	if !ok {
		return
	}
	run := registry.Run{
		ID:           report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Mode:         string(report.Mode),
		Source:       report.Source,
		Records:      report.Stats.Records,
		Exact:        report.Stats.Exact,
		Fuzzy:        report.Stats.Fuzzy,
		Allocated:    report.Stats.Allocated,
		NewlyRetired: report.Stats.NewlyRetired,
		Warnings:     report.Warnings.Total(),
		DryRun:       report.DryRun,
	}
	if err := recorder.RecordRun(ctx, run); err != nil {
		logging.WarnWithContext(logger, "record run history failed", "history_record",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run succeeded but is missing from history"))
	}
}

func summaryAttrs(r *Report) []any {
	return logging.Args(
		logging.String(logging.FieldEventType, "sync_complete"),
		logging.Int("records", r.Stats.Records),
		logging.Int("exact", r.Stats.Exact),
		logging.Int("fuzzy", r.Stats.Fuzzy),
		logging.Int("allocated", r.Stats.Allocated),
		logging.Int("newly_retired", r.Stats.NewlyRetired),
		logging.Uint64("total_ids", r.TotalIDs),
		logging.Int("verified", r.Summary.Verified),
		logging.Int("with_ga_clicks", r.Summary.WithClicks),
		logging.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
	)
}
