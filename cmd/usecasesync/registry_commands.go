package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"usecasesync/internal/catalog"
	"usecasesync/internal/config"
	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
	"usecasesync/internal/reconcile"
	"usecasesync/internal/registry"
	"usecasesync/internal/textutil"
)

// errRegistryExists guards registry seed against overwriting live state.
var errRegistryExists = errors.New("registry already exists (use --force to replace it)")

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and seed the identifier registry",
	}

	registryCmd.AddCommand(newRegistryShowCommand(ctx))
	registryCmd.AddCommand(newRegistryListCommand(ctx))
	registryCmd.AddCommand(newRegistryLookupCommand(ctx))
	registryCmd.AddCommand(newRegistrySeedCommand(ctx))

	return registryCmd
}

// withRegistry opens the configured store, loads the registry and hands both
// to fn.
func (c *commandContext) withRegistry(cmd *cobra.Command, fn func(registry.Store, *registry.Registry, bool) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd, cfg)
	if err != nil {
		return err
	}
	store, err := registry.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	defer store.Close()

	reg, exists, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	return fn(store, reg, exists)
}

type registryView struct {
	Path       string `json:"path"`
	Backend    string `json:"backend"`
	Exists     bool   `json:"exists"`
	Titles     int    `json:"titles"`
	ActiveIDs  int    `json:"active_ids"`
	RetiredIDs int    `json:"retired_ids"`
	NextID     string `json:"next_id"`
	TotalIDs   uint64 `json:"total_ids"`
	Notes      string `json:"notes,omitempty"`
}

func newRegistryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(cmd, func(store registry.Store, reg *registry.Registry, exists bool) error {
				cfg, _ := ctx.ensureConfig()
				view := registryView{
					Path:       store.Path(),
					Backend:    cfg.Registry.Backend,
					Exists:     exists,
					Titles:     reg.Len(),
					ActiveIDs:  reg.KnownIDs().Minus(ident.NewSet(reg.Retired()...)).Len(),
					RetiredIDs: len(reg.Retired()),
					NextID:     reg.NextID().String(),
					TotalIDs:   reg.TotalIDs(),
					Notes:      reg.Notes(),
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Registry:    %s (%s)\n", view.Path, view.Backend)
				if !view.Exists {
					fmt.Fprintln(out, "State:       not created yet; the first sync starts at ID 1")
				}
				fmt.Fprintf(out, "Titles:      %d\n", view.Titles)
				fmt.Fprintf(out, "Active IDs:  %d\n", view.ActiveIDs)
				fmt.Fprintf(out, "Retired IDs: %d\n", view.RetiredIDs)
				fmt.Fprintf(out, "Next ID:     %s\n", view.NextID)
				fmt.Fprintf(out, "Total IDs:   %d\n", view.TotalIDs)
				return nil
			})
		},
	}
}

type registryRow struct {
	ID      ident.ID `json:"id"`
	Title   string   `json:"title"`
	Retired bool     `json:"retired"`
}

func newRegistryListCommand(ctx *commandContext) *cobra.Command {
	var retiredOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every title and its identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(cmd, func(_ registry.Store, reg *registry.Registry, _ bool) error {
				var rows []registryRow
				for _, b := range reg.Entries() {
					retired := reg.IsRetired(b.ID)
					if retiredOnly && !retired {
						continue
					}
					rows = append(rows, registryRow{ID: b.ID, Title: b.Title, Retired: retired})
				}
				if ctx.jsonOutput() {
					if rows == nil {
						rows = []registryRow{}
					}
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Registry is empty")
					return nil
				}
				cells := make([][]string, len(rows))
				for i, r := range rows {
					cells[i] = []string{r.ID.String(), r.Title, textutil.Ternary(r.Retired, "retired", "active")}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
					headers: []string{"ID", "Title", "Status"},
					aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
					caption: fmt.Sprintf("%d titles, next ID %s", len(rows), reg.NextID()),
				}, cells))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&retiredOnly, "retired", false, "Only list titles whose ID is retired")
	return cmd
}

type lookupMatch struct {
	Title string   `json:"title"`
	ID    ident.ID `json:"id"`
	Score float64  `json:"score"`
}

type lookupResult struct {
	Query   string        `json:"query"`
	Exact   *lookupMatch  `json:"exact,omitempty"`
	Similar []lookupMatch `json:"similar"`
}

func newRegistryLookupCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "lookup <title>",
		Short: "Find the identifier for a title, exactly or by similarity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withRegistry(cmd, func(_ registry.Store, reg *registry.Registry, _ bool) error {
				result := lookupTitle(reg, query, limit)
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if result.Exact != nil {
					fmt.Fprintf(out, "%s\t%s\n", result.Exact.ID, result.Exact.Title)
					return nil
				}
				if len(result.Similar) == 0 {
					return fmt.Errorf("no title matches %q", query)
				}
				cells := make([][]string, len(result.Similar))
				for i, m := range result.Similar {
					verdict := textutil.Ternary(m.Score > reconcile.FuzzyThreshold, "reused", "below threshold")
					cells[i] = []string{m.ID.String(), m.Title, strconv.FormatFloat(m.Score, 'f', 4, 64), verdict}
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					headers: []string{"ID", "Title", "Score", "Sync would"},
					aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
				}, cells))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum similar titles to show")
	return cmd
}

// lookupTitle resolves query exactly, or ranks the registry's titles by
// similarity, best first with ties broken by ID.
func lookupTitle(reg *registry.Registry, query string, limit int) lookupResult {
	result := lookupResult{Query: query, Similar: []lookupMatch{}}
	if id, ok := reg.ResolveExact(query); ok {
		result.Exact = &lookupMatch{Title: query, ID: id, Score: 1}
		return result
	}
	for _, b := range reg.Entries() {
		result.Similar = append(result.Similar, lookupMatch{Title: b.Title, ID: b.ID, Score: textutil.Similarity(query, b.Title)})
	}
	sort.SliceStable(result.Similar, func(i, j int) bool {
		return result.Similar[i].Score > result.Similar[j].Score
	})
	if limit > 0 && len(result.Similar) > limit {
		result.Similar = result.Similar[:limit]
	}
	return result
}

func newRegistrySeedCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Build the registry from the current catalog",
		Long: "Create the registry from the IDs already published in the catalog, so\n" +
			"switching from snapshot to registry mode keeps every identifier.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := seedRegistry(cmd.Context(), ctx, cmd, cfg, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seeded %d titles from %s; next ID %s, %d retired\n",
				reg.Len(), cfg.Paths.Catalog, reg.NextID(), len(reg.Retired()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing registry")
	return cmd
}

func seedRegistry(ctx context.Context, cc *commandContext, cmd *cobra.Command, cfg *config.Config, force bool) (*registry.Registry, error) {
	logger, err := cc.logger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	lock := registry.NewLock(cfg.LockTarget())
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	defer lock.Release()

	store, err := registry.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer store.Close()

	if _, exists, err := store.Load(ctx); err != nil && !force {
		return nil, fmt.Errorf("load registry: %w", err)
	} else if exists && !force {
		return nil, fmt.Errorf("%w: %s", errRegistryExists, store.Path())
	}

	doc, found, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no catalog at %s to seed from", cfg.Paths.Catalog)
	}
	reg, err := registry.Seed(doc.Bindings(), doc.RetiredIDs(), doc.TotalIDs())
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, reg); err != nil {
		return nil, fmt.Errorf("save registry: %w", err)
	}
	logging.NewComponentLogger(logger, "registry").Info("registry seeded from catalog",
		logging.String(logging.FieldEventType, "registry_seed"),
		logging.String("catalog", cfg.Paths.Catalog),
		logging.Int("titles", reg.Len()),
		logging.String("next_id", reg.NextID().String()))
	return reg, nil
}
