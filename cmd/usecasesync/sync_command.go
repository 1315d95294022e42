package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"usecasesync/internal/config"
	"usecasesync/internal/syncrun"
)

type syncFlags struct {
	source     string
	catalog    string
	registry   string
	mode       string
	dryRun     bool
	allowEmpty bool
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the catalog from the source export",
		Long: "Read the source spreadsheet, assign stable IDs by exact then fuzzy title\n" +
			"matching, write the catalog and persist the registry.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applySyncFlags(*base, flags)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			report, err := syncrun.Run(cmd.Context(), syncrun.Options{
				Config:     cfg,
				Logger:     logger,
				DryRun:     flags.dryRun,
				AllowEmpty: flags.allowEmpty,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			renderSyncSummary(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "Source CSV or XLSX export (overrides paths.source)")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "Catalog JSON to write (overrides paths.catalog)")
	cmd.Flags().StringVar(&flags.registry, "registry", "", "Registry JSON file (overrides paths.registry)")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Identity mode: registry or snapshot")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Reconcile without writing anything")
	cmd.Flags().BoolVar(&flags.allowEmpty, "allow-empty", false, "Accept a source with no rows, retiring every ID")
	return cmd
}

// applySyncFlags overlays command flags on a copy of the loaded config.
func applySyncFlags(cfg config.Config, flags syncFlags) (*config.Config, error) {
	overrides := []struct {
		value  string
		target *string
	}{
		{flags.source, &cfg.Paths.Source},
		{flags.catalog, &cfg.Paths.Catalog},
		{flags.registry, &cfg.Paths.Registry},
	}
	for _, o := range overrides {
		value := strings.TrimSpace(o.value)
		if value == "" {
			continue
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return nil, err
		}
		*o.target = expanded
	}
	if mode := strings.ToLower(strings.TrimSpace(flags.mode)); mode != "" {
		cfg.Registry.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &cfg, nil
}
