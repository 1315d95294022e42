package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"usecasesync/internal/registry"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs (sqlite backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(cmd, func(store registry.Store, _ *registry.Registry, _ bool) error {
				recorder, ok := store.(registry.HistoryRecorder)
				if !ok {
					return registry.ErrHistoryUnsupported
				}
				runs, err := recorder.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if runs == nil {
						runs = []registry.Run{}
					}
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
					headers: []string{"Run", "Started", "Mode", "Records", "Exact", "Fuzzy", "New", "Retired", "Warnings", "Dry run", "Took"},
					aligns: []columnAlignment{
						alignLeft, alignLeft, alignLeft, alignRight, alignRight,
						alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight,
					},
				}, historyRows(runs)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

func historyRows(runs []registry.Run) [][]string {
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			shortRunID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			strconv.Itoa(run.Records),
			strconv.Itoa(run.Exact),
			strconv.Itoa(run.Fuzzy),
			strconv.Itoa(run.Allocated),
			strconv.Itoa(run.NewlyRetired),
			strconv.Itoa(run.Warnings),
			yesNo(run.DryRun),
			run.Duration().Round(time.Millisecond).String(),
		}
	}
	return rows
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
