package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"usecasesync/internal/reconcile"
	"usecasesync/internal/textutil"
)

type scoreView struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Match     bool    `json:"match"`
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "score <title-a> <title-b>",
		Short:       "Show the similarity of two titles and whether sync would reuse the ID",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			score := textutil.Similarity(args[0], args[1])
			view := scoreView{
				A:         args[0],
				B:         args[1],
				Score:     score,
				Threshold: reconcile.FuzzyThreshold,
				Match:     score > reconcile.FuzzyThreshold,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			verdict := "below threshold; a new ID would be allocated"
			if view.Match {
				verdict = "above threshold; the ID would be reused"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f (threshold %.2f, exclusive): %s\n", view.Score, view.Threshold, verdict)
			return nil
		},
	}
}
