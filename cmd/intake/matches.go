package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/bootstrap"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
)

var matchesCmd = &cobra.Command{
	Use:   "matches <job-id>",
	Short: "Print the stored ranking for a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatches,
}

var matchesRank bool

func init() {
	matchesCmd.Flags().BoolVar(&matchesRank, "rank", false, "Re-rank the job before printing")
	rootCmd.AddCommand(matchesCmd)
}

func runMatches(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	jobID := args[0]
	if matchesRank {
		if err := app.RankingService.RankJob(ctx, ownerID, jobID); err != nil {
			return fmt.Errorf("rank %s: %w", jobID, err)
		}
	}

	matches, err := app.RankingService.Matches(ctx, ownerID, jobID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tFILE\tMATCH\tEXP\tSKILLS\tEDU\tCERT")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", m.Rank, m.FileName, m.OverallMatch,
			m.Weights.Experience, m.Weights.Skills, m.Weights.Education, m.Weights.Certifications)
	}
	return w.Flush()
}
