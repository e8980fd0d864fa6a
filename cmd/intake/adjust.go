package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust <field> <value>",
	Short: "Check a weight change against the 100 point budget",
	Long:  "Applies one weight change to the given weights. Increases that would push the total above 100 are rejected; decreases are always allowed.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdjust,
}

var adjustWeights jobs.Weights

func init() {
	adjustCmd.Flags().IntVar(&adjustWeights.Experience, "experience", 0, "Current experience weight")
	adjustCmd.Flags().IntVar(&adjustWeights.Skills, "skills", 0, "Current skills weight")
	adjustCmd.Flags().IntVar(&adjustWeights.Education, "education", 0, "Current education weight")
	adjustCmd.Flags().IntVar(&adjustWeights.Certifications, "certifications", 0, "Current certifications weight")
	rootCmd.AddCommand(adjustCmd)
}

func runAdjust(cmd *cobra.Command, args []string) error {
	field, err := jobs.ParseField(args[0])
	if err != nil {
		return err
	}
	var value int
	if _, err := fmt.Sscanf(args[1], "%d", &value); err != nil {
		return fmt.Errorf("value must be an integer: %q", args[1])
	}

	out := cmd.OutOrStdout()
	next, err := jobs.AdjustWeight(adjustWeights, field, value)
	if errors.Is(err, jobs.ErrWeightBudget) {
		fmt.Fprintf(out, "rejected: %s=%d would exceed %d (max %d)\n", field, value, jobs.MaxTotal, adjustWeights.Remaining()+adjustWeights.Get(field))
		printWeights(cmd, adjustWeights)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "accepted: %s=%d\n", field, value)
	printWeights(cmd, next)
	return nil
}

func printWeights(cmd *cobra.Command, w jobs.Weights) {
	fmt.Fprintf(cmd.OutOrStdout(), "experience=%d skills=%d education=%d certifications=%d total=%d\n",
		w.Experience, w.Skills, w.Education, w.Certifications, w.Sum())
}
