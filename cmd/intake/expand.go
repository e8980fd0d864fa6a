package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/archive"
)

var expandCmd = &cobra.Command{
	Use:   "expand <archive.zip>",
	Short: "List the archive members that qualify as CVs",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	members, err := archive.Expand(data, "application/zip")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tBYTES")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%d\n", m.Path, m.MediaType, m.Size())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d qualifying files\n", len(members))
	return nil
}
