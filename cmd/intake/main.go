// Command intake runs the CV intake pipeline and job tools from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:           "intake",
	Short:         "CV intake and job matching tools",
	Long:          "Expands CV archives, scores documents through the extraction endpoint, commits them to storage and inspects job rankings.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var ownerID string

func init() {
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "cli", "Owner id used for stored records and jobs")
}

func main() {
	telemetry.Configure(telemetry.OptionsFromEnv())
	defer telemetry.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
