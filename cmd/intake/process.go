package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/archive"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/bootstrap"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/intake"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
)

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Score files through the extraction endpoint, optionally committing them",
	Long:  "Expands archives, sends every qualifying document to the extraction endpoint with bounded concurrency and prints an itemized report. With --commit, processed documents are uploaded and recorded.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

var (
	processCommit      bool
	processConcurrency int
)

func init() {
	processCmd.Flags().BoolVar(&processCommit, "commit", false, "Upload and record processed documents")
	processCmd.Flags().IntVarP(&processConcurrency, "concurrency", "c", 0, "Concurrent extraction calls (default INTAKE_MAX_IN_FLIGHT)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	uploads, err := readUploads(args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if processConcurrency > 0 {
		cfg.IntakeMaxInFlight = processConcurrency
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return processUploads(ctx, cmd.OutOrStdout(), app.IntakeService, uploads, processCommit)
}

func readUploads(paths []string) ([]intake.Upload, error) {
	uploads := make([]intake.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		name := filepath.Base(p)
		mediaType := archive.MediaTypeFor(name)
		if archive.IsArchive(name, "") {
			mediaType = "application/zip"
		}
		uploads = append(uploads, intake.Upload{Name: name, MediaType: mediaType, Data: data})
	}
	return uploads, nil
}

func processUploads(ctx context.Context, out io.Writer, svc *intake.Service, uploads []intake.Upload, commit bool) error {
	added := svc.Workspace.Add(ownerID, uploads)
	for _, s := range added.Skipped {
		fmt.Fprintf(out, "skipped %s: %s\n", s.FileName, s.Reason)
	}
	if len(added.Added) == 0 {
		return fmt.Errorf("no qualifying documents")
	}

	report := svc.Process(ctx, ownerID, nil, func(e intake.Event) {
		if e.Kind == intake.EventFailed && e.Document != nil {
			fmt.Fprintf(out, "failed %s: %s\n", e.Document.Name, e.Message)
		}
	})

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSCORE\tMATCH")
	for _, d := range report.Succeeded {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f%%\n", d.Name, d.Score, d.MatchPercentage)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, report.Summary())
	if report.Outcome == intake.OutcomeNothingProcessed || !commit {
		return nil
	}

	cr := svc.Commit(ctx, ownerID, nil)
	for _, d := range cr.Committed {
		fmt.Fprintf(out, "stored %s as %s\n", d.Name, d.StorageKey)
	}
	for _, f := range cr.Failed {
		fmt.Fprintf(out, "commit failed %s: %s\n", f.FileName, f.Message)
	}
	fmt.Fprintf(out, "committed %d of %d files\n", len(cr.Committed), cr.Attempted)
	return nil
}
