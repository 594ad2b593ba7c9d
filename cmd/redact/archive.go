package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvisycom/core/pkg/archive"
	"github.com/nvisycom/core/pkg/logger"
	"github.com/nvisycom/core/pkg/report"
)

var (
	flagArchiveOutput string
	flagArchiveReport string
)

var archiveCmd = &cobra.Command{
	Use:   "archive FILE",
	Short: "Redact every entry of a ZIP, TAR or GZIP archive",
	Long: `Redact every entry of an archive, one engine job per entry.

Redacted entries are written under the output directory, preserving their
paths inside the archive. Entries that fail are skipped and noted in the
combined report; entries already written stay on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, err := buildEngine()
		if err != nil {
			return err
		}
		tp, err := setupTracing(cmd.Context(), cfg.Service)
		if err != nil {
			return err
		}
		defer tp.Shutdown(cmd.Context())

		outDir := flagArchiveOutput
		if outDir == "" {
			outDir = "redacted"
		}

		it, err := archive.Open(args[0], archive.Options{})
		if err != nil {
			return err
		}
		defer it.Close()

		log := logger.WithField("archive", args[0])
		type entryResult struct {
			Name   string         `json:"name"`
			Error  string         `json:"error,omitempty"`
			Report *report.Report `json:"report,omitempty"`
		}
		var results []entryResult

		for {
			entry, err := it.Next(cmd.Context())
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}

			out, rep, err := e.Redact(cmd.Context(), entry.Data, entry.Kind)
			if err != nil {
				log.Warn("entry failed, skipping: %s: %v", entry.Name, err)
				results = append(results, entryResult{Name: entry.Name, Error: err.Error()})
				continue
			}

			// Rooting the entry path first keeps ../ names inside outDir.
			dest := filepath.Join(outDir, filepath.Clean("/"+entry.Name))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, out, 0o644); err != nil {
				return err
			}
			log.Info("redacted %s: %d matches", entry.Name, rep.MatchCount())
			results = append(results, entryResult{Name: entry.Name, Report: rep})
		}

		if flagArchiveReport != "" {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(flagArchiveReport, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&flagArchiveOutput, "output", "", "output directory (default ./redacted)")
	archiveCmd.Flags().StringVar(&flagArchiveReport, "report", "", "write the combined per-entry report to this file")
	rootCmd.AddCommand(archiveCmd)
}
