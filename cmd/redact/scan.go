package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvisycom/core/pkg/report"
)

var flagScanReport string

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Detect sensitive data without modifying anything",
	Args:  cobra.ExactArgs(1),
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

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		rep, err := e.Detect(cmd.Context(), data, contentKind(args[0]))
		if err != nil {
			return err
		}
		return writeReport(rep, flagScanReport)
	},
}

func init() {
	scanCmd.Flags().StringVar(&flagScanReport, "report", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(scanCmd)
}

// writeReport emits a report as indented JSON to a file or stdout.
func writeReport(rep *report.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
