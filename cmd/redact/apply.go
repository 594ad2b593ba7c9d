package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagApplyOutput string
	flagApplyReport string
)

var applyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Redact a file and write the result",
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

		out, rep, err := e.Redact(cmd.Context(), data, contentKind(args[0]))
		if err != nil {
			return err
		}

		if flagApplyOutput == "" {
			if _, err := os.Stdout.Write(out); err != nil {
				return err
			}
		} else if err := os.WriteFile(flagApplyOutput, out, 0o644); err != nil {
			return err
		}

		if flagApplyReport != "" {
			return writeReport(rep, flagApplyReport)
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&flagApplyOutput, "output", "", "write redacted content here (default stdout)")
	applyCmd.Flags().StringVar(&flagApplyReport, "report", "", "also write the audit report to this file")
	rootCmd.AddCommand(applyCmd)
}
