package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/config"
	"github.com/nvisycom/core/pkg/detector"
	"github.com/nvisycom/core/pkg/health"
	"github.com/nvisycom/core/pkg/tokenizer"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configuration and built-in registries are fit to run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagPolicy)
		if err != nil {
			return err
		}
		toks := tokenizer.NewRegistry()
		tokenizer.RegisterDefaultsOn(toks)

		hc := health.NewHealthChecker(10 * time.Second)
		hc.AddChecker(health.TaxonomyChecker(category.Default()))
		hc.AddChecker(health.TokenizerChecker(toks))
		hc.AddChecker(health.DetectorChecker(detector.DefaultRegistry()))

		// A policy that fails to build is reported through the same
		// check output, so one report covers everything.
		policy, perr := cfg.Policy()
		if perr != nil {
			hc.AddChecker(health.NewChecker("policy", true, func(ctx context.Context) health.CheckResult {
				return health.CheckResult{
					Status:  health.StatusUnhealthy,
					Message: "policy failed to build",
					Error:   perr.Error(),
				}
			}))
		} else {
			hc.AddChecker(health.PolicyChecker(policy, cfg.HashKey != ""))
		}

		rep := hc.Check(cmd.Context(), cfg.Service, version)
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		os.Stdout.Write(append(data, '\n'))

		if rep.Status != health.StatusHealthy {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
