// Command redact scans and redacts sensitive data in files and archives.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvisycom/core/pkg/config"
	"github.com/nvisycom/core/pkg/core"
	"github.com/nvisycom/core/pkg/engine"
	"github.com/nvisycom/core/pkg/logger"
	"github.com/nvisycom/core/pkg/tracing"
)

const version = "1.0.0"

var (
	flagPolicy  string
	flagKind    string
	flagWorkers int
	flagTrace   string
)

var rootCmd = &cobra.Command{
	Use:           "redact",
	Short:         "Detect and redact sensitive data in structured and plain content",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "policy/config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flagKind, "kind", "", "content kind override (text, json, xml, yaml, toml, csv, log)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "detection worker count (0 = all CPUs)")
	rootCmd.PersistentFlags().StringVar(&flagTrace, "trace-endpoint", "", "OTLP/HTTP collector endpoint (empty = tracing off)")
}

// buildEngine assembles an engine from the policy file and flags.
func buildEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load(flagPolicy)
	if err != nil {
		return nil, nil, err
	}

	logger.ConfigureDefault(&logger.Config{
		Level:   logger.ParseLogLevel(cfg.Logging.Level),
		Format:  logFormat(cfg.Logging.Format),
		Output:  os.Stderr,
		Service: cfg.Service,
		Version: version,
	})

	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, nil, err
	}

	workers := cfg.Workers
	if flagWorkers > 0 {
		workers = flagWorkers
	}

	e, err := engine.New(engine.Config{
		Policy:        policy,
		MinConfidence: cfg.MinConfidence,
		Parallelism:   workers,
		UnitTimeout:   timeout,
		TokenKey:      keyBytes(cfg.TokenKey),
		HashKey:       keyBytes(cfg.HashKey),
		Preview:       cfg.Preview,
	})
	if err != nil {
		return nil, nil, err
	}
	return e, cfg, nil
}

func keyBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}

func logFormat(s string) logger.LogFormat {
	if s == "text" {
		return logger.TextFormat
	}
	return logger.JSONFormat
}

// contentKind resolves the kind for a file from the flag or its extension.
func contentKind(path string) core.ContentKind {
	if flagKind != "" {
		return core.ContentKind(flagKind)
	}
	return core.KindFromPath(path)
}

// setupTracing installs the OTLP exporter when an endpoint is given.
func setupTracing(ctx context.Context, service string) (*tracing.Provider, error) {
	if flagTrace == "" {
		return nil, nil
	}
	cfg := tracing.DefaultConfig(service, version)
	cfg.Enabled = true
	cfg.Endpoint = flagTrace
	return tracing.Setup(ctx, cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "redact:", err)
		os.Exit(1)
	}
}
