// Command timeclock turns time-clock punch exports into per-day attendance
// reports. main only wires real dependencies; the work happens in run, which
// tests drive through Deps.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timeclock/internal/config"
	"timeclock/internal/datasource"
	"timeclock/internal/datasource/file"
	"timeclock/internal/datasource/httpds"
	"timeclock/internal/logging"
	"timeclock/internal/metrics"
	"timeclock/internal/metrics/datadog"
	"timeclock/internal/metrics/prompush"
)

// Deps holds the boundaries run would otherwise hard-code.
type Deps struct {
	// Source resolves an input reference.
	Source func(ref string, client *httpds.Client) datasource.Source

	NewLogger func(cfg config.Config) (*zap.Logger, error)

	// NewMetrics returns the backend for cfg, or nil for none.
	NewMetrics func(cfg config.Config, runID string) (metrics.Backend, error)

	NewRunID func() string
}

func defaultDeps() Deps {
	return Deps{
		Source: datasource.For,
		NewLogger: func(cfg config.Config) (*zap.Logger, error) {
			return logging.New(cfg.LogLevel, cfg.LogJSON)
		},
		NewMetrics: newMetricsBackend,
		NewRunID:   uuid.NewString,
	}
}

func newMetricsBackend(cfg config.Config, runID string) (metrics.Backend, error) {
	switch cfg.MetricsBackend {
	case config.MetricsPrompush:
		b, err := prompush.NewBackend(prompush.DefaultJob, cfg.PushgatewayURL, runID)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.MetricsDatadog:
		b, err := datadog.NewBackend(datadog.Config{
			Addr: cfg.DatadogAddr,
			Tags: []string{"service:timeclock", "run_id:" + runID},
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, nil
}

func newRootCmd(deps Deps, getenv func(string) string, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "timeclock",
		Short:         "Attendance reports from fixed-width time-clock exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	cfg := config.Bind(root.PersistentFlags(), getenv)
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return config.ApplyFile(cmd.Flags(), getenv, cfg.ConfigFile)
	}

	var inputsList string
	reportCmd := &cobra.Command{
		Use:   "report [file or URL]...",
		Short: "Parse exports and print one report per input",
		Long: `Each input is parsed on its own: punches are grouped per identifier and
day, lunch and worked time are computed, and days with missing punches or
a lunch above the allowance are listed. Inputs may be local paths or
http(s) URLs; --inputs-list adds one reference per line from a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(args, inputsList)
			if err != nil {
				return err
			}
			return run(cmd.Context(), *cfg, deps, inputs, cmd.OutOrStdout())
		},
	}
	reportCmd.Flags().StringVar(&inputsList, "inputs-list", "", "file listing inputs, one per line (# comments)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return validate(*cfg, cmd.OutOrStdout())
		},
	}

	root.AddCommand(reportCmd, validateCmd)
	return root
}

// collectInputs appends the entries of listPath (when set) to args.
func collectInputs(args []string, listPath string) ([]string, error) {
	inputs := append([]string(nil), args...)
	if listPath != "" {
		list, err := file.ReadList(listPath)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, list...)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs: pass files or URLs, or --inputs-list")
	}
	return inputs, nil
}

func validate(cfg config.Config, w io.Writer) error {
	issues := config.Validate(cfg)
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "config ok")
		return err
	}
	for _, iss := range issues {
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message); err != nil {
			return err
		}
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("config has errors")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps(), os.Getenv, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "timeclock:", err)
		stop()
		os.Exit(1)
	}
}
