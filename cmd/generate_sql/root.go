package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"merchantcleanup/internal/cleanup"
	"merchantcleanup/internal/config"
	"merchantcleanup/internal/metrics"
	"merchantcleanup/internal/metrics/datadog"
	"merchantcleanup/internal/metrics/prompush"
)

type rootFlags struct {
	configPath string
	input      string
	output     string
	column     string
	comma      string
	table      string
	keyColumn  string
	numeric    bool
	trimSpace  bool
	lazyQuotes bool
	validate   bool
	verbose    bool

	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "generate_sql",
		Short: "Generate merchant cleanup SQL for flagged products",
		Long: `generate_sql collects the unique "Item ID" values from a flagged product
issues CSV export and writes a fixed set of UPDATE statements that rewrite
book terminology in those products' titles and descriptions.

With no flags it reads product_issues.csv and writes merchant_cleanup.sql in
the working directory, overwriting any previous output.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cmd.ErrOrStderr(), f.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "job config JSON path; flags override its values")
	fl.StringVarP(&f.input, "input", "i", config.DefaultInputPath, "flagged product issues CSV")
	fl.StringVarP(&f.output, "output", "o", config.DefaultOutputPath, "SQL file to write (overwritten)")
	fl.StringVar(&f.column, "column", config.DefaultColumn, "CSV column holding product IDs")
	fl.StringVar(&f.comma, "comma", ",", "CSV field delimiter (single character)")
	fl.StringVar(&f.table, "table", config.DefaultTable, "table the statements update")
	fl.StringVar(&f.keyColumn, "key-column", config.DefaultKeyColumn, "column matched against the ID list")
	fl.BoolVar(&f.numeric, "numeric", false, "keep only numeric IDs and sort them by value")
	fl.BoolVar(&f.trimSpace, "trim-space", false, "trim whitespace around IDs")
	fl.BoolVar(&f.lazyQuotes, "lazy-quotes", true, "accept bare quotes inside unquoted fields")
	fl.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logs")
	fl.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (env METRICS_BACKEND)")
	fl.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fl.StringVar(&f.datadogAddr, "datadog-addr", "", "DogStatsD address (env DD_AGENT_ADDR)")

	return cmd
}

func run(cmd *cobra.Command, f rootFlags) error {
	j, err := resolveJob(cmd, f)
	if err != nil {
		return err
	}

	issues := config.ValidateJob(j)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errors.New("configuration is invalid")
	}
	if f.validate {
		slog.Info("configuration is valid", "job", j.Job)
		return nil
	}

	flush := setupMetrics(f, j.Job)
	defer flush()

	slog.Debug("job",
		"job", j.Job,
		"input", j.Source.File.Path,
		"output", j.Output.Path,
		"table", j.Generator.Table,
	)
	_, err = cleanup.Run(cmd.Context(), j, cmd.OutOrStdout())
	return err
}

// resolveJob layers explicitly set flags over the config file (if any),
// which itself is layered over config.Default.
func resolveJob(cmd *cobra.Command, f rootFlags) (config.Job, error) {
	j := config.Default()
	if f.configPath != "" {
		var err error
		if j, err = config.Load(f.configPath); err != nil {
			return config.Job{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		j.Source.File.Path = f.input
	}
	if changed("output") {
		j.Output.Path = f.output
	}
	if changed("column") {
		j.Parser.Options["column"] = f.column
	}
	if changed("comma") {
		j.Parser.Options["comma"] = f.comma
	}
	if changed("numeric") {
		j.Parser.Options["numeric"] = f.numeric
	}
	if changed("trim-space") {
		j.Parser.Options["trim_space"] = f.trimSpace
	}
	if changed("lazy-quotes") {
		j.Parser.Options["lazy_quotes"] = f.lazyQuotes
	}
	if changed("table") {
		j.Generator.Table = f.table
	}
	if changed("key-column") {
		j.Generator.KeyColumn = f.keyColumn
	}
	return j, nil
}

// setupMetrics installs the selected metrics backend and returns a function
// that flushes it. Backend choice is flag, then env, then none. A backend
// that fails to initialize is logged and metrics stay disabled.
func setupMetrics(f rootFlags, job string) func() {
	nop := func() {}

	name := firstNonEmpty(f.metricsBackend, os.Getenv("METRICS_BACKEND"), "none")
	var (
		b   metrics.Backend
		err error
	)
	switch strings.ToLower(name) {
	case "none":
		slog.Debug("metrics disabled")
		return nop
	case "pushgateway":
		url := firstNonEmpty(f.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		if err == nil {
			slog.Info("metrics enabled", "backend", name, "url", url, "job", job)
		}
	case "datadog":
		addr := firstNonEmpty(f.datadogAddr, os.Getenv("DD_AGENT_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "merchant.",
			GlobalTags: []string{"job:" + job},
		})
		if err == nil {
			slog.Info("metrics enabled", "backend", name, "addr", addr, "job", job)
		}
	default:
		slog.Warn("unknown metrics backend; metrics disabled", "backend", name)
		return nop
	}
	if err != nil {
		slog.Warn("metrics backend init failed; metrics disabled", "backend", name, "err", err)
		return nop
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			slog.Warn("metrics flush failed", "err", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
