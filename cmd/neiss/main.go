// Command neiss analyses the NEISS injury sample: it loads the case records
// and code tables, prints the summary report, renders the age-group charts
// and optionally exports or loads the enriched rows into PostgreSQL.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neiss/internal/config"
	"neiss/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "neiss",
	Short: "Exploratory analysis of NEISS emergency department injury data",
	Long: `neiss loads the NEISS case sample and its code tables, joins the labels
onto every case and answers a fixed set of questions: most and least injured
body parts, skateboard injuries by sex and age, hospitalization and not-seen
rates per diagnosis, and the age-group breakdown.

Settings come from NEISS_* environment variables; flags override them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	rootCmd.AddCommand(analyzeCmd, loadCmd, ratesCmd)
}

// setup loads the env configuration, applies flag overrides and builds the
// run logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}
	cfg = c
	logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
	return nil
}

// applyFlags copies every flag the user set explicitly onto c.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	fs := cmd.Flags()

	stringFlags := map[string]*string{
		"log-level":    &c.LogLevel,
		"log-format":   &c.LogFormat,
		"data-dir":     &c.DataDir,
		"charts-dir":   &c.ChartsDir,
		"parquet":      &c.Parquet,
		"from-parquet": &c.InputParquet,
		"xlsx":         &c.Workbook,
		"pg":           &c.PgURL,
	}
	for name, dst := range stringFlags {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return fmt.Errorf("read flag --%s: %w", name, err)
		}
		*dst = v
	}

	if fs.Lookup("no-charts") != nil && fs.Changed("no-charts") {
		v, err := fs.GetBool("no-charts")
		if err != nil {
			return fmt.Errorf("read flag --no-charts: %w", err)
		}
		c.NoCharts = v
	}
	if fs.Lookup("batch") != nil && fs.Changed("batch") {
		v, err := fs.GetInt("batch")
		if err != nil {
			return fmt.Errorf("read flag --batch: %w", err)
		}
		c.BatchSize = v
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("neiss failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
