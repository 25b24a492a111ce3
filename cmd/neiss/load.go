package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neiss/internal/config"
	"neiss/internal/metrics"
	"neiss/internal/report"
	"neiss/internal/store"
)

var errNoPgURL = errors.New("postgres connection string is required (--pg or NEISS_PG_URL)")

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load an enriched Parquet file into PostgreSQL",
	Long: `Streams the Parquet file written by "neiss analyze --parquet" into the
injury_cases table using COPY, one transaction per batch.

Example:
  neiss load --file enriched.parquet --pg postgres://localhost/neiss --init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		initSchema, _ := cmd.Flags().GetBool("init")
		truncate, _ := cmd.Flags().GetBool("truncate")
		return runLoad(cmd.Context(), cfg, logger, file, initSchema, truncate)
	},
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the hospitalization and not-seen rates computed in PostgreSQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRates(cmd.Context(), cmd.OutOrStdout(), cfg, logger)
	},
}

func init() {
	loadCmd.Flags().String("file", "", "enriched Parquet file to load (required)")
	loadCmd.Flags().String("pg", "", "PostgreSQL connection string")
	loadCmd.Flags().Int("batch", 0, "rows per COPY transaction (default 500)")
	loadCmd.Flags().Bool("init", false, "create the schema before loading")
	loadCmd.Flags().Bool("truncate", false, "empty injury_cases before loading")
	_ = loadCmd.MarkFlagRequired("file")

	ratesCmd.Flags().String("pg", "", "PostgreSQL connection string")
}

func runLoad(ctx context.Context, cfg *config.Config, log *zap.Logger, file string, initSchema, truncate bool) error {
	if cfg.PgURL == "" {
		return errNoPgURL
	}
	s, err := store.Connect(ctx, cfg.PgURL, log)
	if err != nil {
		return err
	}
	defer s.Close()

	if initSchema {
		if err := s.InitSchema(ctx); err != nil {
			return err
		}
		log.Info("schema initialized")
	}
	if truncate {
		if err := s.Truncate(ctx); err != nil {
			return err
		}
	}

	n, err := s.LoadParquet(ctx, file, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	log.Info("load complete", zap.Int64("rows", n))
	return nil
}

func runRates(ctx context.Context, out io.Writer, cfg *config.Config, log *zap.Logger) error {
	if cfg.PgURL == "" {
		return errNoPgURL
	}
	s, err := store.Connect(ctx, cfg.PgURL, log)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.CountCases(ctx)
	if err != nil {
		return err
	}
	hosp, err := s.RateTable(ctx, metrics.DispositionHospitalized)
	if err != nil {
		return err
	}
	notSeen, err := s.RateTable(ctx, metrics.DispositionNotSeen)
	if err != nil {
		return err
	}
	log.Info("rates computed",
		zap.Int("rows", summary.Rows),
		zap.Int("diagnoses", len(hosp)))

	return report.WriteRates(out, summary, hosp, notSeen)
}
