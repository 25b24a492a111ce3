package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neiss/internal/chart"
	"neiss/internal/config"
	"neiss/internal/dataset"
	"neiss/internal/export"
	"neiss/internal/metrics"
	"neiss/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the injury report and render the age-group charts",
	Long: `Loads the four CSV inputs from the data directory, prints the report to
stdout and saves the two age-group charts as PNG files.

Example:
  neiss analyze --data-dir ./data --charts-dir ./charts --xlsx neiss.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.OutOrStdout(), cfg, logger)
	},
}

func init() {
	analyzeCmd.Flags().String("data-dir", "", "directory holding the input CSV files (default \"data\")")
	analyzeCmd.Flags().String("charts-dir", "", "directory the PNG charts are written to (default \"charts\")")
	analyzeCmd.Flags().Bool("no-charts", false, "skip chart rendering")
	analyzeCmd.Flags().String("from-parquet", "", "analyze an enriched Parquet file instead of the CSV inputs")
	analyzeCmd.Flags().String("parquet", "", "also write the enriched rows to this Parquet file")
	analyzeCmd.Flags().String("xlsx", "", "also write the results to this Excel workbook")
	analyzeCmd.Flags().Int("batch", 0, "rows per Parquet write batch (default 500)")
}

// runAnalyze is the whole analysis pipeline: load, enrich, compute, report,
// then the optional outputs.
func runAnalyze(out io.Writer, cfg *config.Config, log *zap.Logger) error {
	var rows []dataset.EnrichedRecord
	var err error
	if cfg.InputParquet != "" {
		log.Info("loading enriched parquet", zap.String("path", cfg.InputParquet))
		rows, err = dataset.ReadEnrichedParquet(cfg.InputParquet)
		if err != nil {
			return err
		}
		log.Info("enriched rows read", zap.Int("rows", len(rows)))
	} else {
		rows, err = loadAndEnrich(cfg, log)
		if err != nil {
			return err
		}
	}

	res := metrics.Compute(rows)
	if res.SexShares == nil {
		log.Info("no skateboard-related narratives", zap.Error(metrics.ErrEmptyMatchSet))
	}

	if err := report.Write(out, res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	renderCfg := chart.DefaultRenderConfig()
	if !cfg.NoCharts {
		files, err := chart.Render(cfg.ChartsDir, res, renderCfg)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		log.Info("charts saved", zap.Strings("files", files))
	}

	if cfg.Parquet != "" {
		n, err := export.WriteParquet(cfg.Parquet, rows, cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("write parquet: %w", err)
		}
		log.Info("parquet written", zap.String("path", cfg.Parquet), zap.Int("rows", n))
	}

	if cfg.Workbook != "" {
		if err := export.WriteWorkbook(cfg.Workbook, res, renderCfg); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		log.Info("workbook written", zap.String("path", cfg.Workbook))
	}
	return nil
}

func loadAndEnrich(cfg *config.Config, log *zap.Logger) ([]dataset.EnrichedRecord, error) {
	paths := cfg.InputPaths()
	log.Info("loading dataset",
		zap.String("records", paths.Records),
		zap.String("body_parts", paths.BodyParts),
		zap.String("diagnoses", paths.Diagnoses),
		zap.String("dispositions", paths.Dispositions))

	ds, err := dataset.Load(paths)
	if err != nil {
		return nil, err
	}
	for _, table := range []*dataset.CodeTable{ds.BodyParts, ds.Diagnoses, ds.Dispositions} {
		if dups := table.Duplicates(); len(dups) > 0 {
			log.Warn("duplicate codes in lookup table, joined rows fan out",
				zap.String("table", table.Name),
				zap.Int32s("codes", dups))
		}
	}

	rows, stats := dataset.Enrich(ds)
	log.Info("enriched records",
		zap.Int("records", len(ds.Records)),
		zap.Int("rows", len(rows)),
		zap.Int("unmatched_body_part", stats.UnmatchedBodyPart),
		zap.Int("unmatched_diagnosis", stats.UnmatchedDiagnosis),
		zap.Int("unmatched_disposition", stats.UnmatchedDisposition))
	return rows, nil
}
