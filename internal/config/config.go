package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"neiss/internal/dataset"
)

// Prefix is the environment variable prefix, e.g. NEISS_DATA_DIR.
const Prefix = "NEISS"

// Config is the run configuration. Every field can be set from the
// environment; the CLI overrides individual fields from flags.
type Config struct {
	DataDir         string `envconfig:"DATA_DIR" default:"data"`
	RecordsFile     string `envconfig:"RECORDS_FILE" default:"NEISS2014.csv"`
	BodyPartsFile   string `envconfig:"BODY_PARTS_FILE" default:"BodyParts.csv"`
	DiagnosisFile   string `envconfig:"DIAGNOSIS_FILE" default:"DiagnosisCodes.csv"`
	DispositionFile string `envconfig:"DISPOSITION_FILE" default:"Disposition.csv"`
	// InputParquet, when set, replaces the four CSV inputs with a previously
	// exported enriched Parquet file.
	InputParquet string `envconfig:"INPUT_PARQUET"`

	ChartsDir string `envconfig:"CHARTS_DIR" default:"charts"`
	NoCharts  bool   `envconfig:"NO_CHARTS" default:"false"`
	Parquet   string `envconfig:"PARQUET"`
	Workbook  string `envconfig:"XLSX"`

	PgURL     string `envconfig:"PG_URL"`
	BatchSize int    `envconfig:"BATCH_SIZE" default:"500"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.InputParquet != "" && c.InputParquet == c.Parquet {
		return fmt.Errorf("parquet output %s would overwrite the parquet input", c.Parquet)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if !c.NoCharts && c.ChartsDir == "" {
		return fmt.Errorf("charts dir must not be empty when charts are enabled")
	}
	return nil
}

// InputPaths resolves the four input files against DataDir. Absolute file
// settings are used as given.
func (c *Config) InputPaths() dataset.Paths {
	return dataset.Paths{
		Records:      c.resolve(c.RecordsFile),
		BodyParts:    c.resolve(c.BodyPartsFile),
		Diagnoses:    c.resolve(c.DiagnosisFile),
		Dispositions: c.resolve(c.DispositionFile),
	}
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
