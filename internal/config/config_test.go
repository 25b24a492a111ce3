package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "charts", cfg.ChartsDir)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.NoError(t, cfg.Validate())

	p := cfg.InputPaths()
	assert.Equal(t, filepath.Join("data", "NEISS2014.csv"), p.Records)
	assert.Equal(t, filepath.Join("data", "BodyParts.csv"), p.BodyParts)
	assert.Equal(t, filepath.Join("data", "DiagnosisCodes.csv"), p.Diagnoses)
	assert.Equal(t, filepath.Join("data", "Disposition.csv"), p.Dispositions)
}

func TestLoadFromEnv(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "records.csv")
	t.Setenv("NEISS_DATA_DIR", "/srv/neiss")
	t.Setenv("NEISS_RECORDS_FILE", abs)
	t.Setenv("NEISS_BATCH_SIZE", "50")
	t.Setenv("NEISS_NO_CHARTS", "true")
	t.Setenv("NEISS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.BatchSize)
	assert.True(t, cfg.NoCharts)
	assert.Equal(t, "debug", cfg.LogLevel)

	p := cfg.InputPaths()
	assert.Equal(t, abs, p.Records)
	assert.Equal(t, filepath.Join("/srv/neiss", "BodyParts.csv"), p.BodyParts)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("NEISS_BATCH_SIZE", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg.BatchSize = 10
	cfg.ChartsDir = ""
	assert.Error(t, cfg.Validate())

	cfg.NoCharts = true
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsParquetOverwrite(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.InputParquet = "enriched.parquet"
	cfg.Parquet = "enriched.parquet"
	assert.Error(t, cfg.Validate())

	cfg.Parquet = "copy.parquet"
	assert.NoError(t, cfg.Validate())
}
