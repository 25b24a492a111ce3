package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neiss/internal/chart"
	"neiss/internal/config"
	"neiss/internal/dataset"
)

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"NEISS2014.csv": `CPSC Case #,trmt_date,psu,weight,stratum,age,sex,race,body_part,diag,disposition,narrative
1001,01/01/2014,61,15.7,V,10,Female,White,75,57,1,FELL OFF SKATEBOARD AND HIT HEAD
1002,01/01/2014,61,15.7,V,206,Male,White,76,59,4,CUT FACE ON TABLE
1003,01/02/2014,61,15.7,V,45,Male,Black,75,71,6,HEAD PAIN
1004,01/02/2014,61,15.7,V,70,Female,White,99,57,1,"SLIPPED, SKATE BOARD"
`,
		"BodyParts.csv":      "BodyPart,Code\nHead,75\nFace,76\n",
		"DiagnosisCodes.csv": "Code,Diagnosis\n57,Fracture\n59,Laceration\n71,Other/Not Stated\n",
		"Disposition.csv": `Code,Disposition
1,"Treated/Examined and Released"
4,"Treated and admitted for hospitalization (within same facility)"
6,"Left without being seen/Left against medical advice"
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load()
	require.NoError(t, err)
	c.DataDir = writeInputs(t)
	c.ChartsDir = filepath.Join(t.TempDir(), "charts")
	return c
}

func TestRunAnalyze(t *testing.T) {
	c := testConfig(t)
	out := t.TempDir()
	c.Parquet = filepath.Join(out, "enriched.parquet")
	c.Workbook = filepath.Join(out, "neiss.xlsx")

	var buf bytes.Buffer
	require.NoError(t, runAnalyze(&buf, c, zap.NewNop()))
	report := buf.String()

	assert.Contains(t, report, "Total number of records in NEISS data: 4")
	assert.Contains(t, report, "Unique cases: 4")
	assert.Contains(t, report, "Female: 100.00%")
	assert.Contains(t, report, "Mean: 40 years")
	assert.Contains(t, report, "not stated or marked as other: 25.00")

	for _, name := range []string{chart.AgeGroupFile, chart.AgeGroupDiagnosisFile} {
		assert.FileExists(t, filepath.Join(c.ChartsDir, name))
	}
	assert.FileExists(t, c.Workbook)

	rows, err := dataset.ReadEnrichedParquet(c.Parquet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Nil(t, rows[3].BodyPartName, "unmatched body part stays null")
}

func TestRunAnalyzeNoCharts(t *testing.T) {
	c := testConfig(t)
	c.NoCharts = true

	var buf bytes.Buffer
	require.NoError(t, runAnalyze(&buf, c, zap.NewNop()))
	assert.NoDirExists(t, c.ChartsDir)
}

func TestRunAnalyzeMissingInput(t *testing.T) {
	c := testConfig(t)
	c.RecordsFile = "missing.csv"

	var buf bytes.Buffer
	err := runAnalyze(&buf, c, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
	assert.Empty(t, buf.String(), "no partial report on load failure")
}

func TestRunLoadRequiresConnection(t *testing.T) {
	c := testConfig(t)
	c.PgURL = ""
	err := runLoad(context.Background(), c, zap.NewNop(), "enriched.parquet", false, false)
	assert.ErrorIs(t, err, errNoPgURL)

	var buf bytes.Buffer
	err = runRates(context.Background(), &buf, c, zap.NewNop())
	assert.ErrorIs(t, err, errNoPgURL)
}

func TestAnalyzeCommandFlagsOverrideEnv(t *testing.T) {
	dataDir := writeInputs(t)
	t.Setenv("NEISS_DATA_DIR", filepath.Join(t.TempDir(), "wrong"))
	t.Setenv("NEISS_LOG_LEVEL", "error")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"analyze", "--data-dir", dataDir, "--no-charts"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.True(t, cfg.NoCharts)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Contains(t, buf.String(), "Total number of records in NEISS data: 4")
}

func TestRunAnalyzeFromParquet(t *testing.T) {
	c := testConfig(t)
	c.NoCharts = true
	c.Parquet = filepath.Join(t.TempDir(), "enriched.parquet")

	var fromCSV bytes.Buffer
	require.NoError(t, runAnalyze(&fromCSV, c, zap.NewNop()))

	again := testConfig(t)
	again.NoCharts = true
	again.DataDir = filepath.Join(t.TempDir(), "no-csv-here")
	again.InputParquet = c.Parquet

	var fromParquet bytes.Buffer
	require.NoError(t, runAnalyze(&fromParquet, again, zap.NewNop()))
	assert.Equal(t, fromCSV.String(), fromParquet.String())
}
