package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/folfox-sim/folfox-sim/sim"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParams_EmptyPathReturnsDefaults(t *testing.T) {
	params, err := LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultParams(), params)
}

func TestLoadParams_FileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
dosing:
  patient_weight_kg: 82.5
optimization:
  horizon_days: 180
`)
	params, err := LoadParams(path)
	require.NoError(t, err)

	// overridden fields take the file's values
	assert.Equal(t, 82.5, params.Dosing.PatientWeightKg)
	assert.Equal(t, 180, params.Optimization.HorizonDays)
	// untouched fields keep defaults
	assert.Equal(t, 170.0, params.Dosing.PatientHeightCm)
	assert.Equal(t, 4.5, params.Hematology.ANCBaseline)
}

func TestLoadParams_ShippedDefaultFileMatchesBuiltins(t *testing.T) {
	params, err := LoadParams(filepath.Join("..", "config_default.yml"))
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultParams(), params)
}

func TestLoadParams_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
hematology:
  anc_basline: 4.5
`)
	_, err := LoadParams(path)
	assert.Error(t, err, "typos must cause errors, not fall back to defaults")
}

func TestLoadParams_MissingFile(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestApplyOverrides_Precedence(t *testing.T) {
	t.Cleanup(resetFlags)
	weight = 90
	height = 185
	horizonDays = 200
	stepDays = 2
	outputDir = "out"
	savePlots = true

	params := applyOverrides(sim.DefaultParams())
	assert.Equal(t, 90.0, params.Dosing.PatientWeightKg)
	assert.Equal(t, 185.0, params.Dosing.PatientHeightCm)
	assert.Equal(t, 200, params.Optimization.HorizonDays)
	assert.Equal(t, 2, params.Optimization.StepSizeDays)
	assert.Equal(t, "out", params.Outputs.ResultsDir)
	assert.True(t, params.Outputs.SavePlots)
}

func TestApplyOverrides_ZeroFlagsLeaveConfigAlone(t *testing.T) {
	t.Cleanup(resetFlags)
	resetFlags()

	params := applyOverrides(sim.DefaultParams())
	assert.Equal(t, sim.DefaultParams(), params)
}

func resetFlags() {
	weight = 0
	height = 0
	horizonDays = 0
	stepDays = 0
	outputDir = ""
	savePlots = false
}
