package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/folfox-sim/folfox-sim/sim"
)

// LoadParams returns the default parameter set, overlaid with a YAML
// config file when path is non-empty. Decoding is strict: unknown keys in
// the file are errors, so typos never silently fall back to defaults.
func LoadParams(path string) (sim.Params, error) {
	params := sim.DefaultParams()
	if path == "" {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("reading config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&params); err != nil {
		return params, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return params, nil
}

// applyOverrides layers the CLI flag values over the loaded parameters.
// Zero flag values mean "not set". Derived BSA-scaled limits are computed
// downstream from the final weight/height, so overrides shift them
// automatically.
func applyOverrides(params sim.Params) sim.Params {
	if weight > 0 {
		params.Dosing.PatientWeightKg = weight
	}
	if height > 0 {
		params.Dosing.PatientHeightCm = height
	}
	if horizonDays > 0 {
		params.Optimization.HorizonDays = horizonDays
	}
	if stepDays > 0 {
		params.Optimization.StepSizeDays = stepDays
	}
	if outputDir != "" {
		params.Outputs.ResultsDir = outputDir
	}
	if savePlots {
		params.Outputs.SavePlots = true
	}
	return params
}
