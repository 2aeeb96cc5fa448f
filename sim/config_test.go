package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams_PinnedValues(t *testing.T) {
	// The documented defaults are pinned for reproducibility, not for
	// clinical accuracy (the toxicity coefficients are placeholders).
	p := DefaultParams()

	assert.Equal(t, 4.5, p.Hematology.ANCBaseline)
	assert.Equal(t, 1.0, p.Hematology.ANCCrit)
	assert.Equal(t, 0.15, p.Hematology.KOut)
	assert.Equal(t, 1e-5, p.Hematology.KTox5FUDose)
	assert.Equal(t, 5e-5, p.Hematology.KToxOxDose)
	assert.Equal(t, 1.0, p.Hematology.SevereNeutropeniaThreshold)
	assert.Equal(t, 850.0, p.Neuropathy.ChronicThresholdMgM2)
	assert.Equal(t, 2400.0, p.Dosing.MaxDaily5FUMgM2)
	assert.Equal(t, 85.0, p.Dosing.MaxSingleOxMgM2)
	assert.Equal(t, 14, p.Dosing.MinDaysBetweenOx)
	assert.Equal(t, 0.76, p.Utility.BaselineUtility)
	assert.Equal(t, -0.2, p.Utility.NeutropeniaPenalty)
	assert.Equal(t, -0.24, p.Utility.NeuropathyPenalty)
	assert.Equal(t, 400, p.Optimization.HorizonDays)
	assert.Equal(t, 1, p.Optimization.StepSizeDays)
	assert.Equal(t, 0.00442, p.Economics.Cost5FUMg)
	assert.Equal(t, 0.10, p.Economics.CostOxMg)
	assert.Equal(t, 250.0, p.Economics.CostInfusionDay)
	assert.Equal(t, 12.0, p.Economics.CostPumpDay)
}

func TestDefaultParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
}

func TestValidate_RejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative baseline ANC", func(p *Params) { p.Hematology.ANCBaseline = -1 }},
		{"negative turnover rate", func(p *Params) { p.Hematology.KOut = -0.1 }},
		{"negative chronic threshold", func(p *Params) { p.Neuropathy.ChronicThresholdMgM2 = -850 }},
		{"positive neutropenia penalty", func(p *Params) { p.Utility.NeutropeniaPenalty = 0.2 }},
		{"positive neuropathy penalty", func(p *Params) { p.Utility.NeuropathyPenalty = 0.1 }},
		{"zero weight", func(p *Params) { p.Dosing.PatientWeightKg = 0 }},
		{"negative height", func(p *Params) { p.Dosing.PatientHeightCm = -170 }},
		{"zero horizon", func(p *Params) { p.Optimization.HorizonDays = 0 }},
		{"negative horizon", func(p *Params) { p.Optimization.HorizonDays = -10 }},
		{"zero step", func(p *Params) { p.Optimization.StepSizeDays = 0 }},
		{"horizon not multiple of step", func(p *Params) {
			p.Optimization.HorizonDays = 401
			p.Optimization.StepSizeDays = 2
		}},
		{"zero solver tolerance", func(p *Params) { p.Solver.Tol = 0 }},
		{"zero iteration cap", func(p *Params) { p.Solver.MaxIter = 0 }},
		{"negative drug cost", func(p *Params) { p.Economics.CostOxMg = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestDerive_MostellerBSA(t *testing.T) {
	p := DefaultParams()
	d := p.Derive()

	wantBSA := math.Sqrt(170.0 * 70.0 / 3600.0)
	assert.InDelta(t, wantBSA, d.BSAM2, 1e-12)
	assert.InDelta(t, 2400.0*wantBSA, d.MaxDaily5FUMg, 1e-9)
	assert.InDelta(t, 85.0*wantBSA, d.MaxSingleOxMg, 1e-9)
	assert.InDelta(t, 850.0*wantBSA, d.ChronicNeuropathyMg, 1e-9)
	assert.Equal(t, 400, d.Steps)
}

func TestDerive_RecomputedAfterPatientOverride(t *testing.T) {
	// The absolute chronic threshold must scale with sqrt(weight*height):
	// derived values are never cached across overrides.
	p := DefaultParams()
	before := p.Derive()

	p.Dosing.PatientWeightKg = 90
	p.Dosing.PatientHeightCm = 190
	after := p.Derive()

	ratio := math.Sqrt(90.0 * 190.0 / (70.0 * 170.0))
	assert.InDelta(t, before.ChronicNeuropathyMg*ratio, after.ChronicNeuropathyMg, 1e-9)
	assert.InDelta(t, before.MaxSingleOxMg*ratio, after.MaxSingleOxMg, 1e-9)
	assert.InDelta(t, before.MaxDaily5FUMg*ratio, after.MaxDaily5FUMg, 1e-9)
}

func TestDerive_StepCount(t *testing.T) {
	p := DefaultParams()
	p.Optimization.HorizonDays = 90
	p.Optimization.StepSizeDays = 3
	require.NoError(t, p.Validate())
	assert.Equal(t, 30, p.Derive().Steps)
}
