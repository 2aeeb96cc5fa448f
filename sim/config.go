package sim

import (
	"fmt"
	"math"
)

// HematologyParams groups neutrophil dynamics and toxicity parameters.
type HematologyParams struct {
	ANCBaseline                float64 `yaml:"anc_baseline"`                 // baseline absolute neutrophil count (10^9/L)
	ANCCrit                    float64 `yaml:"anc_crit"`                     // critical ANC safety floor (10^9/L)
	KOut                       float64 `yaml:"k_out"`                        // neutrophil turnover rate constant (1/day)
	KTox5FUDose                float64 `yaml:"k_tox_5fu_dose"`               // toxicity coefficient per mg of 5-FU (calibration placeholder)
	KToxOxDose                 float64 `yaml:"k_tox_ox_dose"`                // toxicity coefficient per mg of oxaliplatin (calibration placeholder)
	SevereNeutropeniaThreshold float64 `yaml:"severe_neutropenia_threshold"` // ANC threshold for the severe-neutropenia flag (10^9/L)
}

// NeuropathyParams groups oxaliplatin-induced peripheral neuropathy parameters.
type NeuropathyParams struct {
	ChronicThresholdMgM2 float64 `yaml:"chronic_neuropathy_threshold_mg_m2"` // cumulative-dose threshold for chronic neuropathy (mg/m2)
}

// DosingParams groups chemotherapy dosing limits and patient anthropometrics.
type DosingParams struct {
	MaxDaily5FUMgM2  float64 `yaml:"max_daily_5fu_mg_m2"` // max 5-FU infusion rate (mg/m2/day)
	MaxSingleOxMgM2  float64 `yaml:"max_single_ox_mg_m2"` // max single oxaliplatin bolus (mg/m2)
	MinDaysBetweenOx int     `yaml:"min_days_between_ox"` // minimum days between oxaliplatin boluses
	PatientWeightKg  float64 `yaml:"patient_weight_kg"`   // patient weight (kg)
	PatientHeightCm  float64 `yaml:"patient_height_cm"`   // patient height (cm)
}

// UtilityParams groups the simplified additive utility model.
type UtilityParams struct {
	BaselineUtility    float64 `yaml:"baseline_utility"`    // utility with no active side effects
	NeutropeniaPenalty float64 `yaml:"neutropenia_penalty"` // additive penalty while severely neutropenic (non-positive)
	NeuropathyPenalty  float64 `yaml:"neuropathy_penalty"`  // additive penalty while any neuropathy is active (non-positive)
}

// EconomicsParams groups drug and administration costs.
type EconomicsParams struct {
	Cost5FUMg         float64 `yaml:"cost_5fu_mg"`         // 5-FU cost per mg
	CostOxMg          float64 `yaml:"cost_ox_mg"`          // oxaliplatin cost per mg
	CostInfusionDay   float64 `yaml:"cost_infusion_day"`   // infusion fee per 5-FU administration day
	CostPumpDay       float64 `yaml:"cost_pump_day"`       // pump fee per day the infusion pump is active
	CostUtilityFactor float64 `yaml:"cost_utility_factor"` // cost-to-utility conversion used by the optimizer objective
}

// SolverParams groups numeric solver budgets.
type SolverParams struct {
	Tol     float64 `yaml:"tol"`      // convergence tolerance on constraint residuals
	MaxIter int     `yaml:"max_iter"` // iteration cap per solve
}

// OptimizationParams groups the discretization horizon and objective weights.
type OptimizationParams struct {
	HorizonDays   int     `yaml:"horizon_days"`   // treatment horizon (days)
	StepSizeDays  int     `yaml:"step_size_days"` // discretization step (days)
	UtilityWeight float64 `yaml:"utility_weight"` // objective weight on cumulative utility
	CostWeight    float64 `yaml:"cost_weight"`    // objective weight on cumulative cost
}

// OutputParams groups results-sink configuration.
type OutputParams struct {
	ResultsDir string `yaml:"results_dir"` // directory for exported files
	SavePlots  bool   `yaml:"save_plots"`  // also write plot-series CSVs
}

// Params bundles all clinical and economic configuration for a run.
// Construct via DefaultParams or YAML loading, apply overrides, then treat
// as immutable: everything downstream takes Params by value.
type Params struct {
	Hematology   HematologyParams   `yaml:"hematology"`
	Neuropathy   NeuropathyParams   `yaml:"neuropathy"`
	Dosing       DosingParams       `yaml:"dosing"`
	Utility      UtilityParams      `yaml:"utility"`
	Economics    EconomicsParams    `yaml:"economics"`
	Solver       SolverParams       `yaml:"solver"`
	Optimization OptimizationParams `yaml:"optimization"`
	Outputs      OutputParams       `yaml:"outputs"`
}

// DefaultParams returns the documented default parameter set.
// The toxicity coefficients are calibration placeholders, not
// literature-derived constants; tests pin them for reproducibility only.
func DefaultParams() Params {
	return Params{
		Hematology: HematologyParams{
			ANCBaseline:                4.5,
			ANCCrit:                    1.0,
			KOut:                       0.15,
			KTox5FUDose:                1e-5,
			KToxOxDose:                 5e-5,
			SevereNeutropeniaThreshold: 1.0,
		},
		Neuropathy: NeuropathyParams{
			ChronicThresholdMgM2: 850.0,
		},
		Dosing: DosingParams{
			MaxDaily5FUMgM2:  2400.0,
			MaxSingleOxMgM2:  85.0,
			MinDaysBetweenOx: 14,
			PatientWeightKg:  70.0,
			PatientHeightCm:  170.0,
		},
		Utility: UtilityParams{
			BaselineUtility:    0.76,
			NeutropeniaPenalty: -0.2,
			NeuropathyPenalty:  -0.24,
		},
		Economics: EconomicsParams{
			Cost5FUMg:         0.00442,
			CostOxMg:          0.10,
			CostInfusionDay:   250.0,
			CostPumpDay:       12.0,
			CostUtilityFactor: 1e-4,
		},
		Solver: SolverParams{
			Tol:     1e-6,
			MaxIter: 500,
		},
		Optimization: OptimizationParams{
			HorizonDays:   400,
			StepSizeDays:  1,
			UtilityWeight: 1.0,
			CostWeight:    1.0,
		},
		Outputs: OutputParams{
			ResultsDir: "results",
			SavePlots:  false,
		},
	}
}

// Validate checks every field invariant. Returns ErrInvalidParameter
// (wrapped with the offending field) on the first violation.
func (p Params) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"hematology.anc_baseline", p.Hematology.ANCBaseline},
		{"hematology.anc_crit", p.Hematology.ANCCrit},
		{"hematology.k_out", p.Hematology.KOut},
		{"hematology.k_tox_5fu_dose", p.Hematology.KTox5FUDose},
		{"hematology.k_tox_ox_dose", p.Hematology.KToxOxDose},
		{"hematology.severe_neutropenia_threshold", p.Hematology.SevereNeutropeniaThreshold},
		{"neuropathy.chronic_neuropathy_threshold_mg_m2", p.Neuropathy.ChronicThresholdMgM2},
		{"dosing.max_daily_5fu_mg_m2", p.Dosing.MaxDaily5FUMgM2},
		{"dosing.max_single_ox_mg_m2", p.Dosing.MaxSingleOxMgM2},
		{"economics.cost_5fu_mg", p.Economics.Cost5FUMg},
		{"economics.cost_ox_mg", p.Economics.CostOxMg},
		{"economics.cost_infusion_day", p.Economics.CostInfusionDay},
		{"economics.cost_pump_day", p.Economics.CostPumpDay},
		{"economics.cost_utility_factor", p.Economics.CostUtilityFactor},
		{"optimization.utility_weight", p.Optimization.UtilityWeight},
		{"optimization.cost_weight", p.Optimization.CostWeight},
	}
	for _, f := range nonNegative {
		if f.value < 0 || math.IsNaN(f.value) {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParameter, f.name, f.value)
		}
	}

	if p.Utility.NeutropeniaPenalty > 0 {
		return fmt.Errorf("%w: utility.neutropenia_penalty must be non-positive, got %v",
			ErrInvalidParameter, p.Utility.NeutropeniaPenalty)
	}
	if p.Utility.NeuropathyPenalty > 0 {
		return fmt.Errorf("%w: utility.neuropathy_penalty must be non-positive, got %v",
			ErrInvalidParameter, p.Utility.NeuropathyPenalty)
	}

	if p.Dosing.PatientWeightKg <= 0 {
		return fmt.Errorf("%w: dosing.patient_weight_kg must be positive, got %v",
			ErrInvalidParameter, p.Dosing.PatientWeightKg)
	}
	if p.Dosing.PatientHeightCm <= 0 {
		return fmt.Errorf("%w: dosing.patient_height_cm must be positive, got %v",
			ErrInvalidParameter, p.Dosing.PatientHeightCm)
	}
	if p.Dosing.MinDaysBetweenOx < 0 {
		return fmt.Errorf("%w: dosing.min_days_between_ox must be non-negative, got %d",
			ErrInvalidParameter, p.Dosing.MinDaysBetweenOx)
	}

	if p.Optimization.StepSizeDays <= 0 {
		return fmt.Errorf("%w: optimization.step_size_days must be positive, got %d",
			ErrInvalidParameter, p.Optimization.StepSizeDays)
	}
	if p.Optimization.HorizonDays <= 0 {
		return fmt.Errorf("%w: optimization.horizon_days must be positive, got %d",
			ErrInvalidParameter, p.Optimization.HorizonDays)
	}
	if p.Optimization.HorizonDays%p.Optimization.StepSizeDays != 0 {
		return fmt.Errorf("%w: optimization.horizon_days (%d) must be a multiple of step_size_days (%d)",
			ErrInvalidParameter, p.Optimization.HorizonDays, p.Optimization.StepSizeDays)
	}

	if p.Solver.Tol <= 0 {
		return fmt.Errorf("%w: solver.tol must be positive, got %v", ErrInvalidParameter, p.Solver.Tol)
	}
	if p.Solver.MaxIter <= 0 {
		return fmt.Errorf("%w: solver.max_iter must be positive, got %d", ErrInvalidParameter, p.Solver.MaxIter)
	}

	return nil
}

// Derived holds quantities computed from Params per run. They are
// recomputed from the current weight/height on every Derive call rather
// than cached, so patient overrides shift every BSA-scaled limit.
type Derived struct {
	BSAM2               float64 // body surface area (Mosteller formula)
	MaxDaily5FUMg       float64 // absolute 5-FU daily ceiling (mg)
	MaxSingleOxMg       float64 // absolute oxaliplatin bolus ceiling (mg)
	ChronicNeuropathyMg float64 // absolute chronic-neuropathy cumulative threshold (mg)
	Steps               int     // number of discrete simulation steps
}

// Derive computes the BSA-scaled absolute limits for the current patient.
// Callers must Validate first; Derive assumes positive weight and height.
func (p Params) Derive() Derived {
	bsa := math.Sqrt(p.Dosing.PatientHeightCm * p.Dosing.PatientWeightKg / 3600.0)
	return Derived{
		BSAM2:               bsa,
		MaxDaily5FUMg:       p.Dosing.MaxDaily5FUMgM2 * bsa,
		MaxSingleOxMg:       p.Dosing.MaxSingleOxMgM2 * bsa,
		ChronicNeuropathyMg: p.Neuropathy.ChronicThresholdMgM2 * bsa,
		Steps:               p.Optimization.HorizonDays / p.Optimization.StepSizeDays,
	}
}
