// Package trace provides per-day patient state recording for simulation
// analysis. This package has no dependencies on sim/ — it stores pure data
// types plus aggregation over them.
package trace

// Record captures the patient state for a single simulated day.
//
// ANC is the absolute neutrophil count entering the day; the day's doses
// perturb the next day's ANC. CumulativeOxMg includes the oxaliplatin dose
// administered on this day.
type Record struct {
	Day               float64 // simulation time in days (index * step size)
	FiveFUDoseMg      float64 // 5-FU dose administered this day (absolute mg)
	OxDoseMg          float64 // oxaliplatin dose administered this day (absolute mg)
	ANC               float64 // absolute neutrophil count (10^9/L)
	CumulativeOxMg    float64 // running oxaliplatin exposure through this day (mg)
	SevereNeutropenia bool    // ANC below the severe-neutropenia threshold
	AcuteNeuropathy   bool    // oxaliplatin administered this day
	ChronicNeuropathy bool    // cumulative exposure reached the chronic threshold (sticky)
	Utility           float64 // instantaneous utility (baseline plus toxicity penalties)
	DailyCost         float64 // cost incurred this day (drugs + infusion/pump fees)
	CumulativeCost    float64 // running cost through this day
}
