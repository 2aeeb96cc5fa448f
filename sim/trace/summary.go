package trace

import (
	"github.com/montanaflynn/stats"
)

// Summary aggregates statistics from a Trace.
type Summary struct {
	MinANC                  float64
	FinalANC                float64
	DaysSevereNeutropenia   int
	FinalUtility            float64
	MeanUtility             float64
	CumulativeOxMg          float64
	CumulativeCost          float64
	MeanDailyCost           float64
	ChronicNeuropathyOnset  float64 // first day the chronic flag was set, -1 if never
	AcuteNeuropathyEpisodes int     // number of days with an oxaliplatin administration

	// Threshold context the trace was simulated under, copied so exported
	// summaries stay self-describing when patient overrides shift the
	// BSA-scaled limits.
	SevereNeutropeniaANC float64
	ChronicNeuropathyMg  float64
	CriticalANC          float64
}

// Summarize computes aggregate statistics from a Trace.
// Safe for nil or empty traces (returns zero-value fields, onset -1).
func Summarize(t *Trace) *Summary {
	summary := &Summary{ChronicNeuropathyOnset: -1}
	if t == nil || len(t.Records) == 0 {
		return summary
	}

	summary.SevereNeutropeniaANC = t.Thresholds.SevereNeutropeniaANC
	summary.ChronicNeuropathyMg = t.Thresholds.ChronicNeuropathyMg
	summary.CriticalANC = t.Thresholds.CriticalANC

	ancs := make([]float64, 0, len(t.Records))
	utilities := make([]float64, 0, len(t.Records))
	costs := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		ancs = append(ancs, r.ANC)
		utilities = append(utilities, r.Utility)
		costs = append(costs, r.DailyCost)
		if r.SevereNeutropenia {
			summary.DaysSevereNeutropenia++
		}
		if r.AcuteNeuropathy {
			summary.AcuteNeuropathyEpisodes++
		}
		if r.ChronicNeuropathy && summary.ChronicNeuropathyOnset < 0 {
			summary.ChronicNeuropathyOnset = r.Day
		}
	}

	// stats errors only on empty input, which is excluded above.
	summary.MinANC, _ = stats.Min(ancs)
	summary.MeanUtility, _ = stats.Mean(utilities)
	summary.MeanDailyCost, _ = stats.Mean(costs)

	final := t.Final()
	summary.FinalANC = final.ANC
	summary.FinalUtility = final.Utility
	summary.CumulativeOxMg = final.CumulativeOxMg
	summary.CumulativeCost = final.CumulativeCost

	return summary
}
