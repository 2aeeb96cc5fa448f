package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_NilTrace(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0.0, s.MinANC)
	assert.Equal(t, -1.0, s.ChronicNeuropathyOnset)
	assert.Equal(t, 0, s.DaysSevereNeutropenia)
}

func TestSummarize_EmptyTrace(t *testing.T) {
	s := Summarize(New(Thresholds{}, 0))
	assert.Equal(t, -1.0, s.ChronicNeuropathyOnset)
	assert.Equal(t, 0.0, s.CumulativeCost)
}

func TestSummarize_Aggregates(t *testing.T) {
	tr := New(Thresholds{SevereNeutropeniaANC: 1.0, ChronicNeuropathyMg: 1500, CriticalANC: 0.9}, 4)
	tr.Append(Record{Day: 0, ANC: 4.5, Utility: 0.76, OxDoseMg: 100, AcuteNeuropathy: true, DailyCost: 260, CumulativeCost: 260, CumulativeOxMg: 100})
	tr.Append(Record{Day: 1, ANC: 0.8, Utility: 0.56, SevereNeutropenia: true, CumulativeCost: 260, CumulativeOxMg: 100})
	tr.Append(Record{Day: 2, ANC: 0.9, Utility: 0.32, SevereNeutropenia: true, ChronicNeuropathy: true, CumulativeCost: 260, CumulativeOxMg: 100})
	tr.Append(Record{Day: 3, ANC: 1.2, Utility: 0.52, ChronicNeuropathy: true, CumulativeCost: 260, CumulativeOxMg: 100})

	s := Summarize(tr)
	assert.InDelta(t, 0.8, s.MinANC, 1e-12)
	assert.InDelta(t, 1.2, s.FinalANC, 1e-12)
	assert.Equal(t, 2, s.DaysSevereNeutropenia)
	assert.Equal(t, 1, s.AcuteNeuropathyEpisodes)
	assert.InDelta(t, 0.52, s.FinalUtility, 1e-12)
	assert.InDelta(t, (0.76+0.56+0.32+0.52)/4, s.MeanUtility, 1e-12)
	assert.InDelta(t, 260.0, s.CumulativeCost, 1e-12)
	assert.InDelta(t, 65.0, s.MeanDailyCost, 1e-12)
	assert.InDelta(t, 100.0, s.CumulativeOxMg, 1e-12)
	assert.Equal(t, 2.0, s.ChronicNeuropathyOnset)

	// threshold context carried through from the trace
	assert.Equal(t, 1.0, s.SevereNeutropeniaANC)
	assert.Equal(t, 1500.0, s.ChronicNeuropathyMg)
	assert.Equal(t, 0.9, s.CriticalANC)
}

func TestSummarize_OnsetNeverTriggered(t *testing.T) {
	tr := New(Thresholds{}, 2)
	tr.Append(Record{Day: 0, ANC: 4.5, Utility: 0.76})
	tr.Append(Record{Day: 1, ANC: 4.5, Utility: 0.76})
	assert.Equal(t, -1.0, Summarize(tr).ChronicNeuropathyOnset)
}
