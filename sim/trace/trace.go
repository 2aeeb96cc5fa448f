package trace

// Thresholds snapshots the derived threshold values a trace was produced
// under, so exports and summaries stay self-describing when patient
// weight/height overrides shift the BSA-scaled limits.
type Thresholds struct {
	SevereNeutropeniaANC float64 // ANC below this flags severe neutropenia (10^9/L)
	ChronicNeuropathyMg  float64 // absolute cumulative-dose threshold (mg)
	CriticalANC          float64 // safety floor used by the optimizer (10^9/L)
}

// Trace collects per-day patient records during a simulation run.
// Append-only while the day loop runs; treated as immutable afterwards.
type Trace struct {
	Thresholds Thresholds
	Records    []Record
}

// New creates a Trace ready for recording, pre-sized for the given number
// of simulated days.
func New(thresholds Thresholds, days int) *Trace {
	return &Trace{
		Thresholds: thresholds,
		Records:    make([]Record, 0, days),
	}
}

// Append adds the next day's record.
func (t *Trace) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of recorded days.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Final returns the last recorded day, or a zero Record for an empty trace.
func (t *Trace) Final() Record {
	if t.Len() == 0 {
		return Record{}
	}
	return t.Records[len(t.Records)-1]
}
