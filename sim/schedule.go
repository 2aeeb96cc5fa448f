package sim

import (
	"fmt"
)

// CycleLengthDays is the length of one FOLFOX cycle: an oxaliplatin bolus
// plus 5-FU on day 1, 5-FU again on day 2, then rest until the next cycle.
const CycleLengthDays = 14

// Schedule maps a step index to the absolute doses administered on that
// day. Schedules are pure functions of the day index, evaluated lazily per
// day, so the same schedule works for any horizon.
type Schedule func(step int) (fiveFUMg, oxMg float64)

// DoseEvent is one realized dosing day: the step index plus both doses in
// absolute mg. Days without administration carry zero doses.
type DoseEvent struct {
	Step     int
	FiveFUMg float64
	OxMg     float64
}

// NewFixedCycleSchedule builds the repeating FOLFOX pattern for the given
// number of cycles at the maximum permitted doses. The oxaliplatin bolus is
// withheld after the first cycle when the configured spacing exceeds the
// cycle length.
func NewFixedCycleSchedule(p Params, cycles int) Schedule {
	d := p.Derive()
	dt := p.Optimization.StepSizeDays
	oxEveryCycle := p.Dosing.MinDaysBetweenOx <= CycleLengthDays
	return func(step int) (float64, float64) {
		cycle, offset := cycleDay(step, dt, cycles)
		switch offset {
		case 0:
			ox := 0.0
			if cycle == 0 || oxEveryCycle {
				ox = d.MaxSingleOxMg
			}
			return d.MaxDaily5FUMg, ox
		case 1: // second dosing day of the cycle
			return d.MaxDaily5FUMg, 0
		default:
			return 0, 0
		}
	}
}

// cycleDay maps a step index to the cycle whose dosing window covers it.
// Cycle c starts at step c*CycleLengthDays/dt, flooring when the step size
// does not divide the cycle length, so every requested cycle is
// administered regardless of alignment. The window is the start step
// (offset 0: bolus plus 5-FU) and the following step (offset 1: 5-FU).
// Returns (-1, -1) for rest days. When windows of adjacent cycles collide
// the higher cycle wins.
func cycleDay(step, dt, cycles int) (cycle, offset int) {
	if step < 0 || dt <= 0 || cycles <= 0 {
		return -1, -1
	}
	// largest cycle whose start step is <= step
	c := ((step+1)*dt - 1) / CycleLengthDays
	if c >= cycles {
		c = cycles - 1
	}
	switch step - c*CycleLengthDays/dt {
	case 0:
		return c, 0
	case 1:
		return c, 1
	}
	return -1, -1
}

// NewSequenceSchedule wraps explicit per-step dose tables. Steps beyond the
// table length carry zero doses. Used to replay solver output through the
// simulator.
func NewSequenceSchedule(fiveFUMg, oxMg []float64) Schedule {
	return func(step int) (float64, float64) {
		var f, o float64
		if step >= 0 && step < len(fiveFUMg) {
			f = fiveFUMg[step]
		}
		if step >= 0 && step < len(oxMg) {
			o = oxMg[step]
		}
		return f, o
	}
}

// Doses materializes a schedule over the configured horizon.
func Doses(p Params, s Schedule) []DoseEvent {
	d := p.Derive()
	events := make([]DoseEvent, d.Steps)
	for t := 0; t < d.Steps; t++ {
		f, o := s(t)
		events[t] = DoseEvent{Step: t, FiveFUMg: f, OxMg: o}
	}
	return events
}

// ValidateDoses checks a realized dose sequence against the hard dosing
// rules before any simulation step runs: no negative doses, no per-dose
// ceiling breach, and consecutive oxaliplatin administrations at least
// MinDaysBetweenOx days apart. Returns ErrDoseConstraint (wrapped) on the
// first violation.
func ValidateDoses(p Params, events []DoseEvent) error {
	d := p.Derive()
	dt := p.Optimization.StepSizeDays
	lastOxDay := -1
	for _, ev := range events {
		day := ev.Step * dt
		if ev.FiveFUMg < 0 || ev.OxMg < 0 {
			return fmt.Errorf("%w: negative dose on day %d (5-FU %.3f mg, ox %.3f mg)",
				ErrDoseConstraint, day, ev.FiveFUMg, ev.OxMg)
		}
		if ev.FiveFUMg > d.MaxDaily5FUMg+doseTolerance {
			return fmt.Errorf("%w: 5-FU dose %.3f mg on day %d exceeds ceiling %.3f mg",
				ErrDoseConstraint, ev.FiveFUMg, day, d.MaxDaily5FUMg)
		}
		if ev.OxMg > d.MaxSingleOxMg+doseTolerance {
			return fmt.Errorf("%w: oxaliplatin dose %.3f mg on day %d exceeds ceiling %.3f mg",
				ErrDoseConstraint, ev.OxMg, day, d.MaxSingleOxMg)
		}
		if ev.OxMg > 0 {
			if lastOxDay >= 0 && day-lastOxDay < p.Dosing.MinDaysBetweenOx {
				return fmt.Errorf("%w: oxaliplatin doses on days %d and %d are %d days apart, minimum is %d",
					ErrDoseConstraint, lastOxDay, day, day-lastOxDay, p.Dosing.MinDaysBetweenOx)
			}
			lastOxDay = day
		}
	}
	return nil
}

// doseTolerance absorbs float round-off when solver output sits exactly on
// a ceiling.
const doseTolerance = 1e-9
