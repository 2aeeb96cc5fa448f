package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/folfox-sim/folfox-sim/sim/trace"
)

// Simulator is the physiological state engine: it advances the patient
// state day by day under a realized dose sequence and records the full
// trajectory. A Simulator is deterministic and holds no state across Run
// calls; concurrent sensitivity sweeps should use independent instances.
type Simulator struct {
	Params  Params
	Derived Derived
}

// NewSimulator validates the parameter set and precomputes the BSA-scaled
// limits. Returns ErrInvalidParameter (wrapped) when validation fails.
func NewSimulator(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{Params: p, Derived: p.Derive()}, nil
}

// Run simulates the full horizon under the given schedule and returns the
// per-day trace. The dose sequence is validated against the hard dosing
// rules before the first state update; an invalid sequence yields
// ErrDoseConstraint and no trace, never a partial one.
//
// State update per step t (size dt days), explicit Euler:
//
//	anc[t+1] = max(0, anc[t] + dt*(k_out*(baseline-anc[t]) - (k5fu*d5fu[t]+kox*dox[t])*anc[t]))
//
// The record for step t carries the ANC entering the day together with the
// doses administered that day; flags, utility, and cost for step t are
// evaluated against that same-day state.
func (s *Simulator) Run(schedule Schedule) (*trace.Trace, error) {
	events := Doses(s.Params, schedule)
	if err := ValidateDoses(s.Params, events); err != nil {
		return nil, err
	}

	hem := s.Params.Hematology
	util := s.Params.Utility
	econ := s.Params.Economics
	dt := float64(s.Params.Optimization.StepSizeDays)

	tr := trace.New(trace.Thresholds{
		SevereNeutropeniaANC: hem.SevereNeutropeniaThreshold,
		ChronicNeuropathyMg:  s.Derived.ChronicNeuropathyMg,
		CriticalANC:          hem.ANCCrit,
	}, s.Derived.Steps)

	anc := hem.ANCBaseline
	cumOx := 0.0
	cumCost := 0.0
	chronic := false

	for t := 0; t < s.Derived.Steps; t++ {
		ev := events[t]
		cumOx += ev.OxMg
		if !chronic && cumOx >= s.Derived.ChronicNeuropathyMg {
			chronic = true
			logrus.Debugf("chronic neuropathy threshold %.1f mg reached on day %d",
				s.Derived.ChronicNeuropathyMg, t*s.Params.Optimization.StepSizeDays)
		}
		acute := ev.OxMg > 0
		severe := anc < hem.SevereNeutropeniaThreshold

		utility := util.BaselineUtility
		if severe {
			utility += util.NeutropeniaPenalty
		}
		if acute || chronic {
			utility += util.NeuropathyPenalty
		}

		cost := ev.FiveFUMg*econ.Cost5FUMg + ev.OxMg*econ.CostOxMg
		if ev.FiveFUMg > 0 {
			// Infusion fee plus pump fee: the pump is modeled as active
			// only on 5-FU administration days.
			cost += econ.CostInfusionDay + econ.CostPumpDay
		}
		cumCost += cost

		tr.Append(trace.Record{
			Day:               float64(t) * dt,
			FiveFUDoseMg:      ev.FiveFUMg,
			OxDoseMg:          ev.OxMg,
			ANC:               anc,
			CumulativeOxMg:    cumOx,
			SevereNeutropenia: severe,
			AcuteNeuropathy:   acute,
			ChronicNeuropathy: chronic,
			Utility:           utility,
			DailyCost:         cost,
			CumulativeCost:    cumCost,
		})

		anc = NextANC(hem, dt, anc, ev.FiveFUMg, ev.OxMg)
	}

	return tr, nil
}

// NextANC advances the neutrophil count one step under the given same-day
// doses, clipped at zero. Exposed separately so the optimizer can embed the
// identical recurrence as equality constraints.
func NextANC(hem HematologyParams, dt, anc, fiveFUMg, oxMg float64) float64 {
	production := hem.KOut * hem.ANCBaseline
	loss := hem.KOut * anc
	toxicity := (hem.KTox5FUDose*fiveFUMg + hem.KToxOxDose*oxMg) * anc
	next := anc + dt*(production-loss-toxicity)
	if next < 0 {
		return 0
	}
	return next
}
