package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/folfox-sim/folfox-sim/sim/solver"
	"github.com/folfox-sim/folfox-sim/sim/trace"
)

// Optimizer builds the dosing-schedule NLP and delegates the numeric solve
// to a solver.Service. The formulation is a direct transcription: the full
// day-by-day ANC trajectory is exposed as solver variables tied to the
// dose variables by the simulator's recurrence as equality constraints, so
// every feasible trajectory is physiologically consistent by construction.
type Optimizer struct {
	sim     *Simulator
	service solver.Service
}

// NewOptimizer validates the parameters and wires the solver service.
func NewOptimizer(p Params, service solver.Service) (*Optimizer, error) {
	s, err := NewSimulator(p)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, fmt.Errorf("%w: optimizer requires a solver service", ErrInvalidParameter)
	}
	return &Optimizer{sim: s, service: service}, nil
}

// OptimizeResult is a solved schedule together with its independently
// re-simulated trajectory.
type OptimizeResult struct {
	Doses     []DoseEvent
	Trace     *trace.Trace
	Objective float64 // weighted utility-minus-cost value at the solution
}

// Variable layout: one 5-FU rate and one oxaliplatin bolus per 14-day
// cycle, then the ANC value entering each day 1..T-1 (day 0 is fixed at
// baseline). The dose ceilings are variable bounds; the ANC floor is an
// inequality per day; oxaliplatin spacing is structural (one bolus per
// cycle, and bolus ceilings collapse to zero after cycle 0 when the
// required spacing exceeds the cycle length).
type formulation struct {
	cycles int
	steps  int
	dt     int
}

func (f formulation) numVars() int     { return 2*f.cycles + f.steps - 1 }
func (f formulation) fiveFU(c int) int { return c }
func (f formulation) ox(c int) int     { return f.cycles + c }
func (f formulation) ancVar(t int) int { return 2*f.cycles + t - 1 } // valid for t >= 1

// dosesAt maps the decision variables to the doses administered at step t,
// using the same floored cycle-start mapping as the fixed schedule so the
// solved variables replay exactly.
func (f formulation) dosesAt(x []float64, t int) (fiveFU, ox float64) {
	cycle, offset := cycleDay(t, f.dt, f.cycles)
	switch offset {
	case 0:
		return x[f.fiveFU(cycle)], x[f.ox(cycle)]
	case 1:
		return x[f.fiveFU(cycle)], 0
	default:
		return 0, 0
	}
}

// anc returns the trajectory variable for step t (t=0 is the baseline
// constant).
func (f formulation) anc(x []float64, t int, baseline float64) float64 {
	if t == 0 {
		return baseline
	}
	return x[f.ancVar(t)]
}

// Optimize constructs the NLP and interprets the solver outcome. A
// returned schedule has been replayed through an independent simulation
// and checked for consistency: the replayed ANC trajectory never drops
// below the critical floor and the cumulative oxaliplatin exposure matches
// the returned dose variables. Solver failures surface as ErrInfeasible or
// ErrNonConvergence; no default schedule is ever substituted.
func (o *Optimizer) Optimize() (*OptimizeResult, error) {
	p := o.sim.Params
	d := o.sim.Derived
	f := formulation{
		cycles: p.Optimization.HorizonDays / CycleLengthDays,
		steps:  d.Steps,
		dt:     p.Optimization.StepSizeDays,
	}
	if f.cycles == 0 {
		return nil, fmt.Errorf("%w: horizon %d days is shorter than one %d-day cycle",
			ErrInvalidParameter, p.Optimization.HorizonDays, CycleLengthDays)
	}

	problem := o.buildProblem(f)
	logrus.Infof("solving dosing program: %d cycles, %d steps, %d variables, %d equality constraints",
		f.cycles, f.steps, len(problem.X0), len(problem.Equalities))

	result, err := o.service.Solve(problem)
	if err != nil {
		return nil, fmt.Errorf("solver service: %w", err)
	}

	switch result.Status {
	case solver.Converged:
		// fall through to replay
	case solver.Infeasible:
		return nil, fmt.Errorf("%w: no schedule satisfies the dosing and ANC-floor constraints (residual %.3e)",
			ErrInfeasible, result.MaxResidual)
	case solver.IterationLimit:
		return nil, fmt.Errorf("%w: after %d iterations, objective %.6f, residual %.3e",
			ErrNonConvergence, result.Iterations, result.Objective, result.MaxResidual)
	default:
		return nil, fmt.Errorf("%w: unrecognized solver status %v", ErrNonConvergence, result.Status)
	}

	return o.replay(f, result)
}

func (o *Optimizer) buildProblem(f formulation) solver.Problem {
	p := o.sim.Params
	d := o.sim.Derived
	hem := p.Hematology
	dt := float64(f.dt)

	n := f.numVars()
	x0 := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)

	oxEveryCycle := p.Dosing.MinDaysBetweenOx <= CycleLengthDays
	for c := 0; c < f.cycles; c++ {
		upper[f.fiveFU(c)] = d.MaxDaily5FUMg
		x0[f.fiveFU(c)] = d.MaxDaily5FUMg / 2
		if c == 0 || oxEveryCycle {
			upper[f.ox(c)] = d.MaxSingleOxMg
			x0[f.ox(c)] = d.MaxSingleOxMg / 2
		}
	}
	for t := 1; t < f.steps; t++ {
		upper[f.ancVar(t)] = ancVarCeiling * hem.ANCBaseline
		x0[f.ancVar(t)] = hem.ANCBaseline
	}

	// Recurrence as equality constraints: each day's trajectory variable
	// must equal the simulator's one-step update from the previous day.
	equalities := make([]solver.Constraint, 0, f.steps-1)
	for t := 1; t < f.steps; t++ {
		t := t
		equalities = append(equalities, solver.Constraint{
			Name: fmt.Sprintf("anc_recurrence_day_%d", t*f.dt),
			Eval: func(x []float64) float64 {
				fiveFU, ox := f.dosesAt(x, t-1)
				prev := f.anc(x, t-1, hem.ANCBaseline)
				return f.anc(x, t, hem.ANCBaseline) - NextANC(hem, dt, prev, fiveFU, ox)
			},
		})
	}

	// ANC floor per day.
	inequalities := make([]solver.Constraint, 0, f.steps-1)
	for t := 1; t < f.steps; t++ {
		t := t
		inequalities = append(inequalities, solver.Constraint{
			Name: fmt.Sprintf("anc_floor_day_%d", t*f.dt),
			Eval: func(x []float64) float64 {
				return f.anc(x, t, hem.ANCBaseline) - hem.ANCCrit
			},
		})
	}

	return solver.Problem{
		X0:           x0,
		Lower:        lower,
		Upper:        upper,
		Objective:    func(x []float64) float64 { return -o.score(f, x) },
		Equalities:   equalities,
		Inequalities: inequalities,
		Tol:          p.Solver.Tol,
		MaxIter:      p.Solver.MaxIter,
	}
}

// score evaluates the maximization objective at a candidate point:
// UtilityWeight * total utility - CostWeight * cost folded through the
// utility conversion factor. Utility and cost are computed with the same
// flag logic the simulator applies, read off the trajectory variables.
func (o *Optimizer) score(f formulation, x []float64) float64 {
	p := o.sim.Params
	d := o.sim.Derived
	hem := p.Hematology
	util := p.Utility
	econ := p.Economics

	totalUtility := 0.0
	totalCost := 0.0
	cumOx := 0.0
	chronic := false
	for t := 0; t < f.steps; t++ {
		fiveFU, ox := f.dosesAt(x, t)
		cumOx += ox
		if cumOx >= d.ChronicNeuropathyMg {
			chronic = true
		}

		u := util.BaselineUtility
		if f.anc(x, t, hem.ANCBaseline) < hem.SevereNeutropeniaThreshold {
			u += util.NeutropeniaPenalty
		}
		if ox > 0 || chronic {
			u += util.NeuropathyPenalty
		}
		totalUtility += u

		cost := fiveFU*econ.Cost5FUMg + ox*econ.CostOxMg
		if fiveFU > 0 {
			cost += econ.CostInfusionDay + econ.CostPumpDay
		}
		totalCost += cost
	}

	return p.Optimization.UtilityWeight*totalUtility -
		p.Optimization.CostWeight*totalCost*econ.CostUtilityFactor
}

// replay converts the solved dose variables to a concrete schedule, runs it
// through an independent simulation, and cross-checks the outcome against
// the solver's trajectory.
func (o *Optimizer) replay(f formulation, result solver.Result) (*OptimizeResult, error) {
	p := o.sim.Params
	hem := p.Hematology

	fiveFU := make([]float64, f.steps)
	ox := make([]float64, f.steps)
	solvedCumOx := 0.0
	for t := 0; t < f.steps; t++ {
		fiveFU[t], ox[t] = f.dosesAt(result.X, t)
		solvedCumOx += ox[t]
	}

	tr, err := o.sim.Run(NewSequenceSchedule(fiveFU, ox))
	if err != nil {
		return nil, fmt.Errorf("replaying solved schedule: %w", err)
	}

	tol := consistencyTol(p.Solver.Tol)
	for _, r := range tr.Records {
		if r.ANC < hem.ANCCrit-tol {
			return nil, fmt.Errorf("%w: replayed ANC %.4f on day %.0f falls below critical floor %.4f",
				ErrInfeasible, r.ANC, r.Day, hem.ANCCrit)
		}
	}
	if replayed := tr.Final().CumulativeOxMg; math.Abs(replayed-solvedCumOx) > tol {
		return nil, fmt.Errorf("%w: replayed cumulative oxaliplatin %.4f mg disagrees with solved doses %.4f mg",
			ErrNonConvergence, replayed, solvedCumOx)
	}

	return &OptimizeResult{
		Doses:     Doses(p, NewSequenceSchedule(fiveFU, ox)),
		Trace:     tr,
		Objective: -result.Objective,
	}, nil
}

// ancVarCeiling bounds trajectory variables at a multiple of baseline; the
// turnover model cannot push ANC above baseline from below.
const ancVarCeiling = 2.0

// consistencyTol gives the replay check slack proportional to the solver
// tolerance: equality residuals up to Tol per day can accumulate.
func consistencyTol(solverTol float64) float64 {
	return math.Max(1e-6, solverTol*1e3)
}
