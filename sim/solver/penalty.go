package solver

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
)

// Penalty solves bound-constrained NLPs by quadratic penalty: constraints
// are folded into the objective with an escalating weight and each round is
// minimized with gonum/optimize. Derivative-free at the interface level —
// gonum approximates gradients by finite differences when the chosen
// method wants them.
type Penalty struct {
	// InitialWeight is the first penalty weight (default 10).
	InitialWeight float64
	// WeightGrowth multiplies the weight between rounds (default 10).
	WeightGrowth float64
	// Rounds caps the number of penalty escalations (default 8).
	Rounds int
}

// NewPenalty returns a Penalty solver with default escalation settings.
func NewPenalty() *Penalty {
	return &Penalty{InitialWeight: 10, WeightGrowth: 10, Rounds: 8}
}

// Solve runs the penalty loop until the constraint residual drops within
// tolerance, stalls (Infeasible), or the round/iteration budget runs out
// (IterationLimit). The returned Result always carries the last iterate,
// its objective value, and its residual.
func (s *Penalty) Solve(p Problem) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid problem: %w", err)
	}

	weight := s.InitialWeight
	if weight <= 0 {
		weight = 10
	}
	growth := s.WeightGrowth
	if growth <= 1 {
		growth = 10
	}
	rounds := s.Rounds
	if rounds <= 0 {
		rounds = 8
	}

	x := clampToBounds(p, append([]float64(nil), p.X0...))
	prevResidual := math.Inf(1)
	totalIters := 0

	for round := 0; round < rounds; round++ {
		mu := weight
		merit := func(v []float64) float64 {
			y := clampToBounds(p, append([]float64(nil), v...))
			val := p.Objective(y)
			for _, c := range p.Equalities {
				g := c.Eval(y)
				val += mu * g * g
			}
			for _, c := range p.Inequalities {
				if h := c.Eval(y); h < 0 {
					val += mu * h * h
				}
			}
			// Keep the iterate near the box even though evaluation clamps.
			for i := range v {
				if d := p.Lower[i] - v[i]; d > 0 {
					val += mu * d * d
				}
				if d := v[i] - p.Upper[i]; d > 0 {
					val += mu * d * d
				}
			}
			return val
		}

		result, err := optimize.Minimize(
			optimize.Problem{Func: merit},
			x,
			&optimize.Settings{MajorIterations: p.MaxIter},
			nil,
		)
		if result == nil {
			return Result{}, fmt.Errorf("inner minimization failed: %w", err)
		}
		x = clampToBounds(p, result.X)
		totalIters += result.Stats.MajorIterations

		residual := Residual(p, x)
		logrus.Debugf("penalty round %d: weight %.0e, residual %.3e, objective %.6f",
			round, mu, residual, p.Objective(x))

		if residual <= p.Tol {
			return Result{
				Status:      Converged,
				X:           x,
				Objective:   p.Objective(x),
				MaxResidual: residual,
				Iterations:  totalIters,
			}, nil
		}

		// A residual that stops shrinking under a heavier penalty weight
		// signals incompatible constraints rather than a slow solve.
		if residual > prevResidual*stallFactor {
			return Result{
				Status:      Infeasible,
				X:           x,
				Objective:   p.Objective(x),
				MaxResidual: residual,
				Iterations:  totalIters,
			}, nil
		}
		prevResidual = residual
		weight *= growth
	}

	return Result{
		Status:      IterationLimit,
		X:           x,
		Objective:   p.Objective(x),
		MaxResidual: prevResidual,
		Iterations:  totalIters,
	}, nil
}

// stallFactor: residual must shrink by at least 1% per escalation to count
// as progress.
const stallFactor = 0.99

func clampToBounds(p Problem, x []float64) []float64 {
	for i := range x {
		if x[i] < p.Lower[i] {
			x[i] = p.Lower[i]
		}
		if x[i] > p.Upper[i] {
			x[i] = p.Upper[i]
		}
	}
	return x
}
