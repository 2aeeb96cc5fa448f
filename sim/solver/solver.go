// Package solver defines the narrow NLP solver-service boundary the
// optimizer formulation is built against, plus a gonum-backed penalty
// implementation. The formulation side submits variables, bounds,
// constraints, and a scalar objective; it gets back a status and either a
// solution or a failure reason. Tests substitute stub services that return
// known trajectories.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Status classifies the outcome of a solve.
type Status int

const (
	// Converged means all constraint residuals are within tolerance at the
	// returned point.
	Converged Status = iota
	// Infeasible means the solver found no point satisfying the
	// constraints (residuals stopped improving above tolerance).
	Infeasible
	// IterationLimit means the iteration budget ran out while residuals
	// were still improving; the returned point is not a solution.
	IterationLimit
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Infeasible:
		return "infeasible"
	case IterationLimit:
		return "iteration limit"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Constraint is a named scalar constraint function. Equality constraints
// require Eval(x) == 0; inequality constraints require Eval(x) >= 0.
type Constraint struct {
	Name string
	Eval func(x []float64) float64
}

// Problem is a bound-constrained NLP in standard form: minimize Objective
// over Lower <= x <= Upper subject to Equalities(x) == 0 and
// Inequalities(x) >= 0.
type Problem struct {
	X0           []float64 // starting point, one entry per variable
	Lower, Upper []float64 // variable bounds, same length as X0
	Objective    func(x []float64) float64
	Equalities   []Constraint
	Inequalities []Constraint
	Tol          float64 // convergence tolerance on the max constraint residual
	MaxIter      int     // iteration cap per inner minimization
}

// Validate checks the problem's structural invariants.
func (p Problem) Validate() error {
	n := len(p.X0)
	if n == 0 {
		return fmt.Errorf("problem has no variables")
	}
	if len(p.Lower) != n || len(p.Upper) != n {
		return fmt.Errorf("bounds length mismatch: %d variables, %d lower, %d upper",
			n, len(p.Lower), len(p.Upper))
	}
	for i := range p.Lower {
		if p.Lower[i] > p.Upper[i] {
			return fmt.Errorf("variable %d has lower bound %v above upper bound %v",
				i, p.Lower[i], p.Upper[i])
		}
	}
	if p.Objective == nil {
		return fmt.Errorf("problem has no objective")
	}
	if p.Tol <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", p.Tol)
	}
	if p.MaxIter <= 0 {
		return fmt.Errorf("iteration cap must be positive, got %d", p.MaxIter)
	}
	return nil
}

// Result reports the outcome of a solve. X and Objective are meaningful for
// every status so callers can log the last iterate on failure.
type Result struct {
	Status      Status
	X           []float64
	Objective   float64
	MaxResidual float64 // max constraint violation at X
	Iterations  int
}

// Service is the solver boundary. Implementations run a full synchronous
// solve with no partial results.
type Service interface {
	Solve(p Problem) (Result, error)
}

// Residual returns the maximum constraint violation at x: |g(x)| over
// equalities, max(0, -h(x)) over inequalities, and distance outside the
// bounds.
func Residual(p Problem, x []float64) float64 {
	viol := make([]float64, 0, len(p.Equalities)+len(p.Inequalities))
	for _, c := range p.Equalities {
		viol = append(viol, c.Eval(x))
	}
	for _, c := range p.Inequalities {
		if h := c.Eval(x); h < 0 {
			viol = append(viol, h)
		}
	}
	for i := range x {
		if v := p.Lower[i] - x[i]; v > 0 {
			viol = append(viol, v)
		}
		if v := x[i] - p.Upper[i]; v > 0 {
			viol = append(viol, v)
		}
	}
	if len(viol) == 0 {
		return 0
	}
	return floats.Norm(viol, math.Inf(1))
}
