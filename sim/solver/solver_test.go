package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProblem() Problem {
	return Problem{
		X0:        []float64{0, 0},
		Lower:     []float64{0, 0},
		Upper:     []float64{1, 1},
		Objective: func(x []float64) float64 { return x[0] + x[1] },
		Tol:       1e-6,
		MaxIter:   100,
	}
}

func TestProblem_Validate(t *testing.T) {
	assert.NoError(t, validProblem().Validate())

	t.Run("no variables", func(t *testing.T) {
		p := validProblem()
		p.X0 = nil
		p.Lower, p.Upper = nil, nil
		assert.Error(t, p.Validate())
	})
	t.Run("bounds length mismatch", func(t *testing.T) {
		p := validProblem()
		p.Lower = []float64{0}
		assert.Error(t, p.Validate())
	})
	t.Run("crossed bounds", func(t *testing.T) {
		p := validProblem()
		p.Lower[0] = 2
		assert.Error(t, p.Validate())
	})
	t.Run("missing objective", func(t *testing.T) {
		p := validProblem()
		p.Objective = nil
		assert.Error(t, p.Validate())
	})
	t.Run("bad tolerance", func(t *testing.T) {
		p := validProblem()
		p.Tol = 0
		assert.Error(t, p.Validate())
	})
	t.Run("bad iteration cap", func(t *testing.T) {
		p := validProblem()
		p.MaxIter = 0
		assert.Error(t, p.Validate())
	})
}

func TestResidual(t *testing.T) {
	p := validProblem()
	p.Equalities = []Constraint{{
		Name: "sum_to_one",
		Eval: func(x []float64) float64 { return x[0] + x[1] - 1 },
	}}
	p.Inequalities = []Constraint{{
		Name: "first_at_least_quarter",
		Eval: func(x []float64) float64 { return x[0] - 0.25 },
	}}

	// feasible point: zero residual
	assert.InDelta(t, 0.0, Residual(p, []float64{0.5, 0.5}), 1e-12)

	// equality violated by 0.4
	assert.InDelta(t, 0.4, Residual(p, []float64{0.3, 0.3}), 1e-12)

	// inequality violated by 0.15 dominates a satisfied equality
	assert.InDelta(t, 0.15, Residual(p, []float64{0.1, 0.9}), 1e-12)

	// bound violation is part of the residual
	require.InDelta(t, 0.5, Residual(p, []float64{1.5, -0.5}), 1e-12)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "converged", Converged.String())
	assert.Equal(t, "infeasible", Infeasible.String())
	assert.Equal(t, "iteration limit", IterationLimit.String())
}
