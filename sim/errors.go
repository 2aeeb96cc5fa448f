package sim

import "errors"

// Error taxonomy for simulation and optimization failures. All four are
// surfaced to the caller; none are retried internally, and no partial
// trace or substitute schedule is ever returned alongside them.
var (
	// ErrInvalidParameter marks malformed or out-of-range configuration,
	// detected before any simulation step runs.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDoseConstraint marks a dose sequence that breaks a hard dosing
	// rule (ceiling, negative dose, oxaliplatin spacing). Doses are never
	// silently clamped.
	ErrDoseConstraint = errors.New("dose constraint violation")

	// ErrInfeasible marks an optimization with no point satisfying all
	// constraints.
	ErrInfeasible = errors.New("infeasible")

	// ErrNonConvergence marks a solve that exhausted its iteration or
	// tolerance budget without converging.
	ErrNonConvergence = errors.New("solver did not converge")
)
