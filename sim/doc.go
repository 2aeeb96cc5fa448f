// Package sim provides the core discrete-time model of a patient's
// response to a multi-cycle FOLFOX chemotherapy regimen.
//
// # Reading Guide
//
// Start with these three files to understand the model:
//   - config.go: the grouped parameter bundle, validation, and the
//     BSA-derived absolute dose limits
//   - schedule.go: dosing schedules as pure day-index functions, plus the
//     hard dosing rules enforced before any simulation step
//   - simulator.go: the day loop — ANC turnover under drug toxicity,
//     neuropathy staging, utility and cost scoring
//
// # Architecture
//
// The sim package holds the state engine and the two search modes;
// supporting concerns live in sub-packages:
//   - sim/trace/: per-day patient records, trace container, summaries
//   - sim/solver/: the NLP solver-service boundary and the gonum-backed
//     penalty implementation
//   - sim/export/: CSV/JSON results sink
//
// Everything is deterministic and single-threaded. The day loop has a
// strict causal ordering (each day needs the previous day's ANC), so runs
// are never parallelized internally; concurrent sensitivity sweeps should
// construct independent Simulator instances.
//
// # Search modes
//
// SweepCycles brute-forces the number of administered 14-day cycles and
// scores each candidate by mean utility. Optimizer builds a direct
// transcription NLP (per-cycle doses plus the full ANC trajectory as
// variables, the recurrence as equality constraints, dose ceilings and the
// ANC safety floor as bounds/inequalities) and delegates the numeric solve
// to a solver.Service.
package sim
