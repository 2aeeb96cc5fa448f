package sim

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"github.com/folfox-sim/folfox-sim/sim/trace"
)

// CycleScore is the outcome of simulating one candidate cycle count.
type CycleScore struct {
	Cycles      int
	MeanUtility float64
}

// SweepResult is the best fixed-pattern schedule found by a cycle sweep.
type SweepResult struct {
	BestCycles int
	BestScore  float64
	Trace      *trace.Trace
	Scores     []CycleScore // one entry per candidate, in cycle order
}

// SweepCycles searches over the number of administered FOLFOX cycles
// (0 through horizon/14) by simulating each candidate and scoring it by
// mean utility. Deterministic: same parameters always select the same
// cycle count. This is the cheap search mode; Optimize handles the full
// per-dose program.
func SweepCycles(p Params) (*SweepResult, error) {
	s, err := NewSimulator(p)
	if err != nil {
		return nil, err
	}

	maxCycles := p.Optimization.HorizonDays / CycleLengthDays
	result := &SweepResult{
		BestCycles: -1,
		BestScore:  math.Inf(-1),
		Scores:     make([]CycleScore, 0, maxCycles+1),
	}

	for n := 0; n <= maxCycles; n++ {
		tr, err := s.Run(NewFixedCycleSchedule(p, n))
		if err != nil {
			return nil, fmt.Errorf("simulating %d cycles: %w", n, err)
		}

		utilities := make([]float64, 0, tr.Len())
		for _, r := range tr.Records {
			utilities = append(utilities, r.Utility)
		}
		mean, err := stats.Mean(utilities)
		if err != nil {
			return nil, fmt.Errorf("scoring %d cycles: %w", n, err)
		}

		logrus.Debugf("cycle sweep: %d cycles, mean utility %.4f", n, mean)
		result.Scores = append(result.Scores, CycleScore{Cycles: n, MeanUtility: mean})
		if mean > result.BestScore {
			result.BestCycles = n
			result.BestScore = mean
			result.Trace = tr
		}
	}

	return result, nil
}
