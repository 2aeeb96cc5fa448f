package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/folfox-sim/folfox-sim/sim"
	"github.com/folfox-sim/folfox-sim/sim/export"
	"github.com/folfox-sim/folfox-sim/sim/solver"
	"github.com/folfox-sim/folfox-sim/sim/trace"
)

var (
	// Shared CLI flags
	configPath  string  // Path to a YAML parameter file (defaults built in)
	logLevel    string  // Log verbosity level
	weight      float64 // Patient weight in kg (overrides config)
	height      float64 // Patient height in cm (overrides config)
	horizonDays int     // Treatment horizon in days (overrides config)
	stepDays    int     // Discretization step in days (overrides config)
	outputDir   string  // Directory for output files (overrides config)
	savePlots   bool    // Also write plot-series CSVs

	// run-only flags
	cycles int // Number of 14-day FOLFOX cycles to administer
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "folfox-sim",
	Short: "Simulator and schedule optimizer for FOLFOX chemotherapy dosing",
}

// setup parses the log level, loads parameters, applies flag overrides,
// and echoes the effective setup. Shared preamble for every subcommand.
func setup() sim.Params {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	params, err := LoadParams(configPath)
	if err != nil {
		logrus.Fatalf("Unable to load parameters: %v", err)
	}
	params = applyOverrides(params)
	if err := params.Validate(); err != nil {
		logrus.Fatalf("Invalid parameters: %v", err)
	}

	d := params.Derive()
	logrus.Infof("horizon=%d days, step=%d days, patient %.0f kg / %.0f cm, BSA %.2f m^2",
		params.Optimization.HorizonDays, params.Optimization.StepSizeDays,
		params.Dosing.PatientWeightKg, params.Dosing.PatientHeightCm, d.BSAM2)

	return params
}

// exportResults writes the trace, summary, and optional plot series, then
// logs the headline summary numbers.
func exportResults(params sim.Params, tr *trace.Trace) {
	summary := trace.Summarize(tr)

	exporter, err := export.NewExporter(params.Outputs.ResultsDir)
	if err != nil {
		logrus.Fatalf("Unable to prepare results dir: %v", err)
	}
	if _, err := exporter.WriteTraceCSV(tr); err != nil {
		logrus.Fatalf("Unable to export trace: %v", err)
	}
	if _, err := exporter.WriteSummaryJSON(summary); err != nil {
		logrus.Fatalf("Unable to export summary: %v", err)
	}
	if params.Outputs.SavePlots {
		if _, err := exporter.WritePlotSeries(tr); err != nil {
			logrus.Fatalf("Unable to export plot series: %v", err)
		}
	}

	logrus.Infof("min ANC %.2f, final utility %.2f, mean utility %.4f, total cost $%.2f",
		summary.MinANC, summary.FinalUtility, summary.MeanUtility, summary.CumulativeCost)
	if summary.ChronicNeuropathyOnset >= 0 {
		logrus.Infof("chronic neuropathy onset on day %.0f (threshold %.1f mg)",
			summary.ChronicNeuropathyOnset, summary.ChronicNeuropathyMg)
	}
}

// runCmd simulates the fixed repeating FOLFOX pattern for a given number
// of cycles.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the fixed 14-day FOLFOX pattern",
	Run: func(cmd *cobra.Command, args []string) {
		params := setup()

		s, err := sim.NewSimulator(params)
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		tr, err := s.Run(sim.NewFixedCycleSchedule(params, cycles))
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		logrus.Infof("simulated %d cycles over %d days", cycles, params.Optimization.HorizonDays)
		exportResults(params, tr)
	},
}

// sweepCmd searches for the cycle count with the best mean utility.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Search over FOLFOX cycle counts for the best mean utility",
	Run: func(cmd *cobra.Command, args []string) {
		params := setup()

		result, err := sim.SweepCycles(params)
		if err != nil {
			logrus.Fatalf("Cycle sweep failed: %v", err)
		}
		for _, score := range result.Scores {
			logrus.Infof("  %2d cycles: mean utility %.4f", score.Cycles, score.MeanUtility)
		}
		logrus.Infof("optimal cycle count: %d (mean utility %.4f)", result.BestCycles, result.BestScore)
		exportResults(params, result.Trace)
	},
}

// optimizeCmd solves the per-cycle dosing program via the NLP solver.
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve the constrained dosing program for an optimal schedule",
	Run: func(cmd *cobra.Command, args []string) {
		params := setup()

		opt, err := sim.NewOptimizer(params, solver.NewPenalty())
		if err != nil {
			logrus.Fatalf("Unable to build optimizer: %v", err)
		}
		result, err := opt.Optimize()
		if err != nil {
			logrus.Fatalf("Optimization failed: %v", err)
		}

		logrus.Infof("solved schedule objective: %.6f", result.Objective)
		for _, ev := range result.Doses {
			if ev.FiveFUMg > 0 || ev.OxMg > 0 {
				logrus.Infof("  day %3d: 5-FU %.1f mg, oxaliplatin %.1f mg",
					ev.Step*params.Optimization.StepSizeDays, ev.FiveFUMg, ev.OxMg)
			}
		}
		exportResults(params, result.Trace)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a YAML parameter file")
	pf.StringVar(&logLevel, "log-level", "info", "log verbosity (debug, info, warn, error)")
	pf.Float64Var(&weight, "weight", 0, "patient weight in kg (overrides config)")
	pf.Float64Var(&height, "height", 0, "patient height in cm (overrides config)")
	pf.IntVar(&horizonDays, "horizon", 0, "treatment horizon in days (overrides config)")
	pf.IntVar(&stepDays, "step", 0, "discretization step in days (overrides config)")
	pf.StringVarP(&outputDir, "output", "o", "", "directory for output files (overrides config)")
	pf.BoolVar(&savePlots, "plot", false, "also write plot-series CSVs")

	runCmd.Flags().IntVar(&cycles, "cycles", 6, "number of 14-day FOLFOX cycles to administer")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(optimizeCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
