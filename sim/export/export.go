// Package export writes simulation results for downstream analysis: a
// per-day CSV of the full trace, a JSON summary, and optional long-format
// series files a plotting tool can consume directly.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/folfox-sim/folfox-sim/sim/trace"
)

// Exporter writes result files into a single output directory.
type Exporter struct {
	Dir string
}

// NewExporter creates the output directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	return &Exporter{Dir: dir}, nil
}

// WriteTraceCSV exports the per-day records to simulation_results.csv and
// returns its path.
func (e *Exporter) WriteTraceCSV(tr *trace.Trace) (string, error) {
	path := filepath.Join(e.Dir, "simulation_results.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating trace CSV: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"day", "5fu_dose_mg", "ox_dose_mg", "anc_10e9_l", "cumulative_ox_mg",
		"severe_neutropenia", "acute_neuropathy", "chronic_neuropathy",
		"utility", "daily_cost", "cumulative_cost",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing trace CSV header: %w", err)
	}
	for _, r := range tr.Records {
		row := []string{
			formatFloat(r.Day),
			formatFloat(r.FiveFUDoseMg),
			formatFloat(r.OxDoseMg),
			formatFloat(r.ANC),
			formatFloat(r.CumulativeOxMg),
			formatBool(r.SevereNeutropenia),
			formatBool(r.AcuteNeuropathy),
			formatBool(r.ChronicNeuropathy),
			formatFloat(r.Utility),
			formatFloat(r.DailyCost),
			formatFloat(r.CumulativeCost),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing trace CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing trace CSV: %w", err)
	}
	logrus.Infof("trace exported to %s", path)
	return path, nil
}

// WriteSummaryJSON exports the aggregate summary to summary.json and
// returns its path.
func (e *Exporter) WriteSummaryJSON(summary *trace.Summary) (string, error) {
	path := filepath.Join(e.Dir, "summary.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	logrus.Infof("summary exported to %s", path)
	return path, nil
}

// WritePlotSeries exports two-column day/value CSVs for the ANC, utility,
// and cumulative-oxaliplatin curves. Rendering is left to external tools.
func (e *Exporter) WritePlotSeries(tr *trace.Trace) ([]string, error) {
	series := []struct {
		name  string
		value func(r trace.Record) float64
	}{
		{"anc_curve.csv", func(r trace.Record) float64 { return r.ANC }},
		{"utility_curve.csv", func(r trace.Record) float64 { return r.Utility }},
		{"neuropathy_curve.csv", func(r trace.Record) float64 { return r.CumulativeOxMg }},
	}

	paths := make([]string, 0, len(series))
	for _, s := range series {
		path := filepath.Join(e.Dir, s.name)
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", s.name, err)
		}
		w := csv.NewWriter(file)
		if err := w.Write([]string{"day", "value"}); err != nil {
			file.Close()
			return nil, fmt.Errorf("writing %s header: %w", s.name, err)
		}
		for _, r := range tr.Records {
			if err := w.Write([]string{formatFloat(r.Day), formatFloat(s.value(r))}); err != nil {
				file.Close()
				return nil, fmt.Errorf("writing %s row: %w", s.name, err)
			}
		}
		w.Flush()
		err = w.Error()
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("flushing %s: %w", s.name, err)
		}
		paths = append(paths, path)
	}
	logrus.Infof("plot series exported to %s", e.Dir)
	return paths, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
