// Package report turns a sweep's result table and captured artifacts
// into the operator-facing bundle: a multi-sheet workbook, derived
// statistics, comparison plots, and per-channel animations.
//
// Assembly degrades instead of failing: too few successful rows drops
// the statistics sheet and plots, an empty artifact set drops the
// animations, and individual plot or encode failures are logged and
// omitted. Only a workbook that cannot be written at all is an error.
package report

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"fesweep/internal/analysis"
	"fesweep/internal/artifact"
	"fesweep/internal/sweep"

	"go.uber.org/zap"
)

// Bundle lists everything assembly produced.
type Bundle struct {
	WorkbookPath string
	PlotPaths    []string
	// Animations maps artifact channel to the encoded GIF path.
	Animations map[string]string
	// StatisticsIncluded reports whether the statistics sheet and
	// comparison plots were emitted.
	StatisticsIncluded bool
}

// Assembler writes the report bundle below OutDir.
type Assembler struct {
	OutDir string
	// FrameDelay is the animation frame duration.
	FrameDelay time.Duration
	Log        *zap.Logger

	// now is stubbed in tests for stable workbook names.
	now func() time.Time
}

// NewAssembler returns an assembler writing into outDir.
func NewAssembler(outDir string, frameDelay time.Duration, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if frameDelay <= 0 {
		frameDelay = 300 * time.Millisecond
	}
	return &Assembler{OutDir: outDir, FrameDelay: frameDelay, Log: log, now: time.Now}
}

// Assemble produces the full bundle for one finished sweep.
func (a *Assembler) Assemble(table *sweep.ResultTable, set *artifact.Set, spec sweep.Spec, desc analysis.Descriptor) (*Bundle, error) {
	okRuns := table.OKRuns()
	withStats := len(okRuns) >= 2

	bundle := &Bundle{
		Animations:         map[string]string{},
		StatisticsIncluded: withStats,
	}

	wb, err := a.writeWorkbook(table, spec, desc, withStats)
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	bundle.WorkbookPath = wb

	if withStats {
		bundle.PlotPaths = a.comparisonPlots(table, desc)
	} else {
		a.Log.Info("too few successful runs, skipping statistics and plots",
			zap.Int("successful", len(okRuns)))
	}

	if set != nil && set.Len() > 0 {
		bundle.Animations = a.animations(set)
	} else {
		a.Log.Info("no captured artifacts, skipping animations")
	}
	return bundle, nil
}

// metricColumns derives the ordered metric column set of a table:
// primary and overlay metrics first, remaining keys sorted with
// mode-number awareness so mode_10 follows mode_9.
func metricColumns(table *sweep.ResultTable, desc analysis.Descriptor) []string {
	seen := map[string]bool{}
	union := []string{}
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			union = append(union, key)
		}
	}
	present := map[string]bool{}
	for _, r := range table.Runs {
		for k := range r.Scalars {
			present[k] = true
		}
	}
	for _, k := range desc.OverlayMetrics {
		if present[k] {
			add(k)
		}
	}
	if present[desc.PrimaryMetric] {
		add(desc.PrimaryMetric)
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return metricLess(rest[i], rest[j]) })
	for _, k := range rest {
		add(k)
	}
	return union
}

var modeKey = regexp.MustCompile(`^mode_(\d+)_freq_hz$`)

func metricLess(a, b string) bool {
	ma, mb := modeKey.FindStringSubmatch(a), modeKey.FindStringSubmatch(b)
	if ma != nil && mb != nil {
		na, _ := strconv.Atoi(ma[1])
		nb, _ := strconv.Atoi(mb[1])
		return na < nb
	}
	if (ma != nil) != (mb != nil) {
		// Grouped mode columns after the scalar metrics.
		return mb != nil
	}
	return a < b
}

// metricSeries extracts the (param, metric) pairs of the successful
// runs, skipping NaN entries.
func metricSeries(table *sweep.ResultTable, metric string) (xs, ys []float64) {
	for _, r := range table.OKRuns() {
		v, ok := r.Scalars[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		xs = append(xs, r.ParamValue)
		ys = append(ys, v)
	}
	return xs, ys
}
