package report

import (
	"fmt"
	"path/filepath"

	"fesweep/internal/analysis"
	"fesweep/internal/sweep"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// comparisonPlots renders the per-sweep comparison figures: primary
// metric against the parameter, a linear-fit check, and the normalized
// multi-metric overlay. Each figure fails independently; a failed one
// is logged and omitted.
func (a *Assembler) comparisonPlots(table *sweep.ResultTable, desc analysis.Descriptor) []string {
	var out []string
	add := func(path string, err error) {
		if err != nil {
			a.Log.Warn("comparison plot skipped", zap.String("plot", filepath.Base(path)), zap.Error(err))
			return
		}
		out = append(out, path)
	}

	primary := filepath.Join(a.OutDir, fmt.Sprintf("%s_vs_%s.png", desc.PrimaryMetric, desc.ParameterKey))
	add(primary, a.primaryPlot(table, desc, primary))

	linearity := filepath.Join(a.OutDir, "linearity_check.png")
	add(linearity, a.linearityPlot(table, desc, linearity))

	overlay := filepath.Join(a.OutDir, "multi_metric_overlay.png")
	add(overlay, a.overlayPlot(table, desc, overlay))
	return out
}

func axisLabel(desc analysis.Descriptor) string {
	return fmt.Sprintf("%s (%s)", desc.ParameterName, desc.ParameterUnit)
}

func xyPoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}

func (a *Assembler) primaryPlot(table *sweep.ResultTable, desc analysis.Descriptor, path string) error {
	xs, ys := metricSeries(table, desc.PrimaryMetric)
	if len(xs) < 2 {
		return fmt.Errorf("metric %s has %d usable points", desc.PrimaryMetric, len(xs))
	}
	p := plot.New()
	p.Title.Text = desc.Title
	p.X.Label.Text = axisLabel(desc)
	p.Y.Label.Text = desc.PrimaryMetric

	line, points, err := plotter.NewLinePoints(xyPoints(xs, ys))
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid(), line, points)
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// linearityPlot overlays the measured primary metric with its least
// squares fit, the quick sanity check for a response expected to be
// linear in the load.
func (a *Assembler) linearityPlot(table *sweep.ResultTable, desc analysis.Descriptor, path string) error {
	xs, ys := metricSeries(table, desc.PrimaryMetric)
	if len(xs) < 2 {
		return fmt.Errorf("metric %s has %d usable points", desc.PrimaryMetric, len(xs))
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	fit := make([]float64, len(xs))
	for i, x := range xs {
		fit[i] = alpha + beta*x
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Linearity Check: %s vs %s", desc.ParameterName, desc.PrimaryMetric)
	p.X.Label.Text = axisLabel(desc)
	p.Y.Label.Text = desc.PrimaryMetric
	p.Legend.Top = true

	actual, pts, err := plotter.NewLinePoints(xyPoints(xs, ys))
	if err != nil {
		return err
	}
	fitLine, err := plotter.NewLine(xyPoints(xs, fit))
	if err != nil {
		return err
	}
	fitLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(plotter.NewGrid(), actual, pts, fitLine)
	p.Legend.Add("actual", actual, pts)
	p.Legend.Add(fmt.Sprintf("fit y=%.4gx+%.4g", beta, alpha), fitLine)
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// overlayPlot draws every overlay metric normalized to [0,1] so series
// of different magnitudes share one frame.
func (a *Assembler) overlayPlot(table *sweep.ResultTable, desc analysis.Descriptor, path string) error {
	p := plot.New()
	p.Title.Text = "Metric Comparison (normalized)"
	p.X.Label.Text = axisLabel(desc)
	p.Y.Label.Text = "normalized value"
	p.Legend.Top = true

	var series []any
	for _, metric := range desc.OverlayMetrics {
		xs, ys := metricSeries(table, metric)
		if len(xs) < 2 {
			continue
		}
		min, max := floats.Min(ys), floats.Max(ys)
		norm := make([]float64, len(ys))
		for i, v := range ys {
			if max > min {
				norm[i] = (v - min) / (max - min)
			} else {
				norm[i] = 0.5
			}
		}
		series = append(series, metric, xyPoints(xs, norm))
	}
	if len(series) == 0 {
		return fmt.Errorf("no overlay metric has enough points")
	}
	if err := plotutil.AddLinePoints(p, series...); err != nil {
		return err
	}
	p.Add(plotter.NewGrid())
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
