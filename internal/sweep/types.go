// Package sweep implements the parametric sweep engine: it iterates the
// parameter range, rebuilds the run context through the analysis
// adapter, invokes the solve, extracts results, and accumulates the
// per-run outcome table under the failure-isolation policy. Solver runs
// are expensive; an operator reviewing a multi-hour sweep gets partial
// results, never none.
package sweep

import (
	"fmt"
	"time"

	"fesweep/internal/analysis"
)

// Status of one run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Spec describes one sweep: the analysis kind, the inclusive parameter
// range, the step count, and the material profile.
type Spec struct {
	Kind     analysis.Kind
	ParamMin float64
	ParamMax float64
	Steps    int
	Material analysis.MaterialProfile

	// Capture enables per-run artifact snapshots.
	Capture bool
}

// Validate enforces the spec invariants. Violations are caller errors
// and fail fast before any solver work.
func (s Spec) Validate() error {
	if s.Steps < 1 {
		return fmt.Errorf("sweep requires at least one step, got %d", s.Steps)
	}
	if s.ParamMin > s.ParamMax {
		return fmt.Errorf("parameter range inverted: min %g > max %g", s.ParamMin, s.ParamMax)
	}
	if s.Steps == 1 && s.ParamMin != s.ParamMax {
		return fmt.Errorf("single-step sweep requires min == max, got %g and %g", s.ParamMin, s.ParamMax)
	}
	return nil
}

// ParamValues generates the equally spaced parameter sequence over
// [min, max] inclusive. steps == 1 yields exactly min. Duplicate values
// from a degenerate range are permitted; each still gets its own run.
func ParamValues(min, max float64, steps int) []float64 {
	out := make([]float64, steps)
	if steps == 1 {
		out[0] = min
		return out
	}
	delta := (max - min) / float64(steps-1)
	for i := range out {
		out[i] = min + float64(i)*delta
	}
	// Pin the endpoint against accumulated rounding.
	out[steps-1] = max
	return out
}

// RunRecord is the immutable outcome of one sweep step. Failed runs
// keep their slot in the table with the captured error text.
type RunRecord struct {
	RunNumber  int // 1-based, contiguous
	ParamValue float64
	Status     Status
	// Scalars holds the extracted metrics of an ok run. Unresolved
	// modal entries are NaN.
	Scalars map[string]float64
	// Err is the verbatim failure message of a failed run.
	Err string
	// Artifacts maps channel name to captured image path.
	Artifacts map[string]string
	Timestamp time.Time
}

// ResultTable is the ordered collection of run records of one sweep:
// one row per step, monotonically increasing run numbers, no gaps.
type ResultTable struct {
	SweepID string
	Kind    analysis.Kind
	Runs    []RunRecord
}

// Counts reports successful and failed run totals.
func (t *ResultTable) Counts() (ok, failed int) {
	for _, r := range t.Runs {
		if r.Status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// OKRuns returns the successful records in run order.
func (t *ResultTable) OKRuns() []RunRecord {
	out := make([]RunRecord, 0, len(t.Runs))
	for _, r := range t.Runs {
		if r.Status == StatusOK {
			out = append(out, r)
		}
	}
	return out
}
