package sweep

import (
	"context"
	"fmt"
	"time"

	"fesweep/internal/analysis"
	"fesweep/internal/artifact"
	"fesweep/internal/mesh"
	"fesweep/internal/solver"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Launcher acquires the backend session a sweep will exclusively own.
type Launcher func() (solver.Session, error)

// DriverConfig wires a Driver. Registry and Launcher are required;
// Capturer is optional (no artifacts when absent).
type DriverConfig struct {
	Registry *analysis.Registry
	Launcher Launcher
	Capturer *artifact.Capturer

	// CaptureDetail additionally captures the expensive detail channels
	// on the first and final run.
	CaptureDetail bool

	Logger *zap.Logger
}

// Driver executes sweeps. It is generic over analysis kind: all
// kind-specific behavior is reached through the registry's adapters,
// the driver itself never branches on kind.
type Driver struct {
	registry      *analysis.Registry
	launcher      Launcher
	capturer      *artifact.Capturer
	captureDetail bool
	log           *zap.Logger
}

// NewDriver builds a Driver from its wiring.
func NewDriver(cfg DriverConfig) *Driver {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		registry:      cfg.Registry,
		launcher:      cfg.Launcher,
		capturer:      cfg.Capturer,
		captureDetail: cfg.CaptureDetail,
		log:           log,
	}
}

// Run executes the sweep: exactly spec.Steps runs, strictly sequential,
// records appended in run order. Failures scoped to a single run are
// recorded and the sweep continues; only pre-sweep conditions (invalid
// spec, unknown kind, bad mesh, session launch failure) or cancellation
// return an error. On cancellation the partial table is returned
// alongside the context's error; cancellation is checked only between
// runs, never mid-solve.
func (d *Driver) Run(ctx context.Context, spec Spec, m *mesh.Data) (*ResultTable, *artifact.Set, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	adapter, err := d.registry.Lookup(spec.Kind)
	if err != nil {
		return nil, nil, err
	}
	if err := analysis.ValidateMaterial(adapter.Descriptor(), spec.Material); err != nil {
		return nil, nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	session, err := d.launcher()
	if err != nil {
		return nil, nil, fmt.Errorf("launch solver session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			d.log.Warn("session close failed", zap.Error(cerr))
		}
	}()

	table := &ResultTable{SweepID: uuid.NewString(), Kind: spec.Kind}
	set := artifact.NewSet()
	values := ParamValues(spec.ParamMin, spec.ParamMax, spec.Steps)
	desc := adapter.Descriptor()

	d.log.Info("sweep started",
		zap.String("sweep_id", table.SweepID),
		zap.String("kind", string(spec.Kind)),
		zap.String("parameter", desc.ParameterName),
		zap.Float64("min", spec.ParamMin),
		zap.Float64("max", spec.ParamMax),
		zap.Int("steps", spec.Steps))

	for i, value := range values {
		runNumber := i + 1
		// Courtesy checkpoint between runs; an in-flight solve is never
		// interrupted.
		if i > 0 {
			if err := ctx.Err(); err != nil {
				d.log.Warn("sweep cancelled between runs",
					zap.Int("completed_runs", len(table.Runs)))
				return table, set, err
			}
		}

		rec := d.executeRun(ctx, session, adapter, m, spec, runNumber, len(values), value, set)
		table.Runs = append(table.Runs, rec)

		if rec.Status == StatusOK {
			d.log.Info("run complete",
				zap.Int("run", runNumber),
				zap.Int("of", len(values)),
				zap.Float64(desc.ParameterKey, value))
		} else {
			d.log.Warn("run failed, sweep continues",
				zap.Int("run", runNumber),
				zap.Int("of", len(values)),
				zap.Float64(desc.ParameterKey, value),
				zap.String("error", rec.Err))
		}
	}

	ok, failed := table.Counts()
	d.log.Info("sweep finished",
		zap.String("sweep_id", table.SweepID),
		zap.Int("successful", ok),
		zap.Int("failed", failed),
		zap.Int("artifacts", set.Len()))
	return table, set, nil
}

// executeRun performs one run and converts every run-scoped failure into
// a failed record. Setup, solve, and extraction errors are expected
// outcomes here, not exceptions; nothing escapes the per-run boundary.
func (d *Driver) executeRun(
	ctx context.Context,
	session solver.Session,
	adapter analysis.Adapter,
	m *mesh.Data,
	spec Spec,
	runNumber, totalRuns int,
	value float64,
	set *artifact.Set,
) RunRecord {
	rec := RunRecord{
		RunNumber:  runNumber,
		ParamValue: value,
		Timestamp:  time.Now(),
	}

	if err := adapter.PrepareRun(session, m, spec.Material, value); err != nil {
		return failRun(rec, err)
	}
	if err := session.Solve(ctx); err != nil {
		return failRun(rec, &solver.SolveError{Err: err})
	}
	scalars, err := adapter.ExtractResults(session, m, value)
	if err != nil {
		return failRun(rec, fmt.Errorf("result extraction: %w", err))
	}
	rec.Status = StatusOK
	rec.Scalars = scalars

	if d.capturer != nil && spec.Capture {
		detail := d.captureDetail && (runNumber == 1 || runNumber == totalRuns)
		channels := adapter.ArtifactChannels(detail)
		paths := d.capturer.Capture(session, runNumber, channels)
		if len(paths) > 0 {
			rec.Artifacts = paths
			for _, ch := range channels {
				if p, ok := paths[ch.Name]; ok {
					set.Add(ch.Name, p)
				}
			}
		}
	}
	return rec
}

func failRun(rec RunRecord, err error) RunRecord {
	rec.Status = StatusFailed
	rec.Err = err.Error()
	return rec
}
