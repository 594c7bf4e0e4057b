package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fesweep/internal/analysis"
	"fesweep/internal/artifact"
	"fesweep/internal/config"
	"fesweep/internal/logging"
	"fesweep/internal/mesh"
	"fesweep/internal/report"
	"fesweep/internal/solver"
	"fesweep/internal/store"
	"fesweep/internal/sweep"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runKind      string
	runMeshPath  string
	runOutDir    string
	runMin       float64
	runMax       float64
	runSteps     int
	runDry       bool
	runNoCapture bool
	runMaterial  []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a parametric sweep",
	Example: `  fesweep run --kind structural --mesh bracket.mesh.json
  fesweep run --kind thermal --mesh plate.mesh.json --min 1000 --max 8000 --steps 15
  fesweep run --kind modal --mesh beam.mesh.json --mat density=2700 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeSweep(cmd)
	},
}

func init() {
	runCmd.Flags().StringVar(&runKind, "kind", "", "analysis kind (see 'fesweep kinds')")
	runCmd.Flags().StringVar(&runMeshPath, "mesh", "", "mesh exchange file from the upstream mesher")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "output directory (overrides config)")
	runCmd.Flags().Float64Var(&runMin, "min", 0, "parameter range minimum (default: kind's default)")
	runCmd.Flags().Float64Var(&runMax, "max", 0, "parameter range maximum (default: kind's default)")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "number of sweep steps (default: kind's default)")
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "use the simulated solver backend")
	runCmd.Flags().BoolVar(&runNoCapture, "no-capture", false, "disable per-run artifact capture")
	runCmd.Flags().StringArrayVar(&runMaterial, "mat", nil, "material property override, key=value (repeatable)")
	_ = runCmd.MarkFlagRequired("kind")
	_ = runCmd.MarkFlagRequired("mesh")
}

func executeSweep(cmd *cobra.Command) error {
	outDir := cfg.OutputDir
	if runOutDir != "" {
		outDir = runOutDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	placement := analysis.DefaultPlacement()
	placement.Tolerance = cfg.SelectTolerance
	registry := analysis.DefaultRegistry(placement)

	kind := analysis.Kind(runKind)
	adapter, err := registry.Lookup(kind)
	if err != nil {
		return err
	}
	desc := adapter.Descriptor()

	material := analysis.DefaultMaterial(desc)
	if err := applyMaterialOverrides(material, runMaterial); err != nil {
		return err
	}

	spec := sweep.Spec{
		Kind:     kind,
		ParamMin: desc.DefaultRange.Min,
		ParamMax: desc.DefaultRange.Max,
		Steps:    desc.DefaultRange.Steps,
		Material: material,
		Capture:  cfg.Capture.Enabled && !runNoCapture,
	}
	if override, ok := cfg.Sweeps[string(kind)]; ok {
		spec.ParamMin, spec.ParamMax, spec.Steps = override.Apply(spec.ParamMin, spec.ParamMax, spec.Steps)
	}
	if cmd.Flags().Changed("min") {
		spec.ParamMin = runMin
	}
	if cmd.Flags().Changed("max") {
		spec.ParamMax = runMax
	}
	if cmd.Flags().Changed("steps") {
		spec.Steps = runSteps
	}

	meshData, err := mesh.ReadFile(runMeshPath)
	if err != nil {
		return err
	}
	logger.Info("mesh loaded",
		zap.String("path", runMeshPath),
		zap.Int("nodes", meshData.NodeCount()),
		zap.Int("elements", meshData.ElementCount()))
	logger.Info("boundary selection tolerance in effect",
		zap.Float64("tolerance_m", placement.Tolerance))

	launchCfg := cfg.Solver
	if runDry {
		launchCfg.Mode = solver.ModeSim
	}

	var capturer *artifact.Capturer
	if spec.Capture {
		capturer = &artifact.Capturer{
			OutDir: outDir,
			Log:    logging.Named(logger, logging.CategoryArtifact),
		}
	}

	driver := sweep.NewDriver(sweep.DriverConfig{
		Registry: registry,
		Launcher: func() (solver.Session, error) {
			return solver.Launch(launchCfg, logging.Named(logger, logging.CategorySolver))
		},
		Capturer:      capturer,
		CaptureDetail: cfg.Capture.Detail,
		Logger:        logging.Named(logger, logging.CategorySweep),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, artifacts, runErr := driver.Run(ctx, spec, meshData)
	if runErr != nil && (table == nil || len(table.Runs) == 0) {
		return runErr
	}

	assembler := report.NewAssembler(outDir,
		time.Duration(cfg.Capture.FrameDelayMs)*time.Millisecond,
		logging.Named(logger, logging.CategoryReport))
	bundle, err := assembler.Assemble(table, artifacts, spec, desc)
	if err != nil {
		return err
	}

	if cfg.HistoryDB != "" {
		if err := recordHistory(cfg, table, spec, desc, bundle.WorkbookPath); err != nil {
			logger.Warn("sweep history not recorded", zap.Error(err))
		}
	}

	printSweepSummary(table, desc, bundle)
	if runErr != nil {
		return fmt.Errorf("sweep interrupted after %d of %d runs: %w", len(table.Runs), spec.Steps, runErr)
	}
	return nil
}

func applyMaterialOverrides(m analysis.MaterialProfile, overrides []string) error {
	for _, raw := range overrides {
		key, value, found := strings.Cut(raw, "=")
		if !found {
			return fmt.Errorf("material override %q is not key=value", raw)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("material override %q: %w", raw, err)
		}
		m[strings.TrimSpace(key)] = v
	}
	return nil
}

func recordHistory(cfg config.Config, table *sweep.ResultTable, spec sweep.Spec, desc analysis.Descriptor, workbook string) error {
	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.RecordSweep(table, spec, desc, workbook)
}

func printSweepSummary(table *sweep.ResultTable, desc analysis.Descriptor, bundle *report.Bundle) {
	ok, failed := table.Counts()
	fmt.Printf("\nSweep %s complete: %d runs (%d ok, %d failed)\n",
		table.SweepID, len(table.Runs), ok, failed)
	fmt.Printf("  Workbook:   %s\n", bundle.WorkbookPath)
	for _, p := range bundle.PlotPaths {
		fmt.Printf("  Plot:       %s\n", p)
	}
	for channel, p := range bundle.Animations {
		fmt.Printf("  Animation:  %s (%s)\n", p, channel)
	}
	for _, r := range table.Runs {
		if r.Status == sweep.StatusFailed {
			fmt.Printf("  Run %d failed: %s\n", r.RunNumber, r.Err)
		}
	}
}
