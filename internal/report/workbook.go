package report

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"fesweep/internal/analysis"
	"fesweep/internal/sweep"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"
)

// Sheet names of the workbook.
const (
	sheetResults    = "Results"
	sheetSummary    = "Summary"
	sheetMaterial   = "Material"
	sheetStatistics = "Statistics"
)

// writeWorkbook emits the multi-sheet report file and returns its path.
func (a *Assembler) writeWorkbook(table *sweep.ResultTable, spec sweep.Spec, desc analysis.Descriptor, withStats bool) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResults); err != nil {
		return "", err
	}
	columns := metricColumns(table, desc)
	if err := a.fillResults(f, table, desc, columns); err != nil {
		return "", err
	}
	if err := a.fillSummary(f, table, spec, desc); err != nil {
		return "", err
	}
	if err := a.fillMaterial(f, spec, desc); err != nil {
		return "", err
	}
	if withStats {
		if err := a.fillStatistics(f, table, columns); err != nil {
			return "", err
		}
	}

	name := fmt.Sprintf("%s_sweep_%s.xlsx", desc.Kind, a.now().Format("20060102_150405"))
	path := filepath.Join(a.OutDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if fv, isFloat := v.(float64); isFloat && math.IsNaN(fv) {
			// Unresolved values stay blank cells.
			continue
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// fillResults writes one raw row per run, failed rows included with
// their error text verbatim.
func (a *Assembler) fillResults(f *excelize.File, table *sweep.ResultTable, desc analysis.Descriptor, columns []string) error {
	header := []any{"Run", fmt.Sprintf("%s (%s)", desc.ParameterName, desc.ParameterUnit), "Status", "Error"}
	for _, c := range columns {
		header = append(header, c)
	}
	if err := setRow(f, sheetResults, 1, header...); err != nil {
		return err
	}
	for i, r := range table.Runs {
		row := []any{r.RunNumber, r.ParamValue, string(r.Status), r.Err}
		for _, c := range columns {
			if v, ok := r.Scalars[c]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		if err := setRow(f, sheetResults, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) fillSummary(f *excelize.File, table *sweep.ResultTable, spec sweep.Spec, desc analysis.Descriptor) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	ok, failed := table.Counts()
	rows := [][]any{
		{"Sweep ID", table.SweepID},
		{"Analysis", desc.Title},
		{"Parameter", desc.ParameterName},
		{"Unit", desc.ParameterUnit},
		{"Min", spec.ParamMin},
		{"Max", spec.ParamMax},
		{"Steps", spec.Steps},
		{"Total Runs", len(table.Runs)},
		{"Successful", ok},
		{"Failed", failed},
		{"Generated", a.now().Format("2006-01-02 15:04:05")},
	}
	for i, r := range rows {
		if err := setRow(f, sheetSummary, i+1, r...); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) fillMaterial(f *excelize.File, spec sweep.Spec, desc analysis.Descriptor) error {
	if _, err := f.NewSheet(sheetMaterial); err != nil {
		return err
	}
	if err := setRow(f, sheetMaterial, 1, "Property", "Unit", "Value"); err != nil {
		return err
	}
	keys := make([]string, 0, len(spec.Material))
	for k := range spec.Material {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		name, unit := k, ""
		if ps, ok := desc.MaterialSchema[k]; ok {
			name, unit = ps.Name, ps.Unit
		}
		if err := setRow(f, sheetMaterial, i+2, name, unit, spec.Material[k]); err != nil {
			return err
		}
	}
	return nil
}

// fillStatistics writes min/max/mean/std per metric over the successful
// runs. Location and node-id metrics are positions, not measurements,
// and are left out.
func (a *Assembler) fillStatistics(f *excelize.File, table *sweep.ResultTable, columns []string) error {
	if _, err := f.NewSheet(sheetStatistics); err != nil {
		return err
	}
	if err := setRow(f, sheetStatistics, 1, "Metric", "Min", "Max", "Mean", "Std Dev"); err != nil {
		return err
	}
	row := 2
	for _, c := range columns {
		if isLocationMetric(c) {
			continue
		}
		_, ys := metricSeries(table, c)
		if len(ys) == 0 {
			continue
		}
		min, max := ys[0], ys[0]
		for _, v := range ys[1:] {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		mean, std := stat.MeanStdDev(ys, nil)
		if len(ys) < 2 {
			std = 0
		}
		if err := setRow(f, sheetStatistics, row, c, min, max, mean, std); err != nil {
			return err
		}
		row++
	}
	return nil
}

func isLocationMetric(key string) bool {
	for _, suffix := range []string{"_node", "_x_m", "_y_m", "_z_m"} {
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
