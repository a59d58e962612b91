package excel

import (
	"fmt"

	"casesim/app"

	"github.com/xuri/excelize/v2"
)

// Exporter writes simulation and sweep results to an xlsx workbook so
// batch tooling can hand results to analysts without the UI.
type Exporter struct {
	filePath string
}

// NewExporter creates an exporter targeting the given path.
func NewExporter(filePath string) *Exporter {
	return &Exporter{filePath: filePath}
}

// Export writes one workbook. Either result may be nil; at least one must
// be present.
func (e *Exporter) Export(sim *app.SimulationResult, sweep *app.SweepResult) error {
	if sim == nil && sweep == nil {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	first := true
	if sim != nil {
		if err := e.writeDraws(f, sim, first); err != nil {
			return err
		}
		if err := e.writeSummary(f, sim); err != nil {
			return err
		}
		first = false
	}
	if sweep != nil {
		if err := e.writeSweep(f, sweep, first); err != nil {
			return err
		}
	}

	if err := f.SaveAs(e.filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (e *Exporter) sheet(f *excelize.File, name string, replaceDefault bool) error {
	if replaceDefault {
		return f.SetSheetName("Sheet1", name)
	}
	_, err := f.NewSheet(name)
	return err
}

// writeDraws emits one row per draw, one column per outcome.
func (e *Exporter) writeDraws(f *excelize.File, sim *app.SimulationResult, replaceDefault bool) error {
	const sheet = "Draws"
	if err := e.sheet(f, sheet, replaceDefault); err != nil {
		return err
	}

	header := []interface{}{"draw"}
	for _, o := range sim.Outcomes {
		header = append(header, string(o))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write draws header: %w", err)
	}

	for i, probs := range sim.Draws {
		row := make([]interface{}, 0, len(probs)+1)
		row = append(row, i+1)
		for _, v := range probs {
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write draw %d: %w", i, err)
		}
	}
	return nil
}

func (e *Exporter) writeSummary(f *excelize.File, sim *app.SimulationResult) error {
	const sheet = "Summary"
	if err := e.sheet(f, sheet, false); err != nil {
		return err
	}

	header := []interface{}{"outcome", "mean", "median", "std_dev", "q05", "q95"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, s := range sim.Summary {
		row := []interface{}{string(s.Outcome), s.Mean, s.Median, s.StdDev, s.Q05, s.Q95}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i, err)
		}
	}
	return nil
}

// writeSweep emits one row per grid point: x, then one probability column
// per outcome in set order.
func (e *Exporter) writeSweep(f *excelize.File, sweep *app.SweepResult, replaceDefault bool) error {
	const sheet = "Sweep"
	if err := e.sheet(f, sheet, replaceDefault); err != nil {
		return err
	}

	header := []interface{}{sweep.Variable}
	for _, o := range sweep.Outcomes {
		header = append(header, string(o))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write sweep header: %w", err)
	}

	for i, p := range sweep.Points {
		row := []interface{}{p.X}
		for _, o := range sweep.Outcomes {
			row = append(row, p.Probabilities[o])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write sweep row %d: %w", i, err)
		}
	}
	return nil
}
