package exchange

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetDevices        = "Devices"
	SheetLicenses       = "Licenses"
	SheetConfigurations = "Configurations"
	SheetAssignments    = "Assignments"
)

// Workbook column headers.
var (
	DeviceHeader      = []string{"Asset No", "Display Name", "Device Type", "Model", "Version", "State", "Note"}
	LicenseHeader     = []string{"License No", "Name", "License Key", "State", "Note"}
	ConfigHeader      = []string{"Config No", "Name", "Note", "Devices", "Licenses", "Created At", "Updated At"}
	AssignmentsHeader = []string{"Config No", "Kind", "Key"}
)

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// WriteXLSX writes the snapshot as a workbook with one sheet per entity and
// an Assignments sheet listing every membership.
func WriteXLSX(w io.Writer, snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // nothing useful to do with a close error after WriteTo

	sheets := buildSheets(snap)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetDevices)
	if err != nil {
		return fmt.Errorf("locating %s sheet: %w", SheetDevices, err)
	}
	f.SetActiveSheet(index)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func buildSheets(snap *Snapshot) []sheet {
	devices := sheet{name: SheetDevices, header: DeviceHeader, widths: []float64{15, 25, 15, 20, 12, 12, 40}}
	for _, d := range snap.Devices {
		name := ""
		if d.DisplayName != nil {
			name = *d.DisplayName
		}
		devices.rows = append(devices.rows, []any{d.AssetNo, name, d.DeviceType, d.Model, d.Version, d.State, d.Note})
	}

	licenses := sheet{name: SheetLicenses, header: LicenseHeader, widths: []float64{15, 25, 30, 12, 40}}
	for _, l := range snap.Licenses {
		licenses.rows = append(licenses.rows, []any{l.LicenseNo, l.Name, l.LicenseKey, l.State, l.Note})
	}

	configs := sheet{name: SheetConfigurations, header: ConfigHeader, widths: []float64{15, 25, 40, 10, 10, 20, 20}}
	assignments := sheet{name: SheetAssignments, header: AssignmentsHeader, widths: []float64{15, 10, 20}}
	for _, c := range snap.Configurations {
		configs.rows = append(configs.rows, []any{
			c.ConfigNo, c.Name, c.Note, len(c.Devices), len(c.Licenses),
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		})
		for _, key := range c.Devices {
			assignments.rows = append(assignments.rows, []any{c.ConfigNo, "device", key})
		}
		for _, key := range c.Licenses {
			assignments.rows = append(assignments.rows, []any{c.ConfigNo, "license", key})
		}
	}

	return []sheet{devices, licenses, configs, assignments}
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	for col, header := range sh.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(sh.name, cell, header); err != nil {
			return fmt.Errorf("setting header cell %s!%s: %w", sh.name, cell, err)
		}
		if err := f.SetCellStyle(sh.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("setting header style: %w", err)
		}
	}

	for i, width := range sh.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("converting column number: %w", err)
		}
		if err := f.SetColWidth(sh.name, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for r, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sh.name, r+2, err)
		}
	}

	if err := f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header of %s: %w", sh.name, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
