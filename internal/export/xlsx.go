package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"drai-go/internal/model"
)

const summarySheet = "Resumen"

// XLSX writes a workbook with a "Resumen" sheet and one sheet per area
// listing every week's totals.
func XLSX(w io.Writer, records []model.MetricsRecord) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "write workbook")
	}
	return nil
}

// AreaSheet is the sheet name of area n (1-based).
func AreaSheet(n int) string { return fmt.Sprintf("Área %d", n) }

// Workbook builds the workbook in memory.
func Workbook(records []model.MetricsRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, eris.Wrap(err, "rename summary sheet")
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "header style")
	}

	rows := [][]any{toAny(summaryHeader)}
	for _, r := range records {
		rows = append(rows, summaryRow(r))
	}
	if err := writeRows(f, summarySheet, rows, header); err != nil {
		return nil, err
	}

	for n := 1; n <= model.AreaCount; n++ {
		sheet := AreaSheet(n)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, eris.Wrapf(err, "new sheet %s", sheet)
		}

		keys := totalKeys(records, n)
		head := append([]any{"Semana", "Fecha"}, toAny(keys)...)
		rows := [][]any{{areaName(records, n)}, head}
		for _, r := range records {
			a := r.Area(n)
			row := []any{r.Week, r.ReportDate}
			for _, k := range keys {
				row = append(row, a.Total(k))
			}
			rows = append(rows, row)
		}
		if err := writeRows(f, sheet, rows, 0); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sheet, 2, 2, header); err != nil {
			return nil, eris.Wrapf(err, "style %s", sheet)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return eris.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return eris.Wrapf(err, "write %s row %d", sheet, i+1)
		}
	}
	if headerStyle != 0 {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return eris.Wrapf(err, "style %s", sheet)
		}
	}
	return nil
}

// totalKeys collects the total names of area n across records, in first
// seen order.
func totalKeys(records []model.MetricsRecord, n int) []string {
	var keys []string
	seen := make(map[string]bool)
	for i := range records {
		for _, k := range records[i].Area(n).Totals.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func areaName(records []model.MetricsRecord, n int) string {
	for i := range records {
		if name := records[i].Area(n).Name; name != "" {
			return name
		}
	}
	return AreaSheet(n)
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
