package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// XLSXSheet is the name of the review workbook's only sheet.
const XLSXSheet = "Prefill"

// xlsxHeader is the header row of the review workbook.
var xlsxHeader = []interface{}{"Call", "Prec", "Check", "Section", "Name", "State", "Year", "Votes"}

// WriteXLSX writes a review workbook with one row per record. Year and Votes
// show how each record was reconciled: a year of -1 means the record came
// from seed data only.
func WriteXLSX(w io.Writer, recs []types.Record, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     opts.Organization,
		Title:       fmt.Sprintf("%d %s prefill review", opts.Generated.Year(), opts.Organization),
		Created:     opts.Generated.UTC().Format("2006-01-02T15:04:05Z"),
		Description: "Reconciled Sweepstakes exchanges",
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := writeXLSXHeader(f); err != nil {
		return err
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []interface{}{r.Callsign, r.Precedence, r.Check, r.Section, r.Name, r.State, r.Year, r.Votes}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Callsign, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeXLSXHeader writes the bold, frozen header row.
func writeXLSXHeader(f *excelize.File) error {
	header := xlsxHeader
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(XLSXSheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if err := f.SetPanes(XLSXSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	return f.SetColWidth(XLSXSheet, "A", "A", 12)
}
