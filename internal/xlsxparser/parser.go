// =============================================================================
// Sweepstakes Prefill Generator - XLSX Seed Reader
// =============================================================================
//
// This module reads seed (prefill) data kept in an Excel workbook instead of
// a comma-separated file. Clubs often maintain their roster in a spreadsheet;
// exporting it to CSV first loses leading zeros in checks and is easy to get
// wrong, so the generator reads the workbook directly.
//
// WORKBOOK STRUCTURE:
//   Only the first sheet is read. Its rows are treated exactly like the lines
//   of a CSV seed file:
//
//   Row 1: !!Order!! | CALL | EXCH1 | CK | SECT
//   Row 2: WZ6Z      | B    | 20    | ORG
//
//   - The first non-empty row may be an !!Order!! directive.
//   - Without a directive the default 9-column layout applies.
//   - Rows whose first cell starts with '#' are comments.
//
// Excel drops trailing empty cells, so short rows are padded to the layout
// width before decoding.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sweeps-prefill/internal/parser"
)

// Extension is the file extension that selects this reader.
const Extension = ".xlsx"

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Extension)
}

// ReadSeed reads seed observations from the first sheet of a workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - A SeedResult; malformed rows are listed in Skipped.
//   - An error if the workbook cannot be opened or read, or if its
//     !!Order!! directive is rejected.
func ReadSeed(path string) (*parser.SeedResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("seed workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", sheetName, err)
	}

	return decodeRows(rows, path)
}

// decodeRows runs sheet rows through the seed decoder. Row numbers are
// 1-based, as Excel shows them.
func decodeRows(rows [][]string, origin string) (*parser.SeedResult, error) {
	dec := parser.NewSeedDecoder(origin)
	result := &parser.SeedResult{Origin: origin}

	for i, row := range rows {
		if isComment(row) {
			continue
		}

		obs, err := dec.Decode(padRow(row, len(dec.Layout().Columns)), i+1)
		switch {
		case err == nil:
			result.Records++
			result.Observations = append(result.Observations, obs)
		case errors.Is(err, parser.ErrNotRecord):
			// Blank row or directive.
		default:
			var lineErr *parser.LineError
			if errors.As(err, &lineErr) {
				result.Records++
				result.Skipped = append(result.Skipped, lineErr)
				continue
			}
			return nil, err
		}
	}

	result.Layout = dec.Layout()
	return result, nil
}

// isComment reports whether a row is a '#' comment.
func isComment(row []string) bool {
	return len(row) > 0 && strings.HasPrefix(strings.TrimSpace(row[0]), "#")
}

// padRow extends a row with empty cells up to width. Longer rows are
// returned unchanged so the decoder can reject them.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
