package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// WriteSeed writes the records as a seed file in the default nine-column
// layout (CALL,NAME,GRID1,GRID2,SECT,STATE,CK,BIRTHDATE,PREC), so a run's
// result can seed the next year without losing the descriptive fields.
// There is no header. Values holding a comma are quoted. Lines are CR-LF
// terminated.
func WriteSeed(w io.Writer, recs []types.Record, _ Options) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	cols := types.DefaultColumns()
	row := make([]string, len(cols))
	for _, r := range recs {
		for i, col := range cols {
			row[i] = seedValue(r, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write seed row for %s: %w", r.Callsign, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush seed file: %w", err)
	}
	return nil
}

// seedValue returns the field of r stored in col.
func seedValue(r types.Record, col types.Column) string {
	switch col {
	case types.ColumnCall:
		return r.Callsign
	case types.ColumnName:
		return r.Name
	case types.ColumnGrid1:
		return r.Grid1
	case types.ColumnGrid2:
		return r.Grid2
	case types.ColumnSection:
		return r.Section
	case types.ColumnState:
		return r.State
	case types.ColumnCheck:
		return r.Check
	case types.ColumnBirthdate:
		return r.Birthdate
	case types.ColumnPrecedence:
		return r.Precedence
	}
	return ""
}
