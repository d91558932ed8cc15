package parser

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
	"github.com/ginjaninja78/sweeps-prefill/internal/validation"
)

// OrderDirective starts a seed line that declares the column order,
// e.g. "!!Order!!,Call,Name,Loc1,Sect,State,CK,BirthDate,Exch1,".
const OrderDirective = "!!Order!!"

// Layout is the column order of a seed file.
type Layout struct {
	// Columns holds one entry per declared position.
	Columns []types.Column

	// Names are the column names as declared (or the canonical names for the
	// default layout).
	Names []string

	// Declared is true when the layout came from an !!Order!! directive.
	Declared bool
}

// DefaultLayout is the 9-column layout used when no directive is present.
func DefaultLayout() Layout {
	cols := types.DefaultColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.String()
	}
	return Layout{Columns: cols, Names: names}
}

// IsDirective reports whether a split seed line is an !!Order!! directive.
func IsDirective(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), OrderDirective)
}

// ParseDirective builds a Layout from a split !!Order!! line. Trailing empty
// names are dropped. Unknown names are kept as ignored columns. The layout is
// validated; a layout missing a required column is returned with an error
// matching validation.ErrInvalidLayout.
func ParseDirective(fields []string) (Layout, error) {
	if !IsDirective(fields) {
		return Layout{}, fmt.Errorf("not an %s directive", OrderDirective)
	}

	names := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		names = append(names, strings.TrimSpace(f))
	}
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}

	layout := Layout{
		Columns:  make([]types.Column, len(names)),
		Names:    names,
		Declared: true,
	}
	for i, name := range names {
		layout.Columns[i] = types.LookupColumn(name)
	}

	if err := validation.ValidateLayout(layout.Columns); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Decode turns the fields of one seed data line into an observation.
// A line must have exactly len(Columns) fields. Under a declared layout one
// extra empty trailing field is tolerated, since N1MM ends both the directive
// and its data lines with a comma.
func (l Layout) Decode(fields []string, origin string, line int) (types.Observation, error) {
	n := len(l.Columns)
	if l.Declared && len(fields) == n+1 && strings.TrimSpace(fields[n]) == "" {
		fields = fields[:n]
	}
	if len(fields) != n {
		return types.Observation{}, NewLineError(origin, line, "expected %d fields, got %d", n, len(fields))
	}

	obs := types.Observation{
		Year:   types.SeedYear,
		Kind:   types.SourceSeed,
		Origin: origin,
		Line:   line,
	}
	for i, col := range l.Columns {
		v := strings.TrimSpace(fields[i])
		switch col {
		case types.ColumnCall:
			obs.Callsign = strings.ToUpper(v)
		case types.ColumnName:
			obs.Name = v
		case types.ColumnGrid1:
			obs.Grid1 = v
		case types.ColumnGrid2:
			obs.Grid2 = v
		case types.ColumnSection:
			obs.Section = v
		case types.ColumnState:
			obs.State = v
		case types.ColumnCheck:
			obs.Check = v
		case types.ColumnBirthdate:
			obs.Birthdate = v
		case types.ColumnPrecedence:
			obs.Precedence = v
		}
	}

	if obs.Callsign == "" {
		return types.Observation{}, NewLineError(origin, line, "empty callsign")
	}
	return obs, nil
}
