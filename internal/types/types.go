// =============================================================================
// Sweepstakes Prefill Generator - Shared Types
// =============================================================================
//
// This package contains the types shared by the parsers, the observation
// store, the merge engine and the exporters. Keeping them here avoids import
// cycles between those packages:
//   - parser, cabrillo, xlsxparser : produce Observations
//   - store                        : groups Observations by callsign
//   - merge                        : reduces Observations to Records
//   - export                       : renders Records
//
// =============================================================================

package types

import "strings"

// SeedYear is the year carried by seed (prefill) observations. Any Cabrillo
// observation for the same callsign has a larger year and supersedes it.
const SeedYear = -1

// =============================================================================
// SOURCE KIND
// =============================================================================

// SourceKind identifies where an observation was read from.
type SourceKind string

const (
	// SourceSeed is a prior-year or curated prefill file.
	SourceSeed SourceKind = "seed"

	// SourceCabrillo is a QSO: line from a submitted contest log.
	SourceCabrillo SourceKind = "cabrillo"
)

// String returns the string representation of a source kind.
func (k SourceKind) String() string {
	return string(k)
}

// =============================================================================
// OBSERVATION
// =============================================================================

// Observation is one sighting of a callsign's exchange from one source line.
// Observations are values and are never modified after parsing.
type Observation struct {
	// Callsign is upper-cased and never empty.
	Callsign string

	// Exchange fields.
	Section    string
	Check      string
	Precedence string

	// Year is the 4-digit contest year, or SeedYear for seed data.
	Year int

	// Descriptive fields. Only seed observations carry them.
	Name      string
	Grid1     string
	Grid2     string
	State     string
	Birthdate string

	// Provenance.
	Kind   SourceKind
	Origin string
	Line   int
}

// Record converts the observation into a canonical record holding exactly
// this observation's values.
func (o Observation) Record() Record {
	return Record{
		Callsign:   o.Callsign,
		Section:    o.Section,
		Check:      o.Check,
		Precedence: o.Precedence,
		Year:       o.Year,
		Name:       o.Name,
		Grid1:      o.Grid1,
		Grid2:      o.Grid2,
		State:      o.State,
		Birthdate:  o.Birthdate,
		Votes:      1,
	}
}

// =============================================================================
// CANONICAL RECORD
// =============================================================================

// Record is the reconciled exchange for one callsign. It is derived from the
// observation store on demand and never stored.
type Record struct {
	Callsign string

	Section    string
	Check      string
	Precedence string

	// Year is the latest year seen for the callsign; the value was chosen
	// from observations of that year only.
	Year int

	Name      string
	Grid1     string
	Grid2     string
	State     string
	Birthdate string

	// Votes is the number of observations that shared Year.
	Votes int
}

// =============================================================================
// SEED COLUMNS
// =============================================================================

// Column is a known seed-file column.
type Column int

const (
	// ColumnUnknown marks a declared column that the generator ignores.
	ColumnUnknown Column = iota
	ColumnCall
	ColumnName
	ColumnGrid1
	ColumnGrid2
	ColumnSection
	ColumnState
	ColumnCheck
	ColumnBirthdate
	ColumnPrecedence
)

// columnNames maps every accepted (upper-cased) column name to its column.
var columnNames = map[string]Column{
	"CALL":      ColumnCall,
	"NAME":      ColumnName,
	"GRID1":     ColumnGrid1,
	"LOC1":      ColumnGrid1,
	"GRID2":     ColumnGrid2,
	"LOC2":      ColumnGrid2,
	"SECT":      ColumnSection,
	"SECTION":   ColumnSection,
	"STATE":     ColumnState,
	"CK":        ColumnCheck,
	"CHECK":     ColumnCheck,
	"BIRTHDATE": ColumnBirthdate,
	"PREC":      ColumnPrecedence,
	"EXCH1":     ColumnPrecedence,
	"CLASS":     ColumnPrecedence,
}

// canonicalNames is the name used when a column is printed.
var canonicalNames = map[Column]string{
	ColumnUnknown:    "UNKNOWN",
	ColumnCall:       "CALL",
	ColumnName:       "NAME",
	ColumnGrid1:      "GRID1",
	ColumnGrid2:      "GRID2",
	ColumnSection:    "SECT",
	ColumnState:      "STATE",
	ColumnCheck:      "CK",
	ColumnBirthdate:  "BIRTHDATE",
	ColumnPrecedence: "PREC",
}

// LookupColumn returns the column for a declared name, case-insensitively.
// Unrecognized names return ColumnUnknown.
func LookupColumn(name string) Column {
	return columnNames[strings.ToUpper(strings.TrimSpace(name))]
}

// String returns the canonical column name.
func (c Column) String() string {
	if name, ok := canonicalNames[c]; ok {
		return name
	}
	return canonicalNames[ColumnUnknown]
}

// DefaultColumns is the layout of a seed file without an !!Order!! directive:
// CALL,NAME,GRID1,GRID2,SECT,STATE,CK,BIRTHDATE,PREC.
func DefaultColumns() []Column {
	return []Column{
		ColumnCall,
		ColumnName,
		ColumnGrid1,
		ColumnGrid2,
		ColumnSection,
		ColumnState,
		ColumnCheck,
		ColumnBirthdate,
		ColumnPrecedence,
	}
}

// RequiredColumns are the columns every seed layout must declare.
func RequiredColumns() []Column {
	return []Column{ColumnCall, ColumnSection, ColumnCheck, ColumnPrecedence}
}
