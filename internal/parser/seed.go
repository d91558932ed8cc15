// =============================================================================
// Sweepstakes Prefill Generator - Seed File Parser
// =============================================================================
//
// This module parses seed (prefill) files: comma-separated call history files
// such as the one N1MM reads, typically last year's prefill. It handles:
//   - The default 9-column layout CALL,NAME,GRID1,GRID2,SECT,STATE,CK,BIRTHDATE,PREC
//   - An optional leading !!Order!! directive that redefines the column order
//   - Comment lines starting with '#' and blank lines
//   - Non UTF-8 input (see NewDecoder)
//
// ERROR HANDLING:
//   - A line with the wrong field count or an empty callsign is skipped and
//     reported in SeedResult.Skipped; it never aborts the file
//   - A directive missing a required column rejects the whole file
//   - I/O errors abort the file
//
// =============================================================================

package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// =============================================================================
// SEED DECODER
// =============================================================================

// SeedDecoder turns successive split seed rows into observations. The first
// non-empty row may be an !!Order!! directive; every later row is decoded with
// the resulting layout. It is shared by the CSV reader and the XLSX reader.
type SeedDecoder struct {
	origin  string
	layout  Layout
	started bool
}

// NewSeedDecoder creates a decoder for rows read from origin.
func NewSeedDecoder(origin string) *SeedDecoder {
	return &SeedDecoder{origin: origin, layout: DefaultLayout()}
}

// Layout returns the layout in effect.
func (d *SeedDecoder) Layout() Layout {
	return d.layout
}

// Decode handles one row.
//
// RETURNS:
//   - The observation, for a data row.
//   - ErrNotRecord for blank rows and the directive row.
//   - A *LineError for a malformed row (skip it).
//   - An error matching validation.ErrInvalidLayout when the directive is
//     rejected; the caller must stop reading.
func (d *SeedDecoder) Decode(fields []string, line int) (types.Observation, error) {
	if isBlank(fields) {
		return types.Observation{}, ErrNotRecord
	}

	if !d.started {
		d.started = true
		if IsDirective(fields) {
			layout, err := ParseDirective(fields)
			if err != nil {
				return types.Observation{}, fmt.Errorf("%s:%d: %w", d.origin, line, err)
			}
			d.layout = layout
			return types.Observation{}, ErrNotRecord
		}
	}

	return d.layout.Decode(fields, d.origin, line)
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// CSV SEED READER
// =============================================================================

// SeedResult holds everything read from one seed file.
type SeedResult struct {
	// Origin is the name of the file the data came from.
	Origin string

	// Layout is the layout that was applied.
	Layout Layout

	// Observations holds one entry per valid data line, in file order.
	Observations []types.Observation

	// Skipped holds one entry per malformed line.
	Skipped []*LineError

	// Records is the number of non-comment, non-blank lines read.
	Records int
}

// ReadSeed parses a comma-separated seed file.
//
// PARAMETERS:
//   - r: The decoded (UTF-8) file contents.
//   - origin: The file name, used in diagnostics.
//
// RETURNS:
//   - A SeedResult; malformed lines are listed in Skipped.
//   - An error if the layout is rejected or the input cannot be read. The
//     returned result is nil in that case.
func ReadSeed(r io.Reader, origin string) (*SeedResult, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader)

	dec := NewSeedDecoder(origin)
	result := &SeedResult{Origin: origin}

	for {
		fields, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Records++
				result.Skipped = append(result.Skipped, NewLineError(origin, parseErr.StartLine, "%v", parseErr.Err))
				continue
			}
			return nil, fmt.Errorf("failed to read seed file %s: %w", origin, err)
		}

		line, _ := csvReader.FieldPos(0)
		obs, err := dec.Decode(fields, line)
		switch {
		case err == nil:
			result.Records++
			result.Observations = append(result.Observations, obs)
		case errors.Is(err, ErrNotRecord):
			// blank or directive
		default:
			var lineErr *LineError
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

// configureReader configures the CSV reader for seed files.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Seed files start comments with '#'.
	reader.Comment = '#'

	// Field counts are checked against the layout, line by line.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}
