// =============================================================================
// Sweepstakes Prefill Generator - Exporters
// =============================================================================
//
// This package renders reconciled records in the call-history formats read by
// contest logging programs. Every exporter has the same shape:
//
//   func(w io.Writer, recs []types.Record, opts Options) error
//
// Records arrive sorted ascending by callsign and are written in that order.
// Exporters never sort, filter or modify records, and an empty record slice
// produces a file holding only the format's header.
//
// FORMATS:
//   - n1mm     : comma separated with an !!Order!! directive (LF)
//   - wintest  : fixed-width .xdt (CR-LF)
//   - writelog : tagged <FIELD:n>value stanzas (CR-LF)
//   - trlog    : TRMASTER.ASC =X segments (CR-LF)
//   - xlsx     : review workbook for manual inspection
//   - seed     : full nine-column seed file for next year (CR-LF), opt-in
//
// =============================================================================

package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// Line terminators.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// ErrUnknownFormat is returned by Lookup for a format that is not registered.
var ErrUnknownFormat = errors.New("unknown export format")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options carries the values exporters put in their headers.
type Options struct {
	// Generated is the time the export was produced. WinTest uses its year and
	// N1MM its date.
	Generated time.Time

	// Organization names the club publishing the file.
	// Default: "NCCC"
	Organization string

	// Program is written in the WriteLog header line.
	// Default: "WriteLog"
	Program string
}

// DefaultOptions returns the default export options stamped with now.
func DefaultOptions(now time.Time) Options {
	return Options{
		Generated:    now,
		Organization: "NCCC",
		Program:      "WriteLog",
	}
}

// =============================================================================
// FORMAT REGISTRY
// =============================================================================

// Exporter renders records to w.
type Exporter func(w io.Writer, recs []types.Record, opts Options) error

// Format describes a registered export format.
type Format struct {
	// Name is the identifier used in configuration and on the command line.
	Name string

	// DefaultFile is the output file name used unless configured otherwise.
	DefaultFile string

	// Write renders the records.
	Write Exporter

	// Optional formats are written only when selected by name.
	Optional bool
}

// Formats holds every export format keyed by name.
var Formats = map[string]Format{
	"n1mm":     {Name: "n1mm", DefaultFile: "prefill_n1mm.txt", Write: WriteN1MM},
	"wintest":  {Name: "wintest", DefaultFile: "prefill_wintest.xdt", Write: WriteWinTest},
	"writelog": {Name: "writelog", DefaultFile: "prefill_writelog.txt", Write: WriteWriteLog},
	"trlog":    {Name: "trlog", DefaultFile: "TRMASTER.ASC", Write: WriteTRLog},
	"xlsx":     {Name: "xlsx", DefaultFile: "prefill_review.xlsx", Write: WriteXLSX},
	"seed":     {Name: "seed", DefaultFile: "prefill_seed.txt", Write: WriteSeed, Optional: true},
}

// Names returns the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Formats))
	for name := range Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultNames returns the sorted names of the formats written when none are
// selected.
func DefaultNames() []string {
	names := make([]string, 0, len(Formats))
	for _, name := range Names() {
		if !Formats[name].Optional {
			names = append(names, name)
		}
	}
	return names
}

// Lookup returns the format registered under name, case-insensitively.
func Lookup(name string) (Format, error) {
	f, ok := Formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// =============================================================================
// LINE WRITER
// =============================================================================

// lineWriter writes terminated lines through a buffer and keeps the first
// error, so exporters can write every line and check once at the end.
type lineWriter struct {
	w   *bufio.Writer
	eol string
	err error
}

func newLineWriter(w io.Writer, eol string) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w), eol: eol}
}

// line writes s followed by the line terminator.
func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	if _, lw.err = lw.w.WriteString(s); lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString(lw.eol)
}

// linef formats a line and writes it with the line terminator.
func (lw *lineWriter) linef(format string, args ...any) {
	lw.line(fmt.Sprintf(format, args...))
}

// flush flushes the buffer and returns the first error seen.
func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
