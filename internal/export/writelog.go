package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// WriteLog header and stanza terminators.
const (
	writeLogEndOfHeader = "<EOH>"
	writeLogEndOfRecord = "<EOR>"
)

// WriteWriteLog writes a WriteLog call history file. Each record becomes a
// stanza of length-prefixed tags, one tag per line:
//
//	<CALL:4>N3EN
//	<P:1>A
//	<CK:2>56
//	<ARRL_SECT:3>MDC
//	<EOR>
//
// The length is the character count of the value. Lines are CR-LF
// terminated.
func WriteWriteLog(w io.Writer, recs []types.Record, opts Options) error {
	lw := newLineWriter(w, CRLF)

	lw.linef("%s Sweepstakes Call History File", opts.Program)
	lw.line(writeLogEndOfHeader)

	for _, r := range recs {
		lw.line(writeLogTag("CALL", r.Callsign))
		lw.line(writeLogTag("P", r.Precedence))
		lw.line(writeLogTag("CK", r.Check))
		lw.line(writeLogTag("ARRL_SECT", r.Section))
		lw.line(writeLogEndOfRecord)
	}

	return lw.flush()
}

// writeLogTag renders one <NAME:n>value tag.
func writeLogTag(name, value string) string {
	return fmt.Sprintf("<%s:%d>%s", name, utf8.RuneCountInString(value), value)
}
