package export

import (
	"io"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// WriteTRLog writes a TR-LOG TRMASTER.ASC file. Each line holds the callsign
// followed by one =X segment per known value:
//
//	N3EN =AMDC =K56 =VA
//
// A is the section, K the check and V the precedence. Empty values are
// omitted entirely. The file has no header. Lines are CR-LF terminated.
func WriteTRLog(w io.Writer, recs []types.Record, _ Options) error {
	lw := newLineWriter(w, CRLF)

	for _, r := range recs {
		var b strings.Builder
		b.WriteString(r.Callsign)
		appendSegment(&b, 'A', r.Section)
		appendSegment(&b, 'K', r.Check)
		appendSegment(&b, 'V', r.Precedence)
		lw.line(b.String())
	}

	return lw.flush()
}

func appendSegment(b *strings.Builder, tag byte, value string) {
	if value == "" {
		return
	}
	b.WriteString(" =")
	b.WriteByte(tag)
	b.WriteString(value)
}
