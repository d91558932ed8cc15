package export

import (
	"fmt"
	"io"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// winTestLine is the fixed-width WinTest .xdt layout: callsign, class,
// callsign again, check and section.
const winTestLine = "%-11s %-2s%-10s%-4s%-4s"

// WriteWinTest writes a WinTest .xdt history file. Empty fields are replaced
// by WinTest's placeholders ("-" class, "--" check, "---" section) so the
// columns stay aligned, and a known name is appended in parentheses.
// Lines are CR-LF terminated.
func WriteWinTest(w io.Writer, recs []types.Record, opts Options) error {
	lw := newLineWriter(w, CRLF)

	lw.linef("# TITLE %d %s data", opts.Generated.Year(), opts.Organization)

	for _, r := range recs {
		line := formatWinTest(r)
		if r.Name != "" {
			line += " (" + r.Name + ")"
		}
		lw.line(line)
	}

	return lw.flush()
}

func formatWinTest(r types.Record) string {
	return fmt.Sprintf(winTestLine,
		r.Callsign,
		orDefault(r.Precedence, "-"),
		r.Callsign,
		orDefault(r.Check, "--"),
		orDefault(r.Section, "---"),
	)
}
