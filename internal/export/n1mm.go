package export

import (
	"io"
	"strings"

	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// N1MMOrder is the column directive written after the N1MM header comment.
// It is read back by the seed parser, so the N1MM file can seed a later run.
const N1MMOrder = "!!Order!!, CALL, EXCH1, CK, SECT"

// WriteN1MM writes an N1MM Logger+ call history file:
//
//	# NCCC call history generated 2024-11-01
//	!!Order!!, CALL, EXCH1, CK, SECT
//	N3EN,A,56,MDC
//
// Lines are LF terminated.
func WriteN1MM(w io.Writer, recs []types.Record, opts Options) error {
	lw := newLineWriter(w, LF)

	lw.linef("# %s call history generated %s", opts.Organization, opts.Generated.Format("2006-01-02"))
	lw.line(N1MMOrder)

	for _, r := range recs {
		lw.line(strings.Join([]string{r.Callsign, r.Precedence, r.Check, r.Section}, ","))
	}

	return lw.flush()
}
