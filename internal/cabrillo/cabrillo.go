// Package cabrillo extracts exchange observations from Cabrillo contest logs.
//
// Only QSO: lines are significant. A Sweepstakes QSO line has 15 whitespace
// separated tokens:
//
//	QSO: 21039 CW 2012-11-03 2100 KM6I  0001 U 75 SCV N3EN  0001 A 56 MDC
//	     freq  mo date       time mycall nr  P CK SEC call  nr   P CK SEC
//
// The logging station's own exchange is discarded; only the worked station's
// callsign, precedence, check and section are kept, together with the year of
// the contact.
package cabrillo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ginjaninja78/sweeps-prefill/internal/parser"
	"github.com/ginjaninja78/sweeps-prefill/internal/types"
)

// QSOTag is the first token of every contact line.
const QSOTag = "QSO:"

// MinTokens is the token count of a QSO line, including the tag. Extra
// trailing tokens such as a transmitter id are ignored.
const MinTokens = 15

// dateLayout is the Cabrillo QSO date format.
const dateLayout = "2006-01-02"

// Token positions after splitting a QSO line.
const (
	posDate       = 3
	posTheirCall  = 10
	posTheirPrec  = 12
	posTheirCheck = 13
	posTheirSect  = 14
)

// ErrNotQSO is returned for lines that are not QSO: lines.
var ErrNotQSO = parser.ErrNotRecord

// MaxLineLength bounds a single log line. Longer lines, such as an oversized
// SOAPBOX: block pasted onto one line, are skipped as malformed.
const MaxLineLength = 1024 * 1024

// headLength is how much of an overlong line is kept to classify it.
const headLength = 64

// ParseLine decodes one Cabrillo line.
//
// It returns ErrNotQSO for header, comment and END-OF-LOG: lines and a
// *parser.LineError for QSO lines that cannot be decoded.
func ParseLine(text, origin string, line int) (types.Observation, error) {
	if !isQSO(text) {
		return types.Observation{}, ErrNotQSO
	}
	tokens := strings.Fields(text)
	if len(tokens) < MinTokens {
		return types.Observation{}, parser.NewLineError(origin, line, "expected %d tokens, got %d", MinTokens, len(tokens))
	}

	date, err := time.Parse(dateLayout, tokens[posDate])
	if err != nil {
		return types.Observation{}, parser.NewLineError(origin, line, "bad QSO date %q", tokens[posDate])
	}

	return types.Observation{
		Callsign:   strings.ToUpper(tokens[posTheirCall]),
		Precedence: tokens[posTheirPrec],
		Check:      tokens[posTheirCheck],
		Section:    tokens[posTheirSect],
		Year:       date.Year(),
		Kind:       types.SourceCabrillo,
		Origin:     origin,
		Line:       line,
	}, nil
}

// Result holds everything read from one log file.
type Result struct {
	// Origin is the name of the log file.
	Origin string

	// Observations holds one entry per valid QSO line, in file order.
	Observations []types.Observation

	// Skipped holds one entry per malformed QSO line.
	Skipped []*parser.LineError

	// Lines is the number of lines read.
	Lines int

	// QSOs is the number of lines starting with QSO:, valid or not.
	QSOs int
}

// Read parses a whole Cabrillo log. Malformed QSO lines and lines longer than
// MaxLineLength are collected in Result.Skipped. A read error stops the file;
// the observations gathered up to that point are returned alongside the
// error.
func Read(r io.Reader, origin string) (*Result, error) {
	reader := bufio.NewReader(r)

	result := &Result{Origin: origin}
	for {
		text, tooLong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("failed to read log %s at line %d: %w", origin, result.Lines+1, err)
		}
		result.Lines++

		if tooLong {
			if isQSO(text) {
				result.QSOs++
			}
			result.Skipped = append(result.Skipped,
				parser.NewLineError(origin, result.Lines, "line longer than %d bytes", MaxLineLength))
			continue
		}

		obs, err := ParseLine(text, origin, result.Lines)
		if errors.Is(err, ErrNotQSO) {
			continue
		}
		result.QSOs++

		var lineErr *parser.LineError
		if errors.As(err, &lineErr) {
			result.Skipped = append(result.Skipped, lineErr)
			continue
		}
		result.Observations = append(result.Observations, obs)
	}
}

// readLine reads one line without its terminator. A line longer than
// MaxLineLength is drained and reported with tooLong set; text then holds
// only its first headLength bytes. io.EOF is returned only when no line is
// left.
func readLine(r *bufio.Reader) (text string, tooLong bool, err error) {
	var line []byte
	started := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && started {
				return string(line), tooLong, nil
			}
			return "", false, err
		}
		started = true

		if !tooLong {
			if len(line)+len(chunk) > MaxLineLength {
				tooLong = true
				line = append(line, chunk[:min(len(chunk), headLength)]...)
				line = line[:min(len(line), headLength)]
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return string(line), tooLong, nil
		}
	}
}

// isQSO reports whether a line carries the QSO: tag.
func isQSO(text string) bool {
	tokens := strings.Fields(text)
	return len(tokens) > 0 && tokens[0] == QSOTag
}
