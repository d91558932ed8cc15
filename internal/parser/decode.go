package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no input encoding is configured.
const DefaultEncoding = "UTF-8"

// encodings maps the accepted (upper-cased) encoding names to decoders.
// Older logging programs write Latin-1 or Windows-1252; UTF-8 input may start
// with a byte order mark, which is stripped.
var encodings = map[string]encoding.Encoding{
	"UTF-8":        unicode.UTF8BOM,
	"UTF8":         unicode.UTF8BOM,
	"ISO-8859-1":   charmap.ISO8859_1,
	"LATIN1":       charmap.ISO8859_1,
	"LATIN-1":      charmap.ISO8859_1,
	"WINDOWS-1252": charmap.Windows1252,
	"CP1252":       charmap.Windows1252,
}

// SupportedEncoding reports whether name is an accepted input encoding.
func SupportedEncoding(name string) bool {
	_, ok := encodings[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// NewDecoder wraps r so that it yields UTF-8 text decoded from the named
// encoding. An empty name means DefaultEncoding.
func NewDecoder(r io.Reader, name string) (io.Reader, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	enc, ok := encodings[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
