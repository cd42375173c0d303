// Package loader parses one raw CSV snapshot into a tabular form.
//
// Snapshots come out of the ticketing system in whatever encoding the
// exporting workstation used, so decodings are tried in a configurable
// order (cp1252, latin1, utf-8 by default). Fields are kept as text;
// numeric and date coercion is the canonicalizer's job.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/farolhq/farol/pkg/models"
	"github.com/zeebo/blake3"
	"golang.org/x/text/encoding/charmap"
)

// Separator is the field separator used by every snapshot export.
const Separator = ';'

// Loader reads snapshot byte streams.
type Loader struct {
	encodings []string
}

// Option is a functional option for configuring Loader.
type Option func(*Loader)

// WithEncodings overrides the decoding order.
func WithEncodings(encodings []string) Option {
	return func(l *Loader) {
		if len(encodings) > 0 {
			l.encodings = encodings
		}
	}
}

// New creates a snapshot loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		encodings: []string{"cp1252", "latin1", "utf-8"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses one CSV snapshot. A malformed or empty input yields an
// empty table with a warning, never an error; only a byte stream that no
// configured encoding accepts is surfaced as an error.
func (l *Loader) Load(data []byte, tag models.MonthTag) (*models.RawTable, error) {
	table := &models.RawTable{Tag: tag}

	if len(data) == 0 {
		table.Warnings = append(table.Warnings, "empty snapshot input")
		return table, nil
	}

	sum := blake3.Sum256(data)
	table.Fingerprint = hex.EncodeToString(sum[:])

	text, encoding, err := l.decode(data)
	if err != nil {
		return nil, err
	}
	table.Encoding = encoding

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		table.Warnings = append(table.Warnings, fmt.Sprintf("unparseable CSV: %v", err))
		return table, nil
	}
	if len(rows) == 0 {
		table.Warnings = append(table.Warnings, "snapshot has no rows")
		return table, nil
	}

	table.Headers = trimAll(rows[0])
	table.Rows = rows[1:]
	return table, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode tries each configured encoding in order and returns the first
// decoding that succeeds without loss.
//
// ISO8859-1 maps all 256 byte values, so a charmap placed ahead of utf-8
// in the configured order would mojibake every genuine UTF-8 export. A
// stream that carries the UTF-8 BOM or valid multibyte sequences is
// therefore decoded as UTF-8 up front, provided utf-8 is configured at
// all; single-byte streams still follow the configured order.
func (l *Loader) decode(data []byte) (string, string, error) {
	if l.allowsUTF8() {
		if text, ok := sniffUTF8(data); ok {
			return text, "utf-8", nil
		}
	}

	var errs []string
	for _, name := range l.encodings {
		text, err := decodeAs(data, name)
		if err == nil {
			return text, name, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", name, err))
	}
	return "", "", fmt.Errorf("no configured encoding accepts snapshot: %s", strings.Join(errs, "; "))
}

func (l *Loader) allowsUTF8() bool {
	for _, name := range l.encodings {
		switch strings.ToLower(name) {
		case "utf-8", "utf8":
			return true
		}
	}
	return false
}

// sniffUTF8 reports whether the stream is unambiguously UTF-8: either it
// opens with the UTF-8 BOM, or it validates and contains at least one
// multibyte sequence. Pure ASCII is left to the configured order, where
// every decoder agrees on it anyway.
func sniffUTF8(data []byte) (string, bool) {
	hadBOM := bytes.HasPrefix(data, utf8BOM)
	if hadBOM {
		data = data[len(utf8BOM):]
	}
	if !utf8.Valid(data) {
		return "", false
	}
	multibyte := false
	for _, c := range data {
		if c >= utf8.RuneSelf {
			multibyte = true
			break
		}
	}
	if !hadBOM && !multibyte {
		return "", false
	}
	return string(data), true
}

func decodeAs(data []byte, name string) (string, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8")
		}
		return string(data), nil
	case "cp1252", "windows-1252":
		return decodeCharmap(data, charmap.Windows1252)
	case "latin1", "iso-8859-1":
		return decodeCharmap(data, charmap.ISO8859_1)
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, error) {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		r := cm.DecodeByte(c)
		if r == utf8.RuneError {
			return "", fmt.Errorf("byte 0x%02X has no mapping", c)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(strings.TrimPrefix(f, "\ufeff"))
	}
	return out
}
