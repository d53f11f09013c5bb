package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names the byte encoding of an export.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingLatin1      Encoding = "latin1"
	EncodingWindows1252 Encoding = "windows-1252"
)

// ErrNotText is returned when the input is not a text file in the requested
// encoding (binary content, or invalid UTF-8 when UTF-8 was demanded).
var ErrNotText = errors.New("input is not text")

const utf8BOM = "\uFEFF"

// ParseEncoding normalizes a user supplied encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "windows-1252", "cp1252":
		return EncodingWindows1252, nil
	}
	return "", fmt.Errorf("unknown encoding %q (use auto, utf-8, latin1 or windows-1252)", s)
}

// Decode reads the whole export and returns it as UTF-8 text.
//
// With EncodingAuto, valid UTF-8 is taken as-is and anything else is read as
// Latin-1, which is what most clock terminals emit. A leading UTF-8 BOM is
// removed. NUL bytes mark binary input and yield ErrNotText.
func Decode(r io.Reader, enc Encoding) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return "", fmt.Errorf("%w: contains NUL bytes", ErrNotText)
	}

	switch enc {
	case EncodingUTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid UTF-8", ErrNotText)
		}
		return strings.TrimPrefix(string(b), utf8BOM), nil
	case EncodingLatin1:
		return decodeWith(b, charmap.ISO8859_1)
	case EncodingWindows1252:
		return decodeWith(b, charmap.Windows1252)
	case EncodingAuto, "":
		if utf8.Valid(b) {
			return strings.TrimPrefix(string(b), utf8BOM), nil
		}
		return decodeWith(b, charmap.ISO8859_1)
	}
	return "", fmt.Errorf("unknown encoding %q", enc)
}

func decodeWith(b []byte, e encoding.Encoding) (string, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), e.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotText, err)
	}
	return string(out), nil
}
