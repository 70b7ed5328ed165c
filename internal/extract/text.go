package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

var errNotASCII = errors.New("non-ascii byte")

// textDecoders are attempted in order; the first that succeeds wins.
// Latin-1 accepts every byte sequence, so the ASCII entry only matters
// if Latin-1 is ever removed from the list.
var textDecoders = []struct {
	name   string
	decode func([]byte) (string, error)
}{
	{"utf-8", decodeUTF8},
	{"utf-16", decodeUTF16},
	{"latin-1", decodeLatin1},
	{"ascii", decodeASCII},
}

func decodeUTF8(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8")
	}
	return string(b), nil
}

// decodeUTF16 only accepts input carrying a byte order mark; without one
// almost any even-length buffer would "decode".
func decodeUTF16(b []byte) (string, error) {
	out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeLatin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeASCII(b []byte) (string, error) {
	for _, c := range b {
		if c >= 0x80 {
			return "", errNotASCII
		}
	}
	return string(b), nil
}

// DecodeText converts raw bytes to a string trying each known encoding.
// It never fails: on total failure invalid bytes become U+FFFD.
func DecodeText(b []byte) (string, string) {
	for _, d := range textDecoders {
		if s, err := d.decode(b); err == nil {
			return s, d.name
		}
	}
	return strings.ToValidUTF8(string(b), "�"), "utf-8 (replaced)"
}

func extractText(_ context.Context, _ *Extractor, up Upload) (string, error) {
	text, _ := DecodeText(up.Data)
	if looksLikeHTML(up.Filename, up.Data) {
		return htmlToText([]byte(text))
	}
	return strings.TrimSpace(text), nil
}

func looksLikeHTML(filename string, data []byte) bool {
	name := strings.ToLower(filename)
	if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
		return true
	}
	return mimetype.Detect(data).Is("text/html")
}
