package format

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the detected kind of an uploaded document. Every upload gets
// exactly one Format; Unknown means no extractor applies.
type Format string

const (
	Unknown Format = "unknown"
	PDF     Format = "pdf"
	Image   Format = "image"
	Text    Format = "text"
	CSV     Format = "csv"
	Excel   Format = "excel"
	Video   Format = "video"
	Audio   Format = "audio"
)

// All lists the routable formats in a stable order.
var All = []Format{PDF, Image, Text, CSV, Excel, Video, Audio}

func (f Format) String() string { return string(f) }

var extensionTable = map[string]Format{
	"pdf": PDF,

	"jpg": Image, "jpeg": Image, "png": Image, "gif": Image,
	"bmp": Image, "tiff": Image, "tif": Image, "webp": Image,

	"txt": Text, "md": Text, "rtf": Text, "html": Text, "htm": Text,

	"csv": CSV,

	"xlsx": Excel, "xls": Excel,

	"mp4": Video, "avi": Video, "mov": Video, "mkv": Video,
	"webm": Video, "flv": Video, "wmv": Video,

	"m4a": Audio, "mp3": Audio, "wav": Audio, "aac": Audio,
	"flac": Audio, "ogg": Audio,
}

// mimeExact is consulted before mimePrefix so that text/csv and the
// spreadsheet types win over their generic parents.
var mimeExact = map[string]Format{
	"application/pdf": PDF,
	"text/csv":        CSV,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": Excel,
	"application/vnd.ms-excel": Excel,
}

var mimePrefix = []struct {
	prefix string
	format Format
}{
	{"image/", Image},
	{"video/", Video},
	{"audio/", Audio},
	{"text/", Text},
}

// Route classifies an upload by its filename extension and, when the
// extension is missing or unknown, by sniffing the buffered bytes.
func Route(filename string, data []byte) Format {
	if f := FromExtension(filename); f != Unknown {
		return f
	}
	return Sniff(data)
}

// FromExtension looks the lower-cased extension up in the extension table.
func FromExtension(filename string) Format {
	ext := strings.TrimPrefix(filepath.Ext(strings.ToLower(strings.TrimSpace(filename))), ".")
	if ext == "" {
		return Unknown
	}
	if f, ok := extensionTable[ext]; ok {
		return f
	}
	return Unknown
}

// Sniff detects the MIME type of data and maps it, or one of its parent
// types, onto a Format. Empty input is never sniffed.
func Sniff(data []byte) Format {
	if len(data) == 0 {
		return Unknown
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if f := FromMIME(m.String()); f != Unknown {
			return f
		}
	}
	return Unknown
}

// FromMIME maps a MIME string (parameters allowed) to a Format.
func FromMIME(mime string) Format {
	base := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if base == "" {
		return Unknown
	}
	if f, ok := mimeExact[base]; ok {
		return f
	}
	for _, p := range mimePrefix {
		if strings.HasPrefix(base, p.prefix) {
			return p.format
		}
	}
	return Unknown
}
