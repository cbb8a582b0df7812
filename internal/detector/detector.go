// Package detector inspects an input path by magic bytes and, when needed,
// inner archive entries, to yield a normalized Kind tag. Generalizes the
// worker's hand-rolled detectMimeTypeFromMagicBytes (processor.go) onto a
// maintained magic-byte sniffing library, the same one other_examples'
// miku-blobproc pdfextract tool uses for the identical purpose.
package detector

import (
	"archive/zip"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/rimerosolutions/entrusted-go/internal/failure"
)

// Family is the coarse kind tag spec's format detector yields.
type Family int

const (
	Unknown Family = iota
	Pdf
	Image
	Ebook
	Office
)

// Kind is the normalized detection result: a Family plus the specific
// sub-kind (e.g. "jpeg", "odt", "docx") used for log messages and for the
// executor's state-machine branch.
type Kind struct {
	Family Family
	Sub    string
}

var imageMimes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/tiff": "tiff",
	"image/bmp":  "bmp",
}

var ebookMimes = map[string]string{
	"application/epub+zip": "epub",
}

// legacyOfficeMimes covers OLE compound files that mimetype does not name
// more precisely. They map to Office by their compound-file magic alone; the
// root entry's class identifier is not read.
var legacyOfficeMimes = map[string]string{
	"application/x-ole-storage": "ole",
}

// Detect reads magic bytes via mimetype, then for ZIP containers inspects
// up to the first two entries of interest to disambiguate ODF vs OOXML.
// Returns UnsupportedKind when no mapping exists; Io when the file cannot
// be opened.
func Detect(path string) (Kind, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Kind{}, failure.NewIo("", path, err)
	}

	m := mt.String()

	if m == "application/pdf" {
		return Kind{Family: Pdf, Sub: "pdf"}, nil
	}
	if sub, ok := imageMimes[m]; ok {
		return Kind{Family: Image, Sub: sub}, nil
	}
	if sub, ok := ebookMimes[m]; ok {
		return Kind{Family: Ebook, Sub: sub}, nil
	}
	if sub, ok := legacyOfficeMimes[m]; ok {
		return Kind{Family: Office, Sub: sub}, nil
	}
	// OOXML, ODF and legacy Office formats that mimetype already names
	// precisely map to Office, with mimetype's extension as the sub-kind.
	if strings.HasPrefix(m, "application/vnd.openxmlformats-officedocument.") ||
		strings.HasPrefix(m, "application/vnd.oasis.opendocument.") ||
		mimetype.EqualsAny(m, "application/msword", "application/vnd.ms-excel", "application/vnd.ms-powerpoint") {
		return Kind{Family: Office, Sub: strings.TrimPrefix(mt.Extension(), ".")}, nil
	}

	// OOXML/ODF/legacy zip-based office formats all sniff as some flavor of
	// application/zip or a more specific OOXML mime depending on mimetype's
	// tree matching; probe entries ourselves for the cases it doesn't
	// already disambiguate.
	if m == "application/zip" || mimetype.EqualsAny(m, "application/x-tika-ooxml") {
		if kind, ok := probeZipOfficeKind(path); ok {
			return kind, nil
		}
	}

	return Kind{Family: Unknown, Sub: m}, failure.NewUnsupportedKind("", m)
}

// probeZipOfficeKind inspects a ZIP container's first entries of interest
// to disambiguate Open Document vs OOXML, exactly as spec describes:
// mimetype, content.xml, _rels/.rels, [Content_Types].xml.
func probeZipOfficeKind(path string) (Kind, bool) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Kind{}, false
	}
	defer r.Close()

	names := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		names[f.Name] = f
	}

	if f, ok := names["mimetype"]; ok {
		if sub, ok := odfSubKindFromMimetypeEntry(f); ok {
			return Kind{Family: Office, Sub: sub}, true
		}
	}
	if _, ok := names["content.xml"]; ok {
		return Kind{Family: Office, Sub: "odf"}, true
	}
	if _, ok := names["_rels/.rels"]; ok {
		if _, ok := names["[Content_Types].xml"]; ok {
			return Kind{Family: Office, Sub: "ooxml"}, true
		}
	}
	return Kind{}, false
}

func odfSubKindFromMimetypeEntry(f *zip.File) (string, bool) {
	rc, err := f.Open()
	if err != nil {
		return "", false
	}
	defer rc.Close()

	buf := make([]byte, 128)
	n, _ := io.ReadFull(rc, buf)
	content := string(buf[:n])

	switch {
	case strings.Contains(content, "opendocument.text"):
		return "odt", true
	case strings.Contains(content, "opendocument.spreadsheet"):
		return "ods", true
	case strings.Contains(content, "opendocument.presentation"):
		return "odp", true
	default:
		return "odf", true
	}
}

// Exists is a thin pre-check wrapper, kept here rather than scattered at
// every callsite, since both the worker and the sandboxed executable need
// an "input path must exist" check before any parsing is attempted.
func Exists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return failure.NewIo("", path, err)
	}
	return nil
}
