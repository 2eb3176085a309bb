// Package format provides file format detection for book sources and
// packaged EPUB files.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// EPUB indicates a packaged EPUB publication.
	EPUB
	// HTML indicates an HTML or XHTML document or fragment.
	HTML
	// Markdown indicates a Markdown source file.
	Markdown
)

// epubMimetype is the content of the mimetype entry of an EPUB archive.
const epubMimetype = "application/epub+zip"

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case EPUB:
		return "EPUB"
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case EPUB:
		return ".epub"
	case HTML:
		return ".xhtml"
	case Markdown:
		return ".md"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".epub":
		return EPUB
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".md", ".markdown":
		return Markdown
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format. ZIP archives
// return Unknown; use DetectFromReader to inspect their entries.
func DetectFromMagic(data []byte) Format {
	if isZIP(data) {
		// An EPUB written to the letter carries its media type at offset 38.
		if len(data) >= 58 && string(data[30:38]) == "mimetype" && string(data[38:58]) == epubMimetype {
			return EPUB
		}
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

func isZIP(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{0x50, 0x4B, 0x03, 0x04})
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return false
	}

	head := strings.ToUpper(string(data[:min(len(data), 512)]))
	switch {
	case strings.HasPrefix(head, "<!DOCTYPE HTML"):
		return true
	case strings.HasPrefix(head, "<HTML"):
		return true
	case strings.HasPrefix(head, "<?XML") && strings.Contains(head, "<HTML"):
		return true
	}
	return false
}

// DetectFromReader inspects the content to determine format. ZIP archives
// are reported as EPUB when their first entry is the EPUB mimetype marker.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if isZIP(magic) {
		return detectZIPFormat(r, size)
	}

	if detectHTMLMagic(magic) {
		return HTML, nil
	}

	return Unknown, nil
}

// detectZIPFormat checks the first entry of a ZIP archive for the EPUB
// mimetype marker.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		return Unknown, nil
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		return Unknown, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, 256))
	if err != nil {
		return Unknown, err
	}
	if strings.TrimSpace(string(data)) == epubMimetype {
		return EPUB, nil
	}
	return Unknown, nil
}
