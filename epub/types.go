package epub

import (
	"time"
)

// Package represents the parsed OPF document.
type Package struct {
	Metadata Metadata
	Manifest []ManifestItem // in document order
	Spine    []SpineItem
	Version  string // "2.0" or "3.0"
}

// Item returns the manifest item with the given ID.
func (p *Package) Item(id string) (ManifestItem, bool) {
	for _, item := range p.Manifest {
		if item.ID == id {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// Metadata contains EPUB metadata (Dublin Core).
type Metadata struct {
	Title       string
	Creator     []string // Multiple authors possible
	Language    string
	Identifier  string // ISBN, UUID, etc.
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	Modified    time.Time
}

// ManifestItem represents a file in the EPUB.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string // "nav", "cover-image", etc.
}

// SpineItem represents a content document in reading order.
type SpineItem struct {
	IDRef  string
	Linear bool // true if part of main reading order
}

// Chapter represents extracted content from one spine item.
type Chapter struct {
	ID      string
	Title   string
	Index   int
	Href    string
	Content []byte // Raw XHTML content
}

// Entry describes one file of the archive in storage order.
type Entry struct {
	Name             string
	Stored           bool // true if the entry is not compressed
	CompressedSize   uint64
	UncompressedSize uint64
}

// TableOfContents represents the navigation structure.
type TableOfContents struct {
	Title   string
	Entries []TOCEntry
}

// TOCEntry represents a single navigation entry.
type TOCEntry struct {
	Title    string
	Href     string
	Children []TOCEntry
}
