package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/folio/model"
)

// Reader-related errors.
var (
	ErrInvalidArchive  = errors.New("epub: invalid or corrupted archive")
	ErrInvalidMimetype = errors.New("epub: invalid mimetype (not an EPUB)")
	ErrMissingContent  = errors.New("epub: referenced content file not found")
)

// Reader provides access to EPUB content.
type Reader struct {
	zr          *zip.ReadCloser
	zrReader    *zip.Reader // For when opened from io.ReaderAt
	pkg         *Package
	baseDir     string // Directory containing OPF (for resolving relative paths)
	chapters    []*Chapter
	toc         *TableOfContents
	mimetypeErr error
}

// Open opens an EPUB file from a path.
func Open(filePath string) (*Reader, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{zr: zr}
	if err := r.init(&zr.Reader); err != nil {
		zr.Close()
		return nil, err
	}

	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{zrReader: zr}
	if err := r.init(zr); err != nil {
		return nil, err
	}

	return r, nil
}

// init initializes the reader by parsing the EPUB structure.
func (r *Reader) init(zr *zip.Reader) error {
	// Some EPUBs in the wild have a broken mimetype entry; record the
	// problem and keep going.
	r.mimetypeErr = validateMimetype(zr)

	opfPath, err := parseContainer(zr)
	if err != nil {
		return err
	}

	pkg, baseDir, err := parseOPF(zr, opfPath)
	if err != nil {
		return err
	}

	r.pkg = pkg
	r.baseDir = baseDir

	return r.loadChapters(zr)
}

// validateMimetype checks that the archive starts with an uncompressed
// mimetype entry holding exactly "application/epub+zip".
func validateMimetype(zr *zip.Reader) error {
	if len(zr.File) == 0 {
		return ErrInvalidMimetype
	}

	first := zr.File[0]
	if first.Name != "mimetype" {
		return fmt.Errorf("%w: first entry is %q", ErrInvalidMimetype, first.Name)
	}
	if first.Method != zip.Store {
		return fmt.Errorf("%w: mimetype entry is compressed", ErrInvalidMimetype)
	}

	data, err := readFile(first)
	if err != nil {
		return err
	}
	if string(data) != MediaTypeEPUB {
		return fmt.Errorf("%w: %q", ErrInvalidMimetype, data)
	}
	return nil
}

// loadChapters loads all spine items as chapters.
func (r *Reader) loadChapters(zr *zip.Reader) error {
	r.chapters = make([]*Chapter, 0, len(r.pkg.Spine))

	for i, spineItem := range r.pkg.Spine {
		item, ok := r.pkg.Item(spineItem.IDRef)
		if !ok {
			continue // Skip missing items
		}

		href := r.resolveHref(item.Href)

		content, err := readEntry(zr, href)
		if err != nil {
			continue
		}

		chapter := &Chapter{
			ID:      item.ID,
			Index:   i,
			Href:    href,
			Content: content,
		}
		chapter.Title = extractChapterTitle(content)

		r.chapters = append(r.chapters, chapter)
	}

	if len(r.chapters) == 0 {
		return ErrEmptySpine
	}

	return nil
}

// resolveHref resolves a relative href against the OPF base directory.
func (r *Reader) resolveHref(href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}

	if r.baseDir == "" {
		return href
	}
	return path.Join(r.baseDir, href)
}

// readEntry reads a named file from the ZIP archive.
func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readFile(f)
		}
	}
	return nil, ErrMissingContent
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// extractChapterTitle returns the head title, or the first heading when the
// document has no title.
func extractChapterTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	if title := findElement(doc, "title"); title != nil {
		if text := extractText(title); text != "" {
			return text
		}
	}

	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if h := findElement(doc, tag); h != nil {
			return extractText(h)
		}
	}

	return ""
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Close closes the reader and releases resources.
func (r *Reader) Close() error {
	if r.zr != nil {
		return r.zr.Close()
	}
	return nil
}

// CheckMimetype reports whether the archive starts with a valid, uncompressed
// mimetype entry.
func (r *Reader) CheckMimetype() error {
	return r.mimetypeErr
}

// Metadata returns the EPUB metadata.
func (r *Reader) Metadata() Metadata {
	return r.pkg.Metadata
}

// Package returns the parsed package document.
func (r *Reader) Package() *Package {
	return r.pkg
}

// ChapterCount returns the number of chapters.
func (r *Reader) ChapterCount() int {
	return len(r.chapters)
}

// Chapters returns all chapters.
func (r *Reader) Chapters() []*Chapter {
	return r.chapters
}

// Entries lists the archive entries in storage order.
func (r *Reader) Entries() []Entry {
	zr := r.getZipReader()
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, Entry{
			Name:             f.Name,
			Stored:           f.Method == zip.Store,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		})
	}
	return entries
}

// ReadFile returns the content of the named archive entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	return readEntry(r.getZipReader(), name)
}

// Text extracts plain text from all chapters.
func (r *Reader) Text() (string, error) {
	var parts []string
	for _, chapter := range r.chapters {
		doc, err := html.Parse(bytes.NewReader(chapter.Content))
		if err != nil {
			continue
		}

		body := findElement(doc, "body")
		if body == nil {
			body = doc
		}

		if text := strings.TrimSpace(extractText(body)); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// Document converts the package back into a document model. The navigation
// document is skipped. When any spine item has a <main> region, only those
// items become chapters and their content is the markup inside <main>;
// otherwise every remaining item becomes a chapter with its body markup.
func (r *Reader) Document() (*model.Document, error) {
	meta := r.pkg.Metadata
	doc := model.NewDocument(meta.Identifier, meta.Language, meta.Title, strings.Join(meta.Creator, ", "))
	doc.Metadata.Publisher = meta.Publisher
	doc.Metadata.Description = meta.Description
	doc.Metadata.Subjects = meta.Subjects
	doc.Metadata.Rights = meta.Rights
	doc.Metadata.Date = meta.Date

	navIDs := make(map[string]bool)
	for _, item := range r.pkg.Manifest {
		for _, prop := range item.Properties {
			if prop == "nav" {
				navIDs[item.ID] = true
			}
		}
	}

	type region struct {
		title  string
		node   *html.Node
		isMain bool
	}
	var regions []region
	anyMain := false

	for _, chapter := range r.chapters {
		if navIDs[chapter.ID] {
			continue
		}
		parsed, err := html.Parse(bytes.NewReader(chapter.Content))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", chapter.Href, err)
		}
		if m := findElement(parsed, "main"); m != nil {
			regions = append(regions, region{title: chapter.Title, node: m, isMain: true})
			anyMain = true
			continue
		}
		if body := findElement(parsed, "body"); body != nil {
			regions = append(regions, region{title: chapter.Title, node: body})
		}
	}

	for _, reg := range regions {
		if anyMain && !reg.isMain {
			continue
		}
		var buf bytes.Buffer
		for c := reg.node.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return nil, err
			}
		}
		doc.AddChapter(model.Chapter{Title: reg.title, Content: buf.String()})
	}

	return doc, nil
}

// getZipReader returns the appropriate zip.Reader.
func (r *Reader) getZipReader() *zip.Reader {
	if r.zr != nil {
		return &r.zr.Reader
	}
	return r.zrReader
}
