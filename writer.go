package folio

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/tsawler/folio/epub"
	"github.com/tsawler/folio/model"
)

// ErrNoDocument is returned when a Writer has no document to package.
var ErrNoDocument = errors.New("folio: no document")

// Writer provides a fluent interface for packaging a document.
// Each configuration method returns a new Writer instance, making it
// safe for concurrent use and allowing method chaining.
type Writer struct {
	// Source
	doc *model.Document

	// Configuration
	options WriteOptions
}

// Result describes a written package.
type Result struct {
	// Bytes is the size of the archive.
	Bytes int64
	// Digest is the hex-encoded BLAKE3 hash of the archive.
	Digest string
	// Resources lists the manifest paths in archive order.
	Resources []string
	// Spine lists the reading order paths.
	Spine []string
	// Modified is the timestamp recorded in the package.
	Modified time.Time
}

// clone creates a shallow copy of the Writer with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (w *Writer) clone() *Writer {
	return &Writer{
		doc:     w.doc,
		options: w.options.clone(),
	}
}

// ============================================================================
// Configuration
// ============================================================================

// MetadataRoot sets the directory holding the package document, cover,
// navigation and stylesheets. Chapters are placed in its "content"
// subdirectory.
//
// Example:
//
//	_, err := folio.New(doc).MetadataRoot("OEBPS").WriteFile(ctx, "book.epub")
func (w *Writer) MetadataRoot(root string) *Writer {
	newW := w.clone()
	newW.options.metadataRoot = root
	return newW
}

// NavTitle sets the heading shown above the table of contents.
func (w *Writer) NavTitle(title string) *Writer {
	newW := w.clone()
	newW.options.navTitle = title
	return newW
}

// Style replaces one named stylesheet, keeping the others. Names not
// referenced by any generated page are ignored.
//
// Example:
//
//	w := folio.New(doc).Style(epub.StyleContent, "p { text-indent: 1em; }")
func (w *Writer) Style(name, css string) *Writer {
	newW := w.clone()
	if newW.options.styles == nil {
		newW.options.styles = epub.DefaultStylesheets()
	}
	newW.options.styles[name] = css
	return newW
}

// Styles replaces the whole stylesheet set. Pages referencing a style
// missing from the set get no link for it.
func (w *Writer) Styles(styles epub.Stylesheets) *Writer {
	newW := w.clone()
	newW.options.styles = styles.Clone()
	if newW.options.styles == nil {
		newW.options.styles = epub.Stylesheets{}
	}
	return newW
}

// Logger sets the logger receiving debug output for each build phase.
func (w *Writer) Logger(logger *slog.Logger) *Writer {
	newW := w.clone()
	newW.options.logger = logger
	return newW
}

// Clock sets the time source for the modification timestamp. A fixed clock
// makes output byte-for-byte reproducible.
func (w *Writer) Clock(now func() time.Time) *Writer {
	newW := w.clone()
	newW.options.now = now
	return newW
}

// ============================================================================
// Output
// ============================================================================

// Plan collects every resource of the package without writing anything.
func (w *Writer) Plan(ctx context.Context) (*epub.Plan, error) {
	if w.doc == nil {
		return nil, ErrNoDocument
	}
	return epub.Collect(ctx, w.doc, w.options.epubOptions())
}

// Write packages the document into out. Nothing is written when the
// document fails to collect.
func (w *Writer) Write(ctx context.Context, out io.Writer) (Result, error) {
	plan, err := w.Plan(ctx)
	if err != nil {
		return Result{}, err
	}

	hasher := blake3.New()
	n, err := plan.Write(ctx, io.MultiWriter(out, hasher))
	if err != nil {
		return Result{}, fmt.Errorf("writing package: %w", err)
	}

	return newResult(plan, n, hasher.Sum(nil)), nil
}

// Bytes packages the document in memory.
//
// Example:
//
//	data := folio.Must(folio.New(doc).Bytes(ctx))
func (w *Writer) Bytes(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.Write(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile packages the document to path. The archive is written to a
// temporary file in the same directory and renamed into place once
// complete; on failure the temporary file is removed and path is left
// untouched.
func (w *Writer) WriteFile(ctx context.Context, path string) (result Result, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	result, err = w.Write(ctx, tmp)
	if err != nil {
		return Result{}, err
	}
	if err = tmp.Sync(); err != nil {
		return Result{}, fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return Result{}, fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return Result{}, fmt.Errorf("renaming to %s: %w", path, err)
	}

	return result, nil
}

func newResult(plan *epub.Plan, n int64, sum []byte) Result {
	r := Result{
		Bytes:    n,
		Digest:   hex.EncodeToString(sum),
		Modified: plan.Modified(),
	}
	for _, res := range plan.Resources() {
		r.Resources = append(r.Resources, res.Path)
	}
	for _, res := range plan.Spine() {
		r.Spine = append(r.Spine, res.Path)
	}
	return r
}
