// Package folio provides a fluent API for packaging documents as EPUB 3
// publications.
//
// Basic usage:
//
//	doc := model.NewDocument("urn:isbn:9780000000000", "en", "Title", "Author")
//	doc.AddChapter(model.Chapter{Title: "One", Content: "<p>Hello, world</p>"})
//
//	result, err := folio.New(doc).WriteFile(ctx, "book.epub")
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	result, err := folio.New(doc).
//	    MetadataRoot("OEBPS").
//	    NavTitle("Contents").
//	    Style(epub.StyleContent, css).
//	    Write(ctx, w)
//
// For lower-level control, the epub package exposes resource collection and
// archive assembly directly.
package folio

import (
	"github.com/tsawler/folio/model"
)

// New returns a Writer for doc with default options. Each configuration
// method returns a new Writer, so a Writer can be shared and reused.
//
// Example:
//
//	data, err := folio.New(doc).Bytes(ctx)
func New(doc *model.Document) *Writer {
	return &Writer{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	data := folio.Must(folio.New(doc).Bytes(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
