// Package model provides the document model consumed by the EPUB writer.
//
// This package defines the user-facing data structures that describe a book
// before it is packaged. The model carries no packaging logic; it only knows
// how to resolve chapter titles, look up chapter positions and validate the
// fields every package needs.
//
// # Document Structure
//
// The [Document] type represents a complete book with metadata and chapters:
//
//	doc := model.NewDocument("urn:isbn:9780000000000", "en-US", "Fire and Ice", "Robert Frost")
//	doc.AddChapter(model.Chapter{Content: "<p>Some say the world will end in fire;</p>"})
//
// # Chapters
//
// Chapters are identified by their zero-based position in [Document.Chapters].
// The position is the only input used for generated identifiers, paths and
// default titles, so it must not change while a package is being built. A
// [ChapterRef] pairs a chapter with that position.
//
// Chapter content is a markup fragment that is embedded verbatim. No
// sanitization is performed; callers are responsible for well-formed input.
package model
