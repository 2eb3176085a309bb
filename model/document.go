package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Document-related errors.
var (
	ErrInvalidDocument = errors.New("model: invalid document")
	ErrChapterNotFound = errors.New("model: chapter not found in document")
)

// Document represents a complete book ready to be packaged.
type Document struct {
	Metadata Metadata
	Chapters []*Chapter
}

// Metadata contains document-level information (Dublin Core).
type Metadata struct {
	// Identifier is a globally unique identifier, commonly an ISBN or URN.
	Identifier string
	// Language is a BCP 47 tag such as "en" or "en-US".
	Language string
	Title    string
	Author   string

	// Optional fields, emitted only when non-empty.
	Publisher   string
	Description string
	Subjects    []string
	Rights      string
	Date        string
}

// Chapter is a single piece of content, normally one chapter of the book.
type Chapter struct {
	// Title is used as the chapter title when non-empty.
	Title string
	// Content is the chapter's markup fragment, embedded verbatim.
	Content string
}

// ChapterRef pairs a chapter with its zero-based position in the document.
type ChapterRef struct {
	Index   int
	Chapter *Chapter
}

// NewDocument creates a new document with the required metadata fields.
func NewDocument(identifier, lang, title, author string) *Document {
	return &Document{
		Metadata: Metadata{
			Identifier: identifier,
			Language:   lang,
			Title:      title,
			Author:     author,
		},
		Chapters: make([]*Chapter, 0),
	}
}

// AddChapter appends a chapter and returns its reference.
func (d *Document) AddChapter(ch Chapter) ChapterRef {
	c := ch
	d.Chapters = append(d.Chapters, &c)
	return ChapterRef{Index: len(d.Chapters) - 1, Chapter: &c}
}

// ChapterCount returns the number of chapters.
func (d *Document) ChapterCount() int {
	return len(d.Chapters)
}

// IndexOf returns the zero-based position of ch in the document.
// Chapters are compared by identity, not by value.
func (d *Document) IndexOf(ch *Chapter) (int, error) {
	for i, c := range d.Chapters {
		if c == ch {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrChapterNotFound, ch.Title)
}

// Ref returns the reference for the chapter at index.
func (d *Document) Ref(index int) (ChapterRef, error) {
	if index < 0 || index >= len(d.Chapters) {
		return ChapterRef{}, fmt.Errorf("%w: index %d of %d", ErrChapterNotFound, index, len(d.Chapters))
	}
	return ChapterRef{Index: index, Chapter: d.Chapters[index]}, nil
}

// Refs returns references for every chapter in document order.
func (d *Document) Refs() []ChapterRef {
	refs := make([]ChapterRef, 0, len(d.Chapters))
	for i, c := range d.Chapters {
		refs = append(refs, ChapterRef{Index: i, Chapter: c})
	}
	return refs
}

// Number returns the 1-based display number of the chapter.
func (r ChapterRef) Number() int {
	return r.Index + 1
}

// Title returns the chapter's explicit title, or "Chapter N" when it has none.
func (r ChapterRef) Title() string {
	if r.Chapter != nil && r.Chapter.Title != "" {
		return r.Chapter.Title
	}
	return fmt.Sprintf("Chapter %d", r.Number())
}

// Validate checks the fields every package requires. The document is not
// modified; use CanonicalLanguage for the normalized language tag.
func (d *Document) Validate() error {
	var problems []string

	if strings.TrimSpace(d.Metadata.Identifier) == "" {
		problems = append(problems, "identifier is required")
	}
	if strings.TrimSpace(d.Metadata.Title) == "" {
		problems = append(problems, "title is required")
	}

	if _, err := d.Metadata.CanonicalLanguage(); err != nil {
		problems = append(problems, err.Error())
	}

	for i, c := range d.Chapters {
		if c == nil {
			problems = append(problems, fmt.Sprintf("chapter %d is nil", i+1))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
	}
	return nil
}

// CanonicalLanguage returns the language tag in canonical BCP 47 form, for
// example "en-US" for "EN-us".
func (m Metadata) CanonicalLanguage() (string, error) {
	tag, err := language.Parse(m.Language)
	if err != nil {
		return "", fmt.Errorf("language %q: %v", m.Language, err)
	}
	return tag.String(), nil
}
