// Package book loads book manifests from disk.
//
// A manifest describes the publication metadata and lists the chapters in
// reading order. Manifests are YAML (.yaml, .yml) or JSON with comments and
// trailing commas (.json, .jsonc):
//
//	identifier: urn:isbn:9780000000000
//	language: en
//	title: Example Book
//	author: Jane Doe
//	chapters:
//	  - title: Introduction
//	    file: chapters/intro.md
//	  - title: Appendix
//	    content: <p>Inline markup.</p>
//
// Chapter files are resolved relative to the manifest. Markdown files are
// converted to XHTML; HTML files are embedded as-is, or reduced to the
// contents of their <body> when they are complete documents.
package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/markdown"
	"github.com/tsawler/folio/model"
)

// Manifest errors.
var (
	ErrUnsupportedManifest = errors.New("book: unsupported manifest format")
	ErrUnsupportedChapter  = errors.New("book: unsupported chapter source")
	ErrInvalidChapter      = errors.New("book: chapter needs exactly one of file or content")
)

// Encoding identifies the syntax of a manifest.
type Encoding int

const (
	YAML Encoding = iota
	JSONC
)

// Manifest is the on-disk description of a book.
type Manifest struct {
	Identifier  string   `yaml:"identifier" json:"identifier"`
	Language    string   `yaml:"language" json:"language"`
	Title       string   `yaml:"title" json:"title"`
	Author      string   `yaml:"author" json:"author"`
	Publisher   string   `yaml:"publisher" json:"publisher"`
	Description string   `yaml:"description" json:"description"`
	Subjects    []string `yaml:"subjects" json:"subjects"`
	Rights      string   `yaml:"rights" json:"rights"`
	Date        string   `yaml:"date" json:"date"`

	Chapters []ChapterSource `yaml:"chapters" json:"chapters"`

	// Layout settings. Empty values use the package defaults.
	MetadataRoot string `yaml:"metadataRoot" json:"metadataRoot"`
	NavTitle     string `yaml:"navTitle" json:"navTitle"`
	// Styles maps a stylesheet name (global, cover, navigation, content)
	// to a CSS file relative to the manifest.
	Styles map[string]string `yaml:"styles" json:"styles"`
}

// ChapterSource names a chapter file or carries inline content.
type ChapterSource struct {
	Title   string `yaml:"title" json:"title"`
	File    string `yaml:"file" json:"file"`
	Content string `yaml:"content" json:"content"`
}

// Book is a loaded manifest with its chapters resolved.
type Book struct {
	Document     *model.Document
	MetadataRoot string
	NavTitle     string
	// Styles holds the CSS text of each stylesheet named in the manifest.
	Styles map[string]string
}

// EncodingOf returns the manifest encoding implied by a file name.
func EncodingOf(name string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json", ".jsonc":
		return JSONC, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedManifest, name)
	}
}

// Parse decodes manifest bytes.
func Parse(data []byte, enc Encoding) (*Manifest, error) {
	var m Manifest
	switch enc {
	case YAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
	case JSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
	default:
		return nil, ErrUnsupportedManifest
	}
	return &m, nil
}

// Load reads the manifest at path and resolves its chapters and styles.
func Load(path string) (*Book, error) {
	enc, err := EncodingOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := Parse(data, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	b, err := m.Resolve(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Resolve builds the document, reading chapter and style files relative to
// dir. A missing identifier is derived from the title and author.
func (m *Manifest) Resolve(dir string) (*Book, error) {
	identifier := m.Identifier
	if identifier == "" {
		identifier = DefaultIdentifier(m.Title, m.Author)
	}

	doc := model.NewDocument(identifier, m.Language, m.Title, m.Author)
	doc.Metadata.Publisher = m.Publisher
	doc.Metadata.Description = m.Description
	doc.Metadata.Subjects = append([]string(nil), m.Subjects...)
	doc.Metadata.Rights = m.Rights
	doc.Metadata.Date = m.Date

	for i, src := range m.Chapters {
		ch, err := src.load(dir)
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", i+1, err)
		}
		doc.AddChapter(ch)
	}

	b := &Book{
		Document:     doc,
		MetadataRoot: m.MetadataRoot,
		NavTitle:     m.NavTitle,
	}
	if len(m.Styles) > 0 {
		b.Styles = make(map[string]string, len(m.Styles))
		for name, file := range m.Styles {
			css, err := os.ReadFile(filepath.Join(dir, file))
			if err != nil {
				return nil, fmt.Errorf("style %s: %w", name, err)
			}
			b.Styles[name] = string(css)
		}
	}

	return b, nil
}

// DefaultIdentifier derives a stable name-based UUID URN from the title and
// author, so rebuilding the same book keeps its identifier.
func DefaultIdentifier(title, author string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(title+"\x00"+author))
	return id.URN()
}

// load produces the chapter. An HTML file's <title> is used when the
// manifest gives no title.
func (s ChapterSource) load(dir string) (model.Chapter, error) {
	ch := model.Chapter{Title: s.Title, Content: s.Content}
	if (s.File == "") == (s.Content == "") {
		return ch, ErrInvalidChapter
	}
	if s.Content != "" {
		return ch, nil
	}

	name := filepath.Join(dir, filepath.FromSlash(s.File))
	data, err := os.ReadFile(name)
	if err != nil {
		return ch, fmt.Errorf("reading %s: %w", s.File, err)
	}

	switch format.Detect(name) {
	case format.Markdown:
		ch.Content, err = markdown.Convert(data)
	case format.HTML:
		var page htmlPage
		page, err = parseHTML(data)
		ch.Content = page.body
		if ch.Title == "" {
			ch.Title = page.title
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedChapter, s.File)
	}
	return ch, err
}
