package model

import (
	"errors"
	"testing"
)

// ============================================================================
// Title Resolution Tests
// ============================================================================

func TestChapterRefTitle(t *testing.T) {
	tests := []struct {
		name string
		ref  ChapterRef
		want string
	}{
		{"explicit title", ChapterRef{Index: 0, Chapter: &Chapter{Title: "Prologue"}}, "Prologue"},
		{"first untitled", ChapterRef{Index: 0, Chapter: &Chapter{}}, "Chapter 1"},
		{"later untitled", ChapterRef{Index: 9, Chapter: &Chapter{}}, "Chapter 10"},
		{"nil chapter", ChapterRef{Index: 2}, "Chapter 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Chapter Lookup Tests
// ============================================================================

func TestAddChapter(t *testing.T) {
	doc := NewDocument("id", "en", "Title", "Author")
	first := doc.AddChapter(Chapter{Content: "<p>one</p>"})
	second := doc.AddChapter(Chapter{Title: "Two", Content: "<p>two</p>"})

	if first.Index != 0 || second.Index != 1 {
		t.Errorf("indexes = %d, %d, want 0, 1", first.Index, second.Index)
	}
	if doc.ChapterCount() != 2 {
		t.Errorf("ChapterCount() = %d, want 2", doc.ChapterCount())
	}
	if second.Chapter != doc.Chapters[1] {
		t.Error("AddChapter should return a reference to the stored chapter")
	}
}

func TestIndexOf(t *testing.T) {
	doc := NewDocument("id", "en", "Title", "Author")
	doc.AddChapter(Chapter{Content: "a"})
	ref := doc.AddChapter(Chapter{Content: "b"})

	idx, err := doc.IndexOf(ref.Chapter)
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("IndexOf() = %d, want 1", idx)
	}

	// Equal value, different identity.
	_, err = doc.IndexOf(&Chapter{Content: "b"})
	if !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("IndexOf(foreign) error = %v, want ErrChapterNotFound", err)
	}
}

func TestRef(t *testing.T) {
	doc := NewDocument("id", "en", "Title", "Author")
	doc.AddChapter(Chapter{Content: "a"})

	if _, err := doc.Ref(0); err != nil {
		t.Errorf("Ref(0) failed: %v", err)
	}
	for _, idx := range []int{-1, 1, 5} {
		if _, err := doc.Ref(idx); !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("Ref(%d) error = %v, want ErrChapterNotFound", idx, err)
		}
	}

	refs := doc.Refs()
	if len(refs) != 1 || refs[0].Index != 0 {
		t.Errorf("Refs() = %+v", refs)
	}
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		doc      *Document
		wantErr  bool
		wantLang string
	}{
		{"valid", NewDocument("id", "en-US", "Title", "Author"), false, "en-US"},
		{"canonicalizes language", NewDocument("id", "EN-us", "Title", "Author"), false, "en-US"},
		{"missing identifier", NewDocument(" ", "en", "Title", "Author"), true, ""},
		{"missing title", NewDocument("id", "en", "", "Author"), true, ""},
		{"missing language", NewDocument("id", "", "Title", "Author"), true, ""},
		{"malformed language", NewDocument("id", "not a tag!", "Title", "Author"), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDocument) {
					t.Errorf("Validate() error = %v, want ErrInvalidDocument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			got, err := tt.doc.Metadata.CanonicalLanguage()
			if err != nil {
				t.Fatalf("CanonicalLanguage() failed: %v", err)
			}
			if got != tt.wantLang {
				t.Errorf("CanonicalLanguage() = %q, want %q", got, tt.wantLang)
			}
		})
	}
}

func TestValidateLeavesDocumentUnchanged(t *testing.T) {
	doc := NewDocument("id", "EN-us", "Title", "Author")

	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if doc.Metadata.Language != "EN-us" {
		t.Errorf("Language rewritten to %q", doc.Metadata.Language)
	}
}

func TestValidateNilChapter(t *testing.T) {
	doc := NewDocument("id", "en", "Title", "Author")
	doc.Chapters = append(doc.Chapters, nil)

	if err := doc.Validate(); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Validate() error = %v, want ErrInvalidDocument", err)
	}
}
