package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/tsawler/folio/model"
)

func openArchive(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return zr
}

func TestArchiveMimetypeFirstAndStored(t *testing.T) {
	docs := []*model.Document{
		testDocument(),
		testDocument(model.Chapter{Content: "Hello, world"}),
		testDocument(model.Chapter{Title: "A"}, model.Chapter{Title: "B"}, model.Chapter{}),
	}

	for _, doc := range docs {
		data := buildArchive(t, doc, testOptions())
		zr := openArchive(t, data)

		first := zr.File[0]
		assert.Equal(t, "mimetype", first.Name)
		assert.Equal(t, zip.Store, first.Method)
		assert.Zero(t, first.Flags&0x8, "mimetype must not use a data descriptor")
		assert.Empty(t, first.Extra)

		content, err := readFile(first)
		require.NoError(t, err)
		assert.Equal(t, "application/epub+zip", string(content))

		// The media type sits at a fixed offset: 30-byte local header plus
		// the 8-byte file name.
		assert.Equal(t, "PK\x03\x04", string(data[:4]))
		assert.Equal(t, "mimetype", string(data[30:38]))
		assert.Equal(t, "application/epub+zip", string(data[38:58]))

		for _, f := range zr.File[1:] {
			assert.Equal(t, zip.Deflate, f.Method, "%s should be deflated", f.Name)
			assert.True(t, f.Modified.Equal(fixedTime), "%s modified = %v", f.Name, f.Modified)
		}
	}
}

func TestArchiveEntryOrder(t *testing.T) {
	doc := testDocument(model.Chapter{Content: "<p>1</p>"}, model.Chapter{Content: "<p>2</p>"})
	zr := openArchive(t, buildArchive(t, doc, testOptions()))

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"mimetype",
		"META-INF/container.xml",
		"epub/document.opf",
		"epub/cover.xhtml",
		"epub/nav.xhtml",
		"epub/content/chapter-1.xhtml",
		"epub/content/chapter-2.xhtml",
		"epub/global.css",
		"epub/cover.css",
		"epub/navigation.css",
		"epub/content.css",
	}, names)
}

func TestArchiveRoundTripChapterContent(t *testing.T) {
	doc := testDocument(model.Chapter{Content: "Hello, world"})
	data := buildArchive(t, doc, testOptions())

	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer r.Close()

	chapter, err := r.ReadFile("epub/content/chapter-1.xhtml")
	require.NoError(t, err)

	parsed, err := html.Parse(bytes.NewReader(chapter))
	require.NoError(t, err)
	region := findElement(parsed, "main")
	require.NotNil(t, region, "chapter should have a main region")
	assert.Contains(t, extractText(region), "Hello, world")
}

func TestArchiveDeterministic(t *testing.T) {
	doc := testDocument(model.Chapter{Content: "a"}, model.Chapter{Title: "Two", Content: "b"})

	first := buildArchive(t, doc, testOptions())
	second := buildArchive(t, doc, testOptions())
	assert.Equal(t, first, second)
}

func TestArchiveCancelledWrite(t *testing.T) {
	plan, err := Collect(context.Background(), testDocument(model.Chapter{Content: "x"}), testOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err = plan.Write(ctx, &buf)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Zero(t, buf.Len())
}

type failingWriter struct {
	after int
	n     int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.after {
		return 0, io.ErrShortWrite
	}
	w.n += len(p)
	return len(p), nil
}

func TestArchiveWriteErrorPropagates(t *testing.T) {
	doc := testDocument()
	for i := 0; i < 20; i++ {
		doc.AddChapter(model.Chapter{Content: strings.Repeat("<p>lorem ipsum</p>", 200)})
	}
	plan, err := Collect(context.Background(), doc, testOptions())
	require.NoError(t, err)

	_, err = plan.Write(context.Background(), &failingWriter{after: 1024})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestAssemblerRequiresHeaderFirst(t *testing.T) {
	a := NewAssembler(context.Background(), io.Discard, fixedTime, nil)
	assert.Error(t, a.WriteEntry("epub/cover.xhtml", []byte("x")))

	require.NoError(t, a.WriteHeader())
	assert.Error(t, a.WriteHeader(), "mimetype can only be written once, first")
	require.NoError(t, a.WriteEntry("epub/cover.xhtml", []byte("x")))
	require.NoError(t, a.Finalize())
	assert.Greater(t, a.Written(), int64(0))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "reset", PhaseReset.String())
	assert.Equal(t, "finalize", PhaseFinalize.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}
