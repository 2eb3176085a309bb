package epub

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsawler/folio/model"
)

var fixedTime = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedTime }
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func testDocument(chapters ...model.Chapter) *model.Document {
	doc := model.NewDocument("urn:test:document", "en-US", "Test Document", "Test Author")
	for _, ch := range chapters {
		doc.AddChapter(ch)
	}
	return doc
}

func buildArchive(t *testing.T, doc *model.Document, opts Options) []byte {
	t.Helper()

	plan, err := Collect(context.Background(), doc, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := plan.Write(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}
