package epub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootNode = "epub/document.opf"

func paths(resources []Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Path)
	}
	return out
}

func TestGraphUpsertCreates(t *testing.T) {
	g := NewGraph()
	assert.False(t, g.Contains("a.xhtml"))

	res, err := g.Upsert(Resource{Path: "a.xhtml", MediaType: MediaTypeXHTML, Content: []byte("a")}, rootNode)
	require.NoError(t, err)
	assert.Equal(t, "a.xhtml", res.Path)
	assert.True(t, g.Contains("a.xhtml"))
	assert.False(t, g.Contains(rootNode), "source-only nodes hold no resource")
	assert.Equal(t, 1, g.Len())
}

func TestGraphUpsertMerges(t *testing.T) {
	g := NewGraph()

	_, err := g.Upsert(Resource{Path: "c.xhtml", ID: "placeholder", MediaType: MediaTypeXHTML}, "nav.xhtml")
	require.NoError(t, err)

	merged, err := g.Upsert(Resource{
		Path:      "c.xhtml",
		ID:        "chapter-1",
		MediaType: MediaTypeXHTML,
		Content:   []byte("<html/>"),
		InSpine:   true,
	}, rootNode)
	require.NoError(t, err)

	assert.Equal(t, "chapter-1", merged.ID, "later non-empty fields win")
	assert.Equal(t, []byte("<html/>"), merged.Content)
	assert.True(t, merged.InSpine)
	assert.Equal(t, 1, g.Len())

	// Empty fields of a later registration keep the stored values.
	again, err := g.Upsert(Resource{Path: "c.xhtml"}, rootNode)
	require.NoError(t, err)
	assert.Equal(t, "chapter-1", again.ID)
	assert.Equal(t, MediaTypeXHTML, again.MediaType)
	assert.True(t, again.InSpine, "spine membership is sticky")
	assert.Equal(t, []byte("<html/>"), again.Content)

	stored, ok := g.Get("c.xhtml")
	require.True(t, ok)
	assert.Equal(t, again, stored)
}

func TestGraphUpsertMediaTypeConflict(t *testing.T) {
	types := []string{MediaTypeXHTML, MediaTypeCSS, "image/png", "text/plain"}

	for _, first := range types {
		for _, second := range types {
			if first == second {
				continue
			}
			t.Run(first+" then "+second, func(t *testing.T) {
				g := NewGraph()
				_, err := g.Upsert(Resource{Path: "x", MediaType: first}, rootNode)
				require.NoError(t, err)

				_, err = g.Upsert(Resource{Path: "x", MediaType: second}, rootNode)
				assert.ErrorIs(t, err, ErrMediaTypeConflict)

				stored, _ := g.Get("x")
				assert.Equal(t, first, stored.MediaType, "a failed merge leaves the resource untouched")
			})
		}
	}
}

func TestGraphAddDependency(t *testing.T) {
	g := NewGraph()

	err := g.AddDependency(rootNode, "missing.css")
	assert.ErrorIs(t, err, ErrDanglingDependency)

	_, err = g.Upsert(Resource{Path: "a.css", MediaType: MediaTypeCSS}, rootNode)
	require.NoError(t, err)

	// Re-adding is a no-op.
	require.NoError(t, g.AddDependency(rootNode, "a.css"))
	require.NoError(t, g.AddDependency(rootNode, "a.css"))

	deps, err := g.OrderedDependenciesOf(rootNode)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.css"}, paths(deps))
}

func TestGraphOrderedDependencies(t *testing.T) {
	g := NewGraph()
	upsert := func(p, mediaType, requiredBy string) {
		t.Helper()
		_, err := g.Upsert(Resource{Path: p, MediaType: mediaType, Content: []byte(p)}, requiredBy)
		require.NoError(t, err)
	}

	upsert("cover.xhtml", MediaTypeXHTML, rootNode)
	upsert("global.css", MediaTypeCSS, "cover.xhtml")
	upsert("cover.css", MediaTypeCSS, "cover.xhtml")
	upsert("nav.xhtml", MediaTypeXHTML, rootNode)
	upsert("global.css", MediaTypeCSS, "nav.xhtml")
	upsert("chapter-1.xhtml", MediaTypeXHTML, "nav.xhtml")
	upsert("chapter-1.xhtml", MediaTypeXHTML, rootNode)
	upsert("content.css", MediaTypeCSS, "chapter-1.xhtml")

	deps, err := g.OrderedDependenciesOf(rootNode)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"cover.xhtml",
		"nav.xhtml",
		"chapter-1.xhtml",
		"global.css",
		"cover.css",
		"content.css",
	}, paths(deps))

	_, err = g.OrderedDependenciesOf("unknown")
	assert.ErrorIs(t, err, ErrDanglingDependency)
}

func TestGraphReset(t *testing.T) {
	g := NewGraph()
	_, err := g.Upsert(Resource{Path: "a", MediaType: MediaTypeCSS}, rootNode)
	require.NoError(t, err)

	g.Reset()
	assert.False(t, g.Contains("a"))
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Paths())
}

func TestGraphUpsertRequiresPath(t *testing.T) {
	_, err := NewGraph().Upsert(Resource{MediaType: MediaTypeCSS}, rootNode)
	assert.Error(t, err)
}

func TestGraphPathsKeepInsertionOrder(t *testing.T) {
	g := NewGraph()
	_, err := g.Upsert(Resource{Path: "b.xhtml", MediaType: MediaTypeXHTML}, rootNode)
	require.NoError(t, err)
	_, err = g.Upsert(Resource{Path: "a.xhtml", MediaType: MediaTypeXHTML}, rootNode)
	require.NoError(t, err)
	_, err = g.Upsert(Resource{Path: "c.css", MediaType: MediaTypeCSS}, "a.xhtml")
	require.NoError(t, err)

	// Merging into an existing path keeps its original position.
	_, err = g.Upsert(Resource{Path: "b.xhtml", Content: []byte("b")}, rootNode)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.xhtml", rootNode, "a.xhtml", "c.css"}, g.Paths())
}
