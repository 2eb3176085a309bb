// Package markdown converts Markdown chapter sources into XHTML fragments
// suitable for embedding in EPUB content documents.
package markdown

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style used for fenced code blocks.
const DefaultHighlightStyle = "github"

// Converter renders Markdown to XHTML. The zero value is not usable; create
// one with New. A Converter is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

var (
	defaultConverter     *Converter
	defaultConverterOnce sync.Once
)

// Option configures a Converter.
type Option func(*config)

type config struct {
	highlight bool
	style     string
}

// WithHighlighting enables or disables syntax highlighting of fenced code
// blocks. Highlighting is on by default.
func WithHighlighting(enabled bool) Option {
	return func(c *config) { c.highlight = enabled }
}

// WithStyle selects the chroma style used for highlighting.
func WithStyle(name string) Option {
	return func(c *config) { c.style = name }
}

// New creates a converter with GitHub Flavored Markdown, XHTML output and
// raw HTML pass-through.
func New(opts ...Option) *Converter {
	cfg := config{highlight: true, style: DefaultHighlightStyle}
	for _, opt := range opts {
		opt(&cfg)
	}

	rendererOptions := []renderer.Option{html.WithXHTML(), html.WithUnsafe()}
	if cfg.highlight {
		rendererOptions = append(rendererOptions, renderer.WithNodeRenderers(
			util.Prioritized(newCodeRenderer(cfg.style), 200),
		))
	}

	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.DefinitionList, extension.Footnote),
			goldmark.WithRendererOptions(rendererOptions...),
		),
	}
}

// Convert renders Markdown source to an XHTML fragment.
func (c *Converter) Convert(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// Convert renders Markdown source with the default converter.
func Convert(source []byte) (string, error) {
	defaultConverterOnce.Do(func() {
		defaultConverter = New()
	})
	return defaultConverter.Convert(source)
}

// codeRenderer highlights fenced code blocks with chroma. Styles are inlined
// so chapters need no extra stylesheet.
type codeRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newCodeRenderer(style string) *codeRenderer {
	return &codeRenderer{
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
	}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	lexer := lexers.Get(string(n.Language(source)))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, fmt.Errorf("highlighting code block: %w", err)
	}
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, fmt.Errorf("highlighting code block: %w", err)
	}
	return ast.WalkSkipChildren, nil
}
