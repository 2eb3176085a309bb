package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMissingHead is returned when a page without a head element is asked to
// carry stylesheet links.
var ErrMissingHead = errors.New("epub: document has no head element")

// XHTML namespaces used by every generated document.
const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	opsNamespace   = "http://www.idpf.org/2007/ops"
)

// page is an XHTML document under construction. The head is assembled
// completely (title and stylesheet links) before the page is rendered.
type page struct {
	resource Resource
	lang     string
	head     *html.Node
	body     []*html.Node
	styles   []string
}

// newPage starts a page at path with the given head title.
func newPage(p, lang, title string) *page {
	head := element("head")
	head.AppendChild(textElement("title", title))

	return &page{
		resource: Resource{Path: p, MediaType: MediaTypeXHTML},
		lang:     lang,
		head:     head,
	}
}

// link adds a stylesheet link with the given href to the page head.
func (pg *page) link(href string) error {
	if pg.head == nil {
		return fmt.Errorf("%w: %s", ErrMissingHead, pg.resource.Path)
	}
	pg.head.AppendChild(element("link",
		"rel", "stylesheet",
		"type", "text/css",
		"href", href,
	))
	return nil
}

// render serializes the page as an XHTML document.
func (pg *page) render() ([]byte, error) {
	root := element("html",
		"xmlns", xhtmlNamespace,
		"xmlns:epub", opsNamespace,
		"xml:lang", pg.lang,
		"lang", pg.lang,
	)
	if pg.head != nil {
		root.AppendChild(pg.head)
	}
	body := element("body")
	for _, n := range pg.body {
		body.AppendChild(n)
	}
	root.AppendChild(body)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<!DOCTYPE html>\n")
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", pg.resource.Path, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// element creates an element node. attrs are key/value pairs.
func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// textElement creates an element whose only child is the given text.
func textElement(tag, text string, attrs ...string) *html.Node {
	n := element(tag, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// rawNode embeds markup verbatim, without escaping.
func rawNode(markup string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: markup}
}

// relativePath returns target relative to the directory dir. Both are
// slash-separated and relative to the archive root.
func relativePath(dir, target string) string {
	dir = path.Clean(dir)
	target = path.Clean(target)
	if dir == "." || dir == "/" {
		return strings.TrimPrefix(target, "/")
	}

	from := strings.Split(strings.Trim(dir, "/"), "/")
	to := strings.Split(strings.Trim(target, "/"), "/")

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}
