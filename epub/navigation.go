package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// TableOfContents returns the table of contents from the navigation
// document. Packages without a usable navigation document get one generated
// from the spine.
func (r *Reader) TableOfContents() *TableOfContents {
	if r.toc != nil {
		return r.toc
	}

	r.toc = r.generateTOCFromSpine()
	if item, ok := r.navItem(); ok {
		content, err := readEntry(r.getZipReader(), r.resolveHref(item.Href))
		if err == nil {
			if toc, ok := parseNavXHTML(content); ok {
				r.toc = toc
			}
		}
	}

	return r.toc
}

// navItem finds the manifest item flagged with the "nav" property.
func (r *Reader) navItem() (ManifestItem, bool) {
	for _, item := range r.pkg.Manifest {
		for _, prop := range item.Properties {
			if prop == "nav" {
				return item, true
			}
		}
	}
	return ManifestItem{}, false
}

// parseNavXHTML reads the <nav epub:type="toc"> landmark of a navigation
// document.
func parseNavXHTML(content []byte) (*TableOfContents, bool) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, false
	}

	nav := findTOCNav(doc)
	if nav == nil {
		return nil, false
	}

	toc := &TableOfContents{}
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if h := findElement(nav, tag); h != nil {
			toc.Title = extractText(h)
			break
		}
	}
	if ol := findElement(nav, "ol"); ol != nil {
		toc.Entries = parseListEntries(ol)
	}

	return toc, true
}

func findTOCNav(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" {
		for _, attr := range n.Attr {
			if (attr.Key == "epub:type" || attr.Key == "type") && strings.Contains(attr.Val, "toc") {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTOCNav(c); found != nil {
			return found
		}
	}
	return nil
}

// parseListEntries converts the <li> children of a list, including nested
// lists, into TOC entries.
func parseListEntries(ol *html.Node) []TOCEntry {
	var entries []TOCEntry

	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var entry TOCEntry
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "a":
				entry.Title = extractText(c)
				entry.Href = attrValue(c, "href")
			case "span":
				if entry.Title == "" {
					entry.Title = extractText(c)
				}
			case "ol":
				entry.Children = parseListEntries(c)
			}
		}

		if entry.Title != "" || entry.Href != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}

// generateTOCFromSpine creates a basic TOC from the spine when no navigation is present.
func (r *Reader) generateTOCFromSpine() *TableOfContents {
	toc := &TableOfContents{
		Title:   r.pkg.Metadata.Title,
		Entries: make([]TOCEntry, 0, len(r.chapters)),
	}

	for _, chapter := range r.chapters {
		title := chapter.Title
		if title == "" {
			title = chapter.ID
		}
		toc.Entries = append(toc.Entries, TOCEntry{Title: title, Href: chapter.Href})
	}

	return toc
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts all text content from an HTML node.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}
