package book

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// htmlPage is a chapter read from an HTML file.
type htmlPage struct {
	title string
	body  string
}

// parseHTML returns the markup inside <body> and the head title of a
// complete document. Fragments are returned unchanged with no title.
func parseHTML(data []byte) (htmlPage, error) {
	lower := bytes.ToLower(data)
	if !bytes.Contains(lower, []byte("<body")) && !bytes.Contains(lower, []byte("<html")) {
		return htmlPage{body: string(data)}, nil
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return htmlPage{}, fmt.Errorf("parsing html: %w", err)
	}

	var page htmlPage
	if head := findElement(doc, "head"); head != nil {
		if title := findElement(head, "title"); title != nil {
			page.title = strings.TrimSpace(textContent(title))
		}
	}

	body := findElement(doc, "body")
	if body == nil {
		page.body = string(data)
		return page, nil
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return htmlPage{}, err
		}
	}
	page.body = strings.TrimSpace(buf.String())
	return page, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
