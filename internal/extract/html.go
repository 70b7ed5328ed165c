package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements never contribute text to an uploaded HTML document.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "iframe": true, "svg": true,
}

// blockElements start on a new line.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "li": true, "ul": true, "ol": true, "tr": true, "table": true,
	"blockquote": true, "pre": true, "br": true, "hr": true,
}

// htmlToText reduces an HTML document to readable lines. The <title> comes
// first, then the body text. Headings become "Heading:" lines so that the
// layout engine treats them as section headers.
func htmlToText(input []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if t := findElement(root, "title"); t != nil {
		if title := strings.TrimSpace(textOf(t)); title != "" {
			b.WriteString(title)
			b.WriteString("\n")
		}
	}
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	walkHTML(&b, body)
	return b.String(), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func walkHTML(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpaces(n.Data))
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skippedElements[name] {
			return
		}
		if isHeading(name) {
			if h := strings.TrimSpace(collapseSpaces(textOf(n))); h != "" {
				b.WriteString("\n")
				b.WriteString(strings.TrimRight(h, ":"))
				b.WriteString(":\n")
			}
			return
		}
		if name == "li" {
			b.WriteString("\n- ")
		} else if blockElements[name] {
			b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(b, c)
	}
	if n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)] {
		b.WriteString("\n")
	}
}

func isHeading(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
