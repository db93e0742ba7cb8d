package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML files. Block-level elements (headings,
// paragraphs, list items, table cells, line breaks) start a new line.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	var current strings.Builder

	flushLine := func() {
		t := strings.Join(strings.Fields(current.String()), " ")
		if t != "" {
			lines = append(lines, t)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "noscript", "template":
				return
			case "br":
				flushLine()
				return
			}
		}

		block := n.Type == html.ElementNode && isBlockElement(n.Data)
		if block {
			flushLine()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flushLine()
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flushLine()

	title := titleOf(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	return &Document{
		Title: title,
		Text:  strings.Join(lines, "\n"),
	}, nil
}

func isBlockElement(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6",
		"p", "div", "section", "article", "header", "footer", "aside", "nav",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "tr", "td", "th", "blockquote", "pre", "address", "hr":
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
