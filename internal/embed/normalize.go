package embed

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizeText strips markup from a submission description and collapses
// whitespace. Descriptions arrive from a rich-text form and may carry HTML;
// embedding a tag soup skews the rated dimensions.
func NormalizeText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	if !strings.ContainsAny(trimmed, "<>") {
		return collapseWhitespace(trimmed)
	}

	doc, err := html.Parse(strings.NewReader(trimmed))
	if err != nil {
		return collapseWhitespace(trimmed)
	}

	return collapseWhitespace(visibleText(doc))
}

// visibleText extracts text nodes, skipping script and style subtrees.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
