package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText reduces text that may carry HTML markup to its readable content.
// Only known HTML elements count as markup: text such as "Option<T>" or
// "Vec<u8>" is kept as given, whitespace-collapsed.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	text, ok := extractText(s)
	if !ok || text == "" {
		return strings.Join(strings.Fields(s), " ")
	}
	return text
}

// extractText parses HTML and returns readable text content. ok is false when
// the fragment holds an element HTML does not define.
func extractText(htmlContent string) (string, bool) {
	nodes, err := html.ParseFragment(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", false
	}
	for _, n := range nodes {
		if !knownElements(n) {
			return "", false
		}
	}

	var sb strings.Builder
	var extract func(*html.Node)

	// Tags to skip (non-content)
	skipTags := map[string]bool{
		"script": true, "style": true, "noscript": true, "iframe": true,
	}

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	for _, n := range nodes {
		extract(n)
	}

	// Clean up: collapse whitespace, trim
	return strings.Join(strings.Fields(sb.String()), " "), true
}

func knownElements(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom == 0 {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !knownElements(c) {
			return false
		}
	}
	return true
}
