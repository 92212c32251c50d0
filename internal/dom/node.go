// File: internal/dom/node.go
package dom

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	return htmlquery.SelectAttr(n, name)
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(n *html.Node, name string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

// Text returns the node's inner text with whitespace collapsed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return CollapseSpace(htmlquery.InnerText(n))
}

// CollapseSpace trims and folds runs of whitespace into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderSnippet serializes the element to HTML, truncated to max bytes.
// Used to hand a representative chunk of markup to the hint service.
func RenderSnippet(n *html.Node, max int) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	s := buf.String()
	if max > 0 && len(s) > max {
		s = s[:max]
	}
	return s
}

// StaticallyHidden reports whether the element is hidden by markup alone:
// type=hidden, the hidden attribute, aria-hidden, or an inline display/
// visibility style on the element or an ancestor. It is a cheap pre-filter;
// the live page remains the authority on visibility.
func StaticallyHidden(n *html.Node) bool {
	if n == nil {
		return true
	}
	if strings.EqualFold(Attr(n, "type"), "hidden") {
		return true
	}
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if HasAttr(cur, "hidden") || strings.EqualFold(Attr(cur, "aria-hidden"), "true") {
			return true
		}
		style := strings.ReplaceAll(strings.ToLower(Attr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
