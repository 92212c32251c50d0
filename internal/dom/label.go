// File: internal/dom/label.go
package dom

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// DefaultLabelTextBudget bounds the proximity heuristic: nearby text longer
// than this is assumed to be page boilerplate, not a caption.
const DefaultLabelTextBudget = 100

// maxLabelClimb bounds how far the proximity heuristic walks up the tree.
const maxLabelClimb = 3

// LabelFor resolves a human-readable caption for a form element via a fixed
// fallback chain: a label whose for attribute matches the element's id, then
// a wrapping ancestor label, then a label pointing at the element's name
// (some markup uses name where id belongs), then nearby preceding text
// within the budget. Never fails; returns "" when nothing yields text.
func LabelFor(doc, node *html.Node, budget int) string {
	if node == nil {
		return ""
	}
	if budget <= 0 {
		budget = DefaultLabelTextBudget
	}

	if id := Attr(node, "id"); id != "" {
		if text := labelPointingAt(doc, id); text != "" {
			return text
		}
	}

	for cur := node.Parent; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if strings.EqualFold(cur.Data, "label") {
			if text := Text(cur); text != "" {
				return text
			}
			break
		}
	}

	if name := Attr(node, "name"); name != "" {
		if text := labelPointingAt(doc, name); text != "" {
			return text
		}
	}

	return precedingText(node, budget)
}

// labelPointingAt finds <label for=ref> and returns its collapsed text.
func labelPointingAt(doc *html.Node, ref string) string {
	lit, ok := xpathLiteral(ref)
	if !ok {
		return ""
	}
	label := htmlquery.FindOne(doc, "//label[@for="+lit+"]")
	return Text(label)
}

// xpathLiteral quotes a string for embedding in an XPath expression. Values
// containing both quote characters are rejected rather than concat()-mangled.
func xpathLiteral(s string) (string, bool) {
	switch {
	case !strings.Contains(s, `'`):
		return `'` + s + `'`, true
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, true
	default:
		return "", false
	}
}

// precedingText scans preceding siblings (climbing a few ancestor levels)
// for the closest non-empty text run. This is inherently fuzzy: there is no
// correctness criterion for "the text next to an input", so the first hit
// wins and anything over budget is discarded as boilerplate.
func precedingText(node *html.Node, budget int) string {
	climbed := 0
	for cur := node; cur != nil && climbed <= maxLabelClimb; cur = cur.Parent {
		for sib := cur.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if skipForLabel(sib) {
				continue
			}
			if text := Text(sib); text != "" {
				if len(text) <= budget {
					return text
				}
				// A large text block this close means we are already in page
				// prose; stop before capturing a paragraph as a caption.
				return ""
			}
		}
		if cur.Parent != nil && (strings.EqualFold(cur.Parent.Data, "body") || strings.EqualFold(cur.Parent.Data, "form")) {
			break
		}
		climbed++
	}
	return ""
}

// skipForLabel filters nodes whose text can never be a caption.
func skipForLabel(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "input", "select", "textarea", "button":
			return true
		}
	}
	return false
}
