// File: internal/dom/locator.go
package dom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const idAnchorPrefix = `//*[@id='`

// NotFoundError is the per-field resolution failure: the locator walked off
// the document at a specific step. It is recorded by callers, not fatal.
type NotFoundError struct {
	Locator string
	Step    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("locator %q: no match at step %q", e.Locator, e.Step)
}

// MalformedLocatorError marks a locator string the resolver cannot parse.
type MalformedLocatorError struct {
	Locator string
	Reason  string
}

func (e *MalformedLocatorError) Error() string {
	return fmt.Sprintf("malformed locator %q: %s", e.Locator, e.Reason)
}

// BuildLocator derives the structural locator for an element. Elements with
// a usable id (on themselves or an ancestor) get an id-anchored expression,
// which stays stable across layout churn; everything else gets a
// root-to-element path of tag[index] steps, where the 1-based index counts
// preceding siblings sharing the tag name.
func BuildLocator(node *html.Node) string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}

	var steps []string
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		// Ids containing quotes cannot be embedded in the anchor form; those
		// elements fall through to the positional path.
		if id := Attr(n, "id"); id != "" && !strings.ContainsAny(id, `'"`) {
			steps = append(steps, idAnchorPrefix+id+`']`)
			return joinSteps(steps, true)
		}

		index := 1
		for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type == html.ElementNode && strings.EqualFold(prev.Data, tag) {
				index++
			}
		}
		steps = append(steps, fmt.Sprintf("%s[%d]", tag, index))
	}
	return joinSteps(steps, false)
}

// joinSteps reverses the bottom-up step list into a locator string.
func joinSteps(steps []string, anchored bool) string {
	if len(steps) == 0 {
		return ""
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	s := strings.Join(steps, "/")
	if !anchored {
		s = "/" + s
	}
	return s
}

var stepPattern = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9-]*)\[([0-9]+)\]$`)

// ResolveLocator re-resolves a locator against a (possibly reloaded)
// document. Id-anchored locators resolve by direct id lookup; path locators
// walk from the root, selecting the Nth same-tag element child at each step.
// Returns *NotFoundError when any step yields no match.
func ResolveLocator(doc *html.Node, locator string) (*html.Node, error) {
	if doc == nil {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "nil document"}
	}
	if locator == "" {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "empty"}
	}

	cur := doc
	rest := locator

	if strings.HasPrefix(rest, idAnchorPrefix) {
		end := strings.Index(rest, `']`)
		if end < 0 {
			return nil, &MalformedLocatorError{Locator: locator, Reason: "unterminated id anchor"}
		}
		id := rest[len(idAnchorPrefix):end]
		anchor := FindByID(doc, id)
		if anchor == nil {
			return nil, &NotFoundError{Locator: locator, Step: "id=" + id}
		}
		cur = anchor
		rest = rest[end+len(`']`):]
	} else if !strings.HasPrefix(rest, "/") {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "expected absolute path or id anchor"}
	}

	for _, step := range strings.Split(rest, "/") {
		if step == "" {
			continue
		}
		m := stepPattern.FindStringSubmatch(step)
		if m == nil {
			return nil, &MalformedLocatorError{Locator: locator, Reason: "bad step " + strconv.Quote(step)}
		}
		tag := strings.ToLower(m[1])
		index, _ := strconv.Atoi(m[2])

		next := nthElementChild(cur, tag, index)
		if next == nil {
			return nil, &NotFoundError{Locator: locator, Step: step}
		}
		cur = next
	}

	if cur == doc {
		return nil, &MalformedLocatorError{Locator: locator, Reason: "locator selects no element"}
	}
	return cur, nil
}

// nthElementChild returns the index-th (1-based) element child with the tag.
func nthElementChild(parent *html.Node, tag string, index int) *html.Node {
	seen := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || !strings.EqualFold(c.Data, tag) {
			continue
		}
		seen++
		if seen == index {
			return c
		}
	}
	return nil
}

// FindByID does a depth-first search for the element with the given id.
func FindByID(doc *html.Node, id string) *html.Node {
	if doc == nil || id == "" {
		return nil
	}
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(doc)
}
