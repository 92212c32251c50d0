// File: internal/scanner/scanner.go
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/wronai/formap/api/schemas"
	"github.com/wronai/formap/internal/dom"
)

// DefaultCandidateSelector matches the interactive controls worth mapping:
// inputs (hidden ones excluded), selects, textareas, and ARIA/contenteditable
// text boxes.
const DefaultCandidateSelector = `//input[not(@type='hidden')] | //select | //textarea | //*[@role='textbox'] | //*[@contenteditable='true']`

// hiddenCandidateSelector is used when the caller opts in to hidden fields.
const hiddenCandidateSelector = `//input | //select | //textarea | //*[@role='textbox'] | //*[@contenteditable='true']`

// markupSnippetMax caps the per-field markup snippet kept for the hint service.
const markupSnippetMax = 512

// Options is the closed option set for one scan invocation.
type Options struct {
	// IncludeHidden emits fields that are invisible or of kind hidden.
	IncludeHidden bool
	// IncludeButtons emits submit/button kinds, excluded by default.
	IncludeButtons bool
	// MaxFields stops emitting once reached; zero means unlimited.
	MaxFields int
	// CandidateSelector overrides the XPath union used for enumeration.
	CandidateSelector string
	// LabelTextBudget tunes the proximity label heuristic.
	LabelTextBudget int
}

func (o Options) selector() string {
	if o.CandidateSelector != "" {
		return o.CandidateSelector
	}
	if o.IncludeHidden {
		return hiddenCandidateSelector
	}
	return DefaultCandidateSelector
}

// Scanner walks a rendered document and produces field descriptors.
type Scanner struct {
	page   schemas.Page
	logger *zap.Logger
}

// New builds a scanner over the given rendered-document provider.
func New(page schemas.Page, logger *zap.Logger) *Scanner {
	return &Scanner{page: page, logger: logger.Named("scanner")}
}

// Scan enumerates candidate elements in document order and emits one
// descriptor per unique locator. A failure while inspecting one candidate is
// logged and that element skipped; only a failure to read the document at
// all is fatal. The returned slice holds whatever was collected.
func (s *Scanner) Scan(ctx context.Context, opts Options) ([]schemas.FieldDescriptor, error) {
	raw, err := s.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing rendered document: %w", err)
	}
	doc, err := htmlquery.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered document: %w", err)
	}

	candidates, err := htmlquery.QueryAll(doc, opts.selector())
	if err != nil {
		return nil, fmt.Errorf("candidate selector %q: %w", opts.selector(), err)
	}
	// The selector is a union, so matches can repeat and their ordering is
	// per-operand. Emission must follow document order, so mark the matches
	// and re-walk the tree.
	matched := make(map[*html.Node]struct{}, len(candidates))
	for _, n := range candidates {
		matched[n] = struct{}{}
	}
	s.logger.Debug("Collected candidate elements", zap.Int("count", len(candidates)))

	var fields []schemas.FieldDescriptor
	// seen is scoped to this invocation: repeated scans in one process must
	// not leak dedup state between unrelated pages.
	seen := make(map[string]struct{})

	inDocumentOrder(doc, func(n *html.Node) bool {
		if _, ok := matched[n]; !ok {
			return true
		}
		if opts.MaxFields > 0 && len(fields) >= opts.MaxFields {
			return false
		}
		field, err := s.inspect(ctx, n, doc, opts, seen, len(fields))
		if err != nil {
			s.logger.Warn("Skipping element after inspection failure",
				zap.String("tag", n.Data), zap.Error(err))
			return true
		}
		if field != nil {
			seen[field.Locator] = struct{}{}
			fields = append(fields, *field)
		}
		return true
	})

	s.logger.Info("Scan complete", zap.Int("fields", len(fields)))
	return fields, nil
}

// inspect turns one candidate element into a descriptor, or nil when the
// element is filtered out by the options or deduplicated.
func (s *Scanner) inspect(ctx context.Context, n, doc *html.Node, opts Options, seen map[string]struct{}, ordinal int) (*schemas.FieldDescriptor, error) {
	kind := dom.ClassifyNode(n)
	if kind == schemas.KindHidden && !opts.IncludeHidden {
		return nil, nil
	}
	if kind.IsButton() && !opts.IncludeButtons {
		return nil, nil
	}

	locator := dom.BuildLocator(n)
	if locator == "" {
		return nil, fmt.Errorf("no locator derivable for <%s>", n.Data)
	}
	// First occurrence wins: an element matched by overlapping selectors, or
	// two candidates collapsing to the same path, yields one descriptor.
	if _, dup := seen[locator]; dup {
		return nil, nil
	}

	if !opts.IncludeHidden && kind != schemas.KindHidden {
		if dom.StaticallyHidden(n) {
			return nil, nil
		}
		visible, err := s.page.IsVisible(ctx, locator)
		if err != nil {
			return nil, fmt.Errorf("visibility check for %s: %w", locator, err)
		}
		if !visible {
			return nil, nil
		}
	}

	name := dom.Attr(n, "name")
	if name == "" {
		name = dom.Attr(n, "id")
	}
	if name == "" {
		name = fmt.Sprintf("field_%d", ordinal)
	}

	field := &schemas.FieldDescriptor{
		Locator:     locator,
		Kind:        kind,
		Name:        name,
		Label:       dom.LabelFor(doc, n, opts.LabelTextBudget),
		Placeholder: dom.Attr(n, "placeholder"),
		Required:    dom.HasAttr(n, "required") || strings.EqualFold(dom.Attr(n, "aria-required"), "true"),
		Disabled:    dom.HasAttr(n, "disabled"),
		ReadOnly:    dom.HasAttr(n, "readonly"),
		Multiple:    dom.HasAttr(n, "multiple"),
		Value:       dom.Attr(n, "value"),
		Markup:      dom.RenderSnippet(n, markupSnippetMax),
	}

	switch kind {
	case schemas.KindSelect:
		opt, err := selectOptions(n)
		if err != nil {
			return nil, err
		}
		field.Options = opt
	case schemas.KindFile:
		field.Accept = dom.Attr(n, "accept")
	case schemas.KindCheckbox:
		if dom.HasAttr(n, "checked") {
			field.Value = "true"
		} else {
			field.Value = "false"
		}
	}

	return field, nil
}

// selectOptions reads the ordered option list with selection state.
func selectOptions(sel *html.Node) ([]schemas.FieldOption, error) {
	nodes, err := htmlquery.QueryAll(sel, ".//option")
	if err != nil {
		return nil, fmt.Errorf("reading select options: %w", err)
	}
	options := make([]schemas.FieldOption, 0, len(nodes))
	for _, n := range nodes {
		options = append(options, schemas.FieldOption{
			Value:    dom.Attr(n, "value"),
			Text:     dom.Text(n),
			Selected: dom.HasAttr(n, "selected"),
		})
	}
	return options, nil
}

// inDocumentOrder visits element nodes depth-first in document order. The
// callback returns false to stop the walk.
func inDocumentOrder(root *html.Node, visit func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}
