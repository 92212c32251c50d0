// File: internal/hints/classifier.go
package hints

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
)

const classifyPrompt = `You are annotating one HTML form control.
Given its raw markup, guess the field's semantic purpose.
Respond with a single JSON object, no prose, with keys:
  "kind": one of text, email, password, tel, number, date, checkbox, radio,
          select, textarea, file, hidden, submit, button, unknown
  "name": a short machine-friendly identifier for the field
  "label": a short human caption for the field
  "required": boolean, whether the field appears mandatory
  "description": one sentence on what value belongs in the field

MARKUP:
`

// Classifier wraps an LLM as a best-effort field-purpose guesser. Output is
// advisory metadata only: it never overrides scanner-derived kinds or
// labels, and every failure degrades to a zero-value hint. Results are
// cached by a hash of the markup so duplicate controls cost one call.
type Classifier struct {
	llm    LLMClient
	logger *zap.Logger

	mu    sync.Mutex
	cache map[uint64]schemas.FieldHint
}

var _ schemas.Classifier = (*Classifier)(nil)

// NewClassifier wraps the given LLM client.
func NewClassifier(llm LLMClient, logger *zap.Logger) *Classifier {
	return &Classifier{
		llm:    llm,
		logger: logger.Named("hints"),
		cache:  make(map[uint64]schemas.FieldHint),
	}
}

// ClassifyElement returns the advisory hint for one element's markup. A
// zero hint means the service had nothing useful to say (or failed — the
// caller cannot and should not tell the difference).
func (c *Classifier) ClassifyElement(ctx context.Context, markup string) schemas.FieldHint {
	markup = strings.TrimSpace(markup)
	if markup == "" || c.llm == nil {
		return schemas.FieldHint{}
	}

	key := markupHash(markup)
	c.mu.Lock()
	if hint, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return hint
	}
	c.mu.Unlock()

	raw, err := c.llm.Generate(ctx, classifyPrompt+markup)
	if err != nil {
		c.logger.Debug("Hint service call failed, returning empty hint", zap.Error(err))
		return schemas.FieldHint{}
	}

	var hint schemas.FieldHint
	if err := json.Unmarshal([]byte(stripFences(raw)), &hint); err != nil {
		c.logger.Debug("Hint service returned unparseable output", zap.Error(err))
		return schemas.FieldHint{}
	}
	if hint.Kind != "" && !schemas.FieldKind(hint.Kind).Valid() {
		hint.Kind = string(schemas.KindUnknown)
	}

	c.mu.Lock()
	c.cache[key] = hint
	c.mu.Unlock()
	return hint
}

// markupHash fingerprints an element's markup for the cache.
func markupHash(markup string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(markup))
	return h.Sum64()
}

// stripFences unwraps model output that arrives inside a markdown code
// block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
