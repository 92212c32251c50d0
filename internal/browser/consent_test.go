// File: internal/browser/consent_test.go
package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClickBySelectorScript_QuotesSelector(t *testing.T) {
	t.Parallel()
	script := clickBySelectorScript(`button[aria-label*="cookie" i]`)
	assert.Contains(t, script, `"button[aria-label*=\"cookie\" i]"`)
	assert.Contains(t, script, "querySelector")
}

func TestClickByTextScript_QuotesText(t *testing.T) {
	t.Parallel()
	script := clickByTextScript(`Say "yes"`)
	assert.Contains(t, script, `"Say \"yes\""`)
	assert.Contains(t, script, "textContent")
}

func TestConsentCandidatesAreNonEmpty(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, consentSelectors)
	assert.NotEmpty(t, consentTexts)
	for _, sel := range consentSelectors {
		assert.NotEmpty(t, strings.TrimSpace(sel))
	}
}
