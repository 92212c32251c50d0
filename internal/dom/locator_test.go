// File: internal/dom/locator_test.go
package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// parseDoc is a test helper that parses a full document and fails fast.
func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

// findInput locates the first <input> with the given name attribute.
func findInput(t *testing.T, doc *html.Node, name string) *html.Node {
	t.Helper()
	n := htmlquery.FindOne(doc, `//input[@name='`+name+`']`)
	require.NotNil(t, n, "test fixture is missing input %q", name)
	return n
}

func TestBuildLocator_IDAnchored(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><form><input id="email" name="email"></form></body></html>`)

	loc := BuildLocator(findInput(t, doc, "email"))
	assert.Equal(t, `//*[@id='email']`, loc)
}

func TestBuildLocator_AncestorID(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><div id="signup"><div><input name="user"></div></div></body></html>`)

	loc := BuildLocator(findInput(t, doc, "user"))
	assert.Equal(t, `//*[@id='signup']/div[1]/input[1]`, loc)
}

func TestBuildLocator_Positional(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><form>`+
		`<input name="first"><input name="second">`+
		`</form></body></html>`)

	assert.Equal(t, "/html[1]/body[1]/form[1]/input[1]", BuildLocator(findInput(t, doc, "first")))
	assert.Equal(t, "/html[1]/body[1]/form[1]/input[2]", BuildLocator(findInput(t, doc, "second")))
}

func TestBuildLocator_QuotedIDFallsBackToPath(t *testing.T) {
	t.Parallel()
	// An id containing a quote cannot be embedded in the anchor form.
	doc := parseDoc(t, `<html><body><input id="it's" name="odd"></body></html>`)

	loc := BuildLocator(findInput(t, doc, "odd"))
	assert.Equal(t, "/html[1]/body[1]/input[1]", loc)
}

func TestBuildLocator_NilAndNonElement(t *testing.T) {
	t.Parallel()
	assert.Empty(t, BuildLocator(nil))

	doc := parseDoc(t, `<html><body>just text</body></html>`)
	text := htmlquery.FindOne(doc, "//body").FirstChild
	require.NotNil(t, text)
	assert.Empty(t, BuildLocator(text))
}

// TestResolveLocator_RoundTrip checks the core property: resolving a built
// locator against the same document lands on the original node.
func TestResolveLocator_RoundTrip(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body>
		<form>
			<input id="email" name="email">
			<input name="first">
			<input name="second">
			<select name="country"><option>a</option></select>
			<textarea name="bio"></textarea>
		</form>
	</body></html>`)

	for _, name := range []string{"email", "first", "second"} {
		node := findInput(t, doc, name)
		loc := BuildLocator(node)
		require.NotEmpty(t, loc)

		got, err := ResolveLocator(doc, loc)
		require.NoError(t, err, "locator %q", loc)
		assert.Same(t, node, got, "locator %q resolved to a different node", loc)
	}

	sel := htmlquery.FindOne(doc, "//select")
	got, err := ResolveLocator(doc, BuildLocator(sel))
	require.NoError(t, err)
	assert.Same(t, sel, got)
}

func TestResolveLocator_MissingID(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><input id="present"></body></html>`)

	_, err := ResolveLocator(doc, `//*[@id='absent']`)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "id=absent", nf.Step)
}

func TestResolveLocator_FailingStep(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><form><input></form></body></html>`)

	_, err := ResolveLocator(doc, "/html[1]/body[1]/form[1]/input[2]")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "input[2]", nf.Step)
}

func TestResolveLocator_Malformed(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body></body></html>`)

	cases := []struct {
		name    string
		locator string
	}{
		{"empty", ""},
		{"relative", "input[1]"},
		{"unterminated anchor", `//*[@id='open`},
		{"bad step", "/html[1]/body[x]"},
		{"predicate syntax", "/html[1]/body[1]/input[@type='text']"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ResolveLocator(doc, tc.locator)
			var malformed *MalformedLocatorError
			assert.ErrorAs(t, err, &malformed, "locator %q", tc.locator)
		})
	}
}

func TestResolveLocator_NilDocument(t *testing.T) {
	t.Parallel()
	_, err := ResolveLocator(nil, "/html[1]")
	var malformed *MalformedLocatorError
	assert.ErrorAs(t, err, &malformed)
}

func TestFindByID(t *testing.T) {
	t.Parallel()
	doc := parseDoc(t, `<html><body><div><span id="deep">x</span></div></body></html>`)

	assert.NotNil(t, FindByID(doc, "deep"))
	assert.Nil(t, FindByID(doc, "missing"))
	assert.Nil(t, FindByID(doc, ""))
	assert.Nil(t, FindByID(nil, "deep"))
}

func TestNotFoundError_Message(t *testing.T) {
	t.Parallel()
	err := error(&NotFoundError{Locator: "/html[1]/input[3]", Step: "input[3]"})
	assert.Contains(t, err.Error(), "input[3]")

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
