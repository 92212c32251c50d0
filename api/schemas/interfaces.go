// File: api/schemas/interfaces.go
package schemas

import "context"

// Page is the capability surface the scanner and filler require from a
// rendered-document provider. All locators are XPath expressions produced at
// scan time; implementations re-resolve them against the live tree on every
// call. Implementations must honor context cancellation and bound each
// element-resolution wait with their own timeout.
type Page interface {
	// Navigate loads the URL and waits for the page to stabilize. A failure
	// here is fatal to the current operation.
	Navigate(ctx context.Context, url string) error

	// HTML returns a snapshot of the rendered document's outer HTML.
	HTML(ctx context.Context) (string, error)

	// IsVisible reports whether the element resolved by the locator is
	// currently rendered and visible.
	IsVisible(ctx context.Context, locator string) (bool, error)

	// IsChecked reports the live checked state of a checkbox or radio.
	IsChecked(ctx context.Context, locator string) (bool, error)

	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView(ctx context.Context, locator string) error

	// Click performs a click on the element.
	Click(ctx context.Context, locator string) error

	// ClearAndType empties the element's current value and inserts text with
	// character-paced keystrokes so key-driven page logic fires.
	ClearAndType(ctx context.Context, locator, text string) error

	// SelectOption chooses the option whose value exactly equals value.
	SelectOption(ctx context.Context, locator, value string) error

	// SetFiles attaches local files to a file input.
	SetFiles(ctx context.Context, locator string, paths []string) error
}

// FieldHint is the advisory output of the classification-hint service for a
// single element. It is best-effort metadata only and is never trusted to
// override scanner-derived values.
type FieldHint struct {
	Kind        string `json:"kind,omitempty"`
	Name        string `json:"name,omitempty"`
	Label       string `json:"label,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// Classifier guesses a field's semantic purpose from its raw markup.
// Implementations swallow their own failures and return a zero hint.
type Classifier interface {
	ClassifyElement(ctx context.Context, markup string) FieldHint
}
