// File: api/schemas/fields.go
package schemas

// FieldKind is the closed classification of a form control's interaction type.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindTel      FieldKind = "tel"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindCheckbox FieldKind = "checkbox"
	KindRadio    FieldKind = "radio"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
	KindFile     FieldKind = "file"
	KindHidden   FieldKind = "hidden"
	KindSubmit   FieldKind = "submit"
	KindButton   FieldKind = "button"
	KindUnknown  FieldKind = "unknown"
)

// allKinds is the membership set backing Valid.
var allKinds = map[FieldKind]struct{}{
	KindText: {}, KindEmail: {}, KindPassword: {}, KindTel: {}, KindNumber: {},
	KindDate: {}, KindCheckbox: {}, KindRadio: {}, KindSelect: {}, KindTextarea: {},
	KindFile: {}, KindHidden: {}, KindSubmit: {}, KindButton: {}, KindUnknown: {},
}

// Valid reports whether k is a member of the closed enumeration.
func (k FieldKind) Valid() bool {
	_, ok := allKinds[k]
	return ok
}

// IsButton reports whether the kind is a click-only control (submit or button).
func (k FieldKind) IsButton() bool {
	return k == KindSubmit || k == KindButton
}

// IsTextual reports whether the kind is filled by typing into it.
func (k FieldKind) IsTextual() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindTel, KindNumber, KindDate, KindTextarea:
		return true
	}
	return false
}

// FieldOption is a single choice inside a select control.
type FieldOption struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Selected bool   `json:"selected,omitempty"`
}

// FieldDescriptor is the normalized record describing one detected form
// control. It is produced by the scanner and consumed read-only by the
// filler; the locator is re-resolved against the live page, never a cached
// element handle.
type FieldDescriptor struct {
	// Locator is an XPath expression: id-anchored (//*[@id='x']) when the
	// element or an ancestor carries an id, otherwise a root-to-element
	// tag[index] path with 1-based same-tag sibling positions.
	Locator string    `json:"locator"`
	Kind    FieldKind `json:"kind"`
	// Name is the name attribute, falling back to the id, falling back to a
	// synthesized field_<ordinal> placeholder unique within the scan.
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	ReadOnly    bool   `json:"read_only,omitempty"`
	Multiple    bool   `json:"multiple,omitempty"`
	// Accept is the accepted-file-types filter, populated for file inputs.
	Accept string `json:"accept,omitempty"`
	// Value is the control's value at scan time. For checkboxes it is the
	// checked state as "true"/"false"; for radios it is the value attribute
	// the filler matches supplied data against.
	Value   string        `json:"value,omitempty"`
	Options []FieldOption `json:"options,omitempty"`
	// Markup is a trimmed snippet of the element's rendered markup, kept so
	// the classification-hint service can be run after the fact.
	Markup string `json:"markup,omitempty"`
}
