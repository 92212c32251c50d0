// File: api/schemas/fields_test.go
package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldKind_Valid(t *testing.T) {
	t.Parallel()
	for kind := range allKinds {
		assert.True(t, kind.Valid(), "kind %q", kind)
	}
	assert.False(t, FieldKind("dropdown").Valid())
	assert.False(t, FieldKind("").Valid())
}

func TestFieldKind_IsButton(t *testing.T) {
	t.Parallel()
	assert.True(t, KindSubmit.IsButton())
	assert.True(t, KindButton.IsButton())
	assert.False(t, KindCheckbox.IsButton())
	assert.False(t, KindText.IsButton())
}

func TestFieldKind_IsTextual(t *testing.T) {
	t.Parallel()
	textual := []FieldKind{KindText, KindEmail, KindPassword, KindTel, KindNumber, KindDate, KindTextarea}
	for _, kind := range textual {
		assert.True(t, kind.IsTextual(), "kind %q", kind)
	}
	for _, kind := range []FieldKind{KindCheckbox, KindRadio, KindSelect, KindFile, KindHidden, KindSubmit, KindButton, KindUnknown} {
		assert.False(t, kind.IsTextual(), "kind %q", kind)
	}
}
