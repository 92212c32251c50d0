// File: internal/dom/classify.go
package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wronai/formap/api/schemas"
)

// inputKinds maps input[type] values onto the closed kind enumeration.
var inputKinds = map[string]schemas.FieldKind{
	"text":     schemas.KindText,
	"email":    schemas.KindEmail,
	"password": schemas.KindPassword,
	"tel":      schemas.KindTel,
	"number":   schemas.KindNumber,
	"date":     schemas.KindDate,
	"checkbox": schemas.KindCheckbox,
	"radio":    schemas.KindRadio,
	"file":     schemas.KindFile,
	"submit":   schemas.KindSubmit,
	"button":   schemas.KindButton,
	"hidden":   schemas.KindHidden,
}

// Classify derives the field kind from tag name and type attribute. It is a
// pure lookup: unrecognized input types map to text (browsers treat them as
// text inputs, and the mapping stays fillable), any other tag is unknown.
func Classify(tag, typ string) schemas.FieldKind {
	switch strings.ToLower(tag) {
	case "input":
		if kind, ok := inputKinds[strings.ToLower(typ)]; ok {
			return kind
		}
		return schemas.KindText
	case "select":
		return schemas.KindSelect
	case "textarea":
		return schemas.KindTextarea
	default:
		return schemas.KindUnknown
	}
}

// ClassifyNode is the node-based convenience over Classify.
func ClassifyNode(n *html.Node) schemas.FieldKind {
	if n == nil || n.Type != html.ElementNode {
		return schemas.KindUnknown
	}
	return Classify(n.Data, Attr(n, "type"))
}
