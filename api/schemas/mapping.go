// File: api/schemas/mapping.go
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// MappingSchemaVersion is bumped whenever the persisted mapping layout
// changes shape. Readers reject versions they do not understand.
const MappingSchemaVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FieldMapping is the persisted envelope around one scan's descriptors.
type FieldMapping struct {
	SchemaVersion int               `json:"schema_version"`
	URL           string            `json:"url"`
	ScannedAt     time.Time         `json:"scanned_at"`
	Fields        []FieldDescriptor `json:"fields"`
	// Hints holds advisory classification-service output keyed by locator.
	// It never overrides the locally derived Kind or Label.
	Hints map[string]FieldHint `json:"hints,omitempty"`
}

// NewFieldMapping stamps the envelope for a freshly completed scan.
func NewFieldMapping(url string, fields []FieldDescriptor) *FieldMapping {
	return &FieldMapping{
		SchemaVersion: MappingSchemaVersion,
		URL:           url,
		ScannedAt:     time.Now().UTC(),
		Fields:        fields,
	}
}

// LoadFieldMapping reads and validates a mapping file. I/O and decode
// failures are fatal to the caller and always carry the offending path.
func LoadFieldMapping(path string) (*FieldMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field mapping %q: %w", path, err)
	}
	var m FieldMapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding field mapping %q: %w", path, err)
	}
	if m.SchemaVersion > MappingSchemaVersion {
		return nil, fmt.Errorf("field mapping %q has unsupported schema version %d (max %d)", path, m.SchemaVersion, MappingSchemaVersion)
	}
	return &m, nil
}

// MarshalIndent renders the mapping as indented JSON.
func (m *FieldMapping) MarshalIndent() ([]byte, error) {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding field mapping: %w", err)
	}
	return raw, nil
}

// Save writes the mapping as indented JSON, creating parent directories.
func (m *FieldMapping) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating mapping directory for %q: %w", path, err)
		}
	}
	raw, err := m.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing field mapping %q: %w", path, err)
	}
	return nil
}

// FormData is the caller-supplied input for a fill pass: a free-form key
// tree of scalar values plus a flat name -> filesystem path table for file
// inputs. It is consumed once and discarded.
type FormData struct {
	Fields map[string]any    `json:"fields"`
	Files  map[string]string `json:"files,omitempty"`
}

// LoadFormData reads a value/file document from disk.
func LoadFormData(path string) (*FormData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading form data %q: %w", path, err)
	}
	var d FormData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding form data %q: %w", path, err)
	}
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	if d.Files == nil {
		d.Files = make(map[string]string)
	}
	return &d, nil
}

// Value resolves a field name against the key tree. Dot-separated names
// descend into nested objects, so "address.city" finds
// {"address": {"city": ...}}. A flat key containing dots wins over the
// nested interpretation.
func (d *FormData) Value(name string) (any, bool) {
	if d == nil || d.Fields == nil {
		return nil, false
	}
	if v, ok := d.Fields[name]; ok {
		return v, true
	}
	var cur any = d.Fields
	for _, key := range strings.Split(name, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = node[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores a value under a dot-path name, creating intermediate objects.
func (d *FormData) Set(name string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	keys := strings.Split(name, ".")
	cur := d.Fields
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
}
