// File: internal/filler/files.go
package filler

import (
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// DefaultUploadExtensions are the document types considered when matching
// upload files by field name.
var DefaultUploadExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".odt"}

// fieldNameVariants maps canonical field-name tokens to alternative tokens
// commonly seen in filenames (including German job-portal spellings).
var fieldNameVariants = map[string][]string{
	"cv":           {"cv", "resume", "curriculum", "lebenslauf"},
	"resume":       {"cv", "resume", "curriculum", "lebenslauf"},
	"cover_letter": {"cover", "letter", "anschreiben", "motivation"},
	"photo":        {"photo", "picture", "bild", "portrait"},
}

// DefaultUploadDir is where relative upload paths resolve when the caller
// configures nothing: ~/uploads.
func DefaultUploadDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "uploads"
	}
	return filepath.Join(home, "uploads")
}

// FindMatchingFile scans the upload directory for a file whose name suggests
// it belongs to the field: the field name (or a known variant of it) must
// appear in the file's base name, and the extension must be in exts. When no
// name matches, the first file with an accepted extension is returned as a
// last resort. This is a filename heuristic, nothing more.
func FindMatchingFile(dir, fieldName string, exts []string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	if len(exts) == 0 {
		exts = DefaultUploadExtensions
	}

	variants := variantsFor(fieldName)

	var fallback string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !extensionAccepted(name, exts) {
			continue
		}
		if fallback == "" {
			fallback = filepath.Join(dir, name)
		}
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		for _, v := range variants {
			if strings.Contains(stem, v) {
				return filepath.Join(dir, name), true
			}
		}
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// variantsFor normalizes a field name and expands it with known synonyms.
func variantsFor(fieldName string) []string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, fieldName)

	for key, variants := range fieldNameVariants {
		if strings.Contains(clean, key) {
			out := make([]string, 0, len(variants)+1)
			out = append(out, variants...)
			return append(out, key)
		}
	}
	return []string{clean}
}

func extensionAccepted(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range exts {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
