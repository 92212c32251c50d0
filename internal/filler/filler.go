// File: internal/filler/filler.go
package filler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
)

// truthyTokens is the fixed set of values meaning "checked" for checkboxes.
var truthyTokens = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "on": {},
}

// Truthy reports whether a supplied scalar means "checked".
func Truthy(v string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Options tunes one fill pass.
type Options struct {
	// UploadDir resolves relative file paths in the file map.
	UploadDir string
	// AutoFiles lets file fields absent from the file map fall back to
	// filename matching inside UploadDir.
	AutoFiles bool
	// FieldDelay is the pacing pause between fields, a latency budget for
	// pages with debounced validation, not a correctness requirement.
	FieldDelay time.Duration
	// FieldTimeout bounds each element resolution and interaction. On
	// timeout the single field is abandoned, not the whole pass.
	FieldTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.FieldTimeout <= 0 {
		o.FieldTimeout = 10 * time.Second
	}
	if o.FieldDelay < 0 {
		o.FieldDelay = 0
	}
}

// Filler replays values and files into fields located by stored descriptors.
// Descriptors are read-only input; the filler never mutates them.
type Filler struct {
	page   schemas.Page
	logger *zap.Logger
	opts   Options
}

// New builds a filler over the given rendered-document provider.
func New(page schemas.Page, logger *zap.Logger, opts Options) *Filler {
	opts.setDefaults()
	return &Filler{page: page, logger: logger.Named("filler"), opts: opts}
}

// Fill runs the two-pass protocol: every non-file field first, then file
// attachments. Fields without supplied data are skipped silently; per-field
// failures are recorded and the pass continues. The error return is reserved
// for operation-level failures (context cancellation); partial fills are
// success with a report.
func (f *Filler) Fill(ctx context.Context, data *schemas.FormData, fields []schemas.FieldDescriptor) (*schemas.FillReport, error) {
	report := &schemas.FillReport{}

	for i := range fields {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		field := &fields[i]
		if field.Kind == schemas.KindFile {
			continue
		}
		res := f.fillValue(ctx, field, data)
		report.Record(res)
		// Pacing only matters after an interaction; skipped fields cost nothing.
		if res.Status != schemas.StatusSkipped && f.opts.FieldDelay > 0 {
			select {
			case <-time.After(f.opts.FieldDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	for i := range fields {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		field := &fields[i]
		if field.Kind != schemas.KindFile {
			continue
		}
		report.Record(f.attachFile(ctx, field, data))
	}

	f.logger.Info("Fill pass complete",
		zap.Int("attempted", report.Attempted),
		zap.Int("filled", report.Filled),
		zap.Int("failed", report.Failed))
	return report, nil
}

// fillValue applies one non-file field.
func (f *Filler) fillValue(ctx context.Context, field *schemas.FieldDescriptor, data *schemas.FormData) schemas.FieldResult {
	res := schemas.FieldResult{Name: field.Name, Locator: field.Locator, Kind: field.Kind, Status: schemas.StatusSkipped}

	raw, ok := data.Value(field.Name)
	if !ok {
		// Partial data is expected; nothing to report.
		return res
	}
	value := fmt.Sprintf("%v", raw)

	opCtx, cancel := context.WithTimeout(ctx, f.opts.FieldTimeout)
	defer cancel()

	if err := f.page.ScrollIntoView(opCtx, field.Locator); err != nil {
		return f.failed(res, field, err)
	}

	switch field.Kind {
	case schemas.KindCheckbox:
		checked, err := f.page.IsChecked(opCtx, field.Locator)
		if err != nil {
			return f.failed(res, field, err)
		}
		// Toggle only on mismatch so repeated fills stay idempotent.
		if Truthy(value) != checked {
			if err := f.page.Click(opCtx, field.Locator); err != nil {
				return f.failed(res, field, err)
			}
		}

	case schemas.KindRadio:
		// Radios sharing a name appear as one descriptor per element; only
		// the one whose own value matches the supplied data gets checked.
		if value != field.Value {
			return res
		}
		checked, err := f.page.IsChecked(opCtx, field.Locator)
		if err != nil {
			return f.failed(res, field, err)
		}
		if !checked {
			if err := f.page.Click(opCtx, field.Locator); err != nil {
				return f.failed(res, field, err)
			}
		}

	case schemas.KindSelect:
		if err := f.page.SelectOption(opCtx, field.Locator, value); err != nil {
			return f.failed(res, field, err)
		}

	case schemas.KindHidden, schemas.KindSubmit, schemas.KindButton:
		return res

	default:
		// Text-like kinds, plus unknown: clear then character-paced typing.
		if err := f.page.ClearAndType(opCtx, field.Locator, value); err != nil {
			return f.failed(res, field, err)
		}
	}

	f.logger.Debug("Filled field", zap.String("name", field.Name), zap.String("kind", string(field.Kind)))
	res.Status = schemas.StatusFilled
	return res
}

// attachFile applies one file field during the second pass.
func (f *Filler) attachFile(ctx context.Context, field *schemas.FieldDescriptor, data *schemas.FormData) schemas.FieldResult {
	res := schemas.FieldResult{Name: field.Name, Locator: field.Locator, Kind: field.Kind, Status: schemas.StatusSkipped}

	path, ok := data.Files[field.Name]
	if ok {
		if !filepath.IsAbs(path) && f.opts.UploadDir != "" {
			path = filepath.Join(f.opts.UploadDir, path)
		}
	} else {
		if !f.opts.AutoFiles || f.opts.UploadDir == "" {
			return res
		}
		matched, found := FindMatchingFile(f.opts.UploadDir, field.Name, nil)
		if !found {
			return res
		}
		f.logger.Debug("Matched upload file by name",
			zap.String("name", field.Name), zap.String("path", matched))
		path = matched
	}
	if _, err := os.Stat(path); err != nil {
		// Missing files are logged and skipped, never fatal.
		f.logger.Warn("Upload file not found, skipping field",
			zap.String("name", field.Name), zap.String("path", path))
		res.Err = fmt.Sprintf("file not found: %s", path)
		return res
	}

	opCtx, cancel := context.WithTimeout(ctx, f.opts.FieldTimeout)
	defer cancel()

	if err := f.page.ScrollIntoView(opCtx, field.Locator); err != nil {
		return f.failed(res, field, err)
	}
	if err := f.page.SetFiles(opCtx, field.Locator, []string{path}); err != nil {
		return f.failed(res, field, err)
	}

	f.logger.Debug("Attached file", zap.String("name", field.Name), zap.String("path", path))
	res.Status = schemas.StatusFilled
	return res
}

func (f *Filler) failed(res schemas.FieldResult, field *schemas.FieldDescriptor, err error) schemas.FieldResult {
	f.logger.Warn("Field interaction failed",
		zap.String("name", field.Name), zap.String("locator", field.Locator), zap.Error(err))
	res.Status = schemas.StatusFailed
	res.Err = err.Error()
	return res
}
