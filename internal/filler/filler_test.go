// File: internal/filler/filler_test.go
package filler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
)

// statefulPage records interactions and simulates element state keyed by
// locator, so checkbox toggling and select matching can be asserted.
type statefulPage struct {
	checked  map[string]bool
	typed    map[string]string
	selected map[string]string
	files    map[string][]string
	clicks   []string
	scrolls  []string

	failing map[string]error
}

func newStatefulPage() *statefulPage {
	return &statefulPage{
		checked:  make(map[string]bool),
		typed:    make(map[string]string),
		selected: make(map[string]string),
		files:    make(map[string][]string),
		failing:  make(map[string]error),
	}
}

func (p *statefulPage) fail(locator string) error {
	return p.failing[locator]
}

func (p *statefulPage) Navigate(context.Context, string) error { return nil }
func (p *statefulPage) HTML(context.Context) (string, error)   { return "", nil }
func (p *statefulPage) IsVisible(context.Context, string) (bool, error) {
	return true, nil
}

func (p *statefulPage) IsChecked(_ context.Context, locator string) (bool, error) {
	if err := p.fail(locator); err != nil {
		return false, err
	}
	return p.checked[locator], nil
}

func (p *statefulPage) ScrollIntoView(_ context.Context, locator string) error {
	p.scrolls = append(p.scrolls, locator)
	return nil
}

func (p *statefulPage) Click(_ context.Context, locator string) error {
	if err := p.fail(locator); err != nil {
		return err
	}
	p.clicks = append(p.clicks, locator)
	p.checked[locator] = !p.checked[locator]
	return nil
}

func (p *statefulPage) ClearAndType(_ context.Context, locator, text string) error {
	if err := p.fail(locator); err != nil {
		return err
	}
	p.typed[locator] = text
	return nil
}

func (p *statefulPage) SelectOption(_ context.Context, locator, value string) error {
	if err := p.fail(locator); err != nil {
		return err
	}
	p.selected[locator] = value
	return nil
}

func (p *statefulPage) SetFiles(_ context.Context, locator string, paths []string) error {
	if err := p.fail(locator); err != nil {
		return err
	}
	p.files[locator] = paths
	return nil
}

func field(name string, kind schemas.FieldKind) schemas.FieldDescriptor {
	return schemas.FieldDescriptor{Name: name, Kind: kind, Locator: "//*[@id='" + name + "']"}
}

func dataOf(values map[string]any) *schemas.FormData {
	return &schemas.FormData{Fields: values, Files: map[string]string{}}
}

func runFill(t *testing.T, page *statefulPage, data *schemas.FormData, fields []schemas.FieldDescriptor, opts Options) *schemas.FillReport {
	t.Helper()
	report, err := New(page, zap.NewNop(), opts).Fill(context.Background(), data, fields)
	require.NoError(t, err)
	return report
}

func TestTruthy(t *testing.T) {
	t.Parallel()
	for _, v := range []string{"true", "TRUE", " 1 ", "yes", "on", "On"} {
		assert.True(t, Truthy(v), "value %q", v)
	}
	for _, v := range []string{"false", "0", "no", "off", "", "enabled"} {
		assert.False(t, Truthy(v), "value %q", v)
	}
}

func TestFill_TextFields(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{
		field("email", schemas.KindEmail),
		field("bio", schemas.KindTextarea),
	}
	data := dataOf(map[string]any{"email": "a@b.de", "bio": "hello"})

	report := runFill(t, page, data, fields, Options{})
	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, "a@b.de", page.typed["//*[@id='email']"])
	assert.Equal(t, "hello", page.typed["//*[@id='bio']"])
	// Each interaction is preceded by a scroll.
	assert.Len(t, page.scrolls, 2)
}

func TestFill_MissingDataSkippedSilently(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("email", schemas.KindEmail)}

	report := runFill(t, page, dataOf(map[string]any{}), fields, Options{})
	require.Len(t, report.Results, 1)
	assert.Equal(t, schemas.StatusSkipped, report.Results[0].Status)
	assert.Empty(t, report.Results[0].Err)
	assert.Empty(t, page.scrolls, "no interaction without data")
}

func TestFill_CheckboxIdempotent(t *testing.T) {
	t.Parallel()
	loc := "//*[@id='agree']"
	fields := []schemas.FieldDescriptor{field("agree", schemas.KindCheckbox)}
	data := dataOf(map[string]any{"agree": "yes"})

	// Unchecked + truthy value: exactly one click.
	page := newStatefulPage()
	runFill(t, page, data, fields, Options{})
	assert.Len(t, page.clicks, 1)
	assert.True(t, page.checked[loc])

	// A second fill over the now-checked box must not toggle it off.
	report := runFill(t, page, data, fields, Options{})
	assert.Len(t, page.clicks, 1)
	assert.True(t, page.checked[loc])
	assert.Equal(t, 1, report.Filled)
}

func TestFill_CheckboxUnchecksOnFalsy(t *testing.T) {
	t.Parallel()
	loc := "//*[@id='agree']"
	page := newStatefulPage()
	page.checked[loc] = true

	runFill(t, page, dataOf(map[string]any{"agree": "false"}), []schemas.FieldDescriptor{field("agree", schemas.KindCheckbox)}, Options{})
	assert.False(t, page.checked[loc])
	assert.Len(t, page.clicks, 1)
}

func TestFill_RadioMatchesOwnValueOnly(t *testing.T) {
	t.Parallel()
	male := field("gender", schemas.KindRadio)
	male.Locator = "//*[@id='gender-m']"
	male.Value = "m"
	female := field("gender", schemas.KindRadio)
	female.Locator = "//*[@id='gender-f']"
	female.Value = "f"

	page := newStatefulPage()
	report := runFill(t, page, dataOf(map[string]any{"gender": "f"}), []schemas.FieldDescriptor{male, female}, Options{})

	assert.Equal(t, []string{"//*[@id='gender-f']"}, page.clicks)
	assert.Equal(t, 1, report.Filled)
	assert.Equal(t, 1, report.Skipped)
}

func TestFill_SelectPassesRawValue(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("country", schemas.KindSelect)}

	runFill(t, page, dataOf(map[string]any{"country": "de"}), fields, Options{})
	assert.Equal(t, "de", page.selected["//*[@id='country']"])
}

func TestFill_NumericValueFormatting(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("age", schemas.KindNumber)}

	// JSON numbers arrive as float64; whole numbers must not grow a ".0" the
	// page would reject. fmt's %v renders 30 for float64(30).
	runFill(t, page, dataOf(map[string]any{"age": float64(30)}), fields, Options{})
	assert.Equal(t, "30", page.typed["//*[@id='age']"])
}

func TestFill_NonInteractiveKindsSkipped(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{
		field("csrf", schemas.KindHidden),
		field("send", schemas.KindSubmit),
	}
	data := dataOf(map[string]any{"csrf": "tok", "send": "go"})

	report := runFill(t, page, data, fields, Options{})
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, page.clicks)
	assert.Empty(t, page.typed)
}

func TestFill_DotPathNames(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("address.city", schemas.KindText)}
	data := dataOf(map[string]any{"address": map[string]any{"city": "Berlin"}})

	runFill(t, page, data, fields, Options{})
	assert.Equal(t, "Berlin", page.typed["//*[@id='address.city']"])
}

func TestFill_PerFieldFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	page.failing["//*[@id='broken']"] = errors.New("node detached")

	fields := []schemas.FieldDescriptor{
		field("broken", schemas.KindText),
		field("email", schemas.KindEmail),
	}
	data := dataOf(map[string]any{"broken": "x", "email": "a@b.de"})

	report := runFill(t, page, data, fields, Options{})
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Filled)
	require.Len(t, report.Results, 2)
	assert.Equal(t, schemas.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Err, "node detached")
	assert.Equal(t, "a@b.de", page.typed["//*[@id='email']"])
}

func TestFill_TwoPassOrdering(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()

	upload := field("cv", schemas.KindFile)
	fields := []schemas.FieldDescriptor{
		upload,
		field("email", schemas.KindEmail),
	}

	dir := t.TempDir()
	cvPath := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(cvPath, []byte("%PDF"), 0o644))

	data := dataOf(map[string]any{"email": "a@b.de"})
	data.Files["cv"] = "cv.pdf"

	report := runFill(t, page, data, fields, Options{UploadDir: dir})
	assert.Equal(t, 2, report.Filled)

	// File fields run after all value fields, regardless of descriptor order.
	require.Len(t, report.Results, 2)
	assert.Equal(t, "email", report.Results[0].Name)
	assert.Equal(t, "cv", report.Results[1].Name)
	assert.Equal(t, []string{cvPath}, page.files[upload.Locator])
}

func TestFill_MissingUploadFileRecordedAsSkip(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	data := dataOf(nil)
	data.Files["cv"] = filepath.Join(t.TempDir(), "nope.pdf")

	report := runFill(t, page, data, fields, Options{})
	require.Len(t, report.Results, 1)
	assert.Equal(t, schemas.StatusSkipped, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Err, "file not found")
	assert.Empty(t, page.files)
}

func TestFill_AbsoluteUploadPathIgnoresUploadDir(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	dir := t.TempDir()
	abs := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(abs, []byte("%PDF"), 0o644))

	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	data := dataOf(nil)
	data.Files["cv"] = abs

	report := runFill(t, page, data, fields, Options{UploadDir: "/somewhere/else"})
	assert.Equal(t, 1, report.Filled)
	assert.Equal(t, []string{abs}, page.files["//*[@id='cv']"])
}

func TestFill_AutoFilesMatchesByName(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	dir := t.TempDir()
	path := filepath.Join(dir, "lebenslauf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	report := runFill(t, page, dataOf(nil), fields, Options{UploadDir: dir, AutoFiles: true})

	assert.Equal(t, 1, report.Filled)
	assert.Equal(t, []string{path}, page.files["//*[@id='cv']"])
}

func TestFill_AutoFilesExplicitEntryWins(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lebenslauf.pdf"), []byte("%PDF"), 0o644))
	cover := filepath.Join(dir, "cover.pdf")
	require.NoError(t, os.WriteFile(cover, []byte("%PDF"), 0o644))

	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	data := dataOf(nil)
	data.Files["cv"] = "cover.pdf"

	runFill(t, page, data, fields, Options{UploadDir: dir, AutoFiles: true})
	assert.Equal(t, []string{cover}, page.files["//*[@id='cv']"])
}

func TestFill_AutoFilesOffLeavesUnmappedFieldsAlone(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lebenslauf.pdf"), []byte("%PDF"), 0o644))

	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	report := runFill(t, page, dataOf(nil), fields, Options{UploadDir: dir})

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, page.files)
}

func TestFill_AutoFilesNoMatchSkips(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.exe"), []byte("x"), 0o644))

	fields := []schemas.FieldDescriptor{field("cv", schemas.KindFile)}
	report := runFill(t, page, dataOf(nil), fields, Options{UploadDir: dir, AutoFiles: true})

	require.Len(t, report.Results, 1)
	assert.Equal(t, schemas.StatusSkipped, report.Results[0].Status)
	assert.Empty(t, report.Results[0].Err)
	assert.Empty(t, page.files)
}

func TestFill_SkippedFieldsPayNoDelay(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{
		field("email", schemas.KindEmail),
		field("city", schemas.KindText),
	}

	// With a pathological delay the pass must still return immediately when
	// no field had data to apply.
	start := time.Now()
	report := runFill(t, page, dataOf(map[string]any{}), fields, Options{FieldDelay: time.Hour})
	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, 2, report.Skipped)
}

func TestFill_ContextCancellationAborts(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	fields := []schemas.FieldDescriptor{field("email", schemas.KindEmail)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(page, zap.NewNop(), Options{}).Fill(ctx, dataOf(map[string]any{"email": "x"}), fields)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Attempted)
}

func TestFill_EndToEndReport(t *testing.T) {
	t.Parallel()
	page := newStatefulPage()
	page.failing["//*[@id='city']"] = errors.New("covered by overlay")

	fields := []schemas.FieldDescriptor{
		field("email", schemas.KindEmail),
		field("agree", schemas.KindCheckbox),
		field("city", schemas.KindText),
		field("nickname", schemas.KindText),
	}
	data := dataOf(map[string]any{"email": "a@b.de", "agree": true, "city": "Berlin"})

	report := runFill(t, page, data, fields, Options{})
	assert.Equal(t, 4, report.Attempted)
	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "filled 2/4 fields (1 skipped, 1 failed)", report.Summary())
}
