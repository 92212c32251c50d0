// File: api/schemas/results.go
package schemas

import "fmt"

// FillStatus is the per-field outcome of a fill pass.
type FillStatus string

const (
	// StatusFilled means the value or file was applied to the live element.
	StatusFilled FillStatus = "filled"
	// StatusSkipped means no data was supplied for the field, or the field
	// did not apply (e.g. a radio whose value did not match). Not an error.
	StatusSkipped FillStatus = "skipped"
	// StatusFailed means data was supplied but the element could not be
	// located or the interaction failed. Recorded, never fatal.
	StatusFailed FillStatus = "failed"
)

// FieldResult records what happened to one descriptor during a fill pass.
type FieldResult struct {
	Name    string     `json:"name"`
	Locator string     `json:"locator"`
	Kind    FieldKind  `json:"kind"`
	Status  FillStatus `json:"status"`
	Err     string     `json:"error,omitempty"`
}

// FillReport aggregates per-field outcomes. Attempted vs Filled is the
// primary user-visible success signal; a partial fill is not a hard error.
type FillReport struct {
	Attempted int           `json:"attempted"`
	Filled    int           `json:"filled"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Results   []FieldResult `json:"results"`
}

// Record appends one outcome and updates the counters.
func (r *FillReport) Record(res FieldResult) {
	r.Results = append(r.Results, res)
	r.Attempted++
	switch res.Status {
	case StatusFilled:
		r.Filled++
	case StatusFailed:
		r.Failed++
	default:
		r.Skipped++
	}
}

// Summary renders the single-line outcome shown to the user.
func (r *FillReport) Summary() string {
	return fmt.Sprintf("filled %d/%d fields (%d skipped, %d failed)", r.Filled, r.Attempted, r.Skipped, r.Failed)
}
