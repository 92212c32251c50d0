// File: api/schemas/results_test.go
package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillReport_Record(t *testing.T) {
	t.Parallel()
	var r FillReport
	r.Record(FieldResult{Name: "email", Status: StatusFilled})
	r.Record(FieldResult{Name: "phone", Status: StatusSkipped})
	r.Record(FieldResult{Name: "city", Status: StatusFailed, Err: "no match"})
	r.Record(FieldResult{Name: "odd", Status: FillStatus("bogus")})

	assert.Equal(t, 4, r.Attempted)
	assert.Equal(t, 1, r.Filled)
	// Unknown statuses count as skipped rather than silently vanishing.
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, 1, r.Failed)
	assert.Len(t, r.Results, 4)
}

func TestFillReport_Summary(t *testing.T) {
	t.Parallel()
	var r FillReport
	assert.Equal(t, "filled 0/0 fields (0 skipped, 0 failed)", r.Summary())

	r.Record(FieldResult{Status: StatusFilled})
	r.Record(FieldResult{Status: StatusFailed})
	assert.Equal(t, "filled 1/2 fields (0 skipped, 1 failed)", r.Summary())
}
