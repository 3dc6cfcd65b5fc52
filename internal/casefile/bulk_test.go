package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkResultPartition(t *testing.T) {
	r := NewBulkResult()
	r.Updated = append(r.Updated, "1", "3")
	r.Missing = append(r.Missing, "2")
	r.Errors = append(r.Errors, "4")

	assert.Equal(t, 4, r.Total())
	assert.False(t, r.FullySuccessful())
}

func TestBulkResultFullySuccessful(t *testing.T) {
	r := NewBulkResult()
	r.Updated = append(r.Updated, "1", "2")
	assert.True(t, r.FullySuccessful())
}

// An empty outcome is not success: nothing was updated.
func TestBulkResultEmptyNotSuccessful(t *testing.T) {
	r := NewBulkResult()
	assert.False(t, r.FullySuccessful())
	assert.Equal(t, 0, r.Total())
}

// One id updated and one failing its transition leaves missing empty but
// errors populated, so the batch is reported as not fully successful.
func TestBulkResultPartialFailure(t *testing.T) {
	r := NewBulkResult()
	r.Updated = append(r.Updated, "1")
	r.Errors = append(r.Errors, "2")

	assert.False(t, r.FullySuccessful())
	assert.Empty(t, r.Missing)
}

func TestBulkResultSerializesEmptySlices(t *testing.T) {
	r := NewBulkResult()
	assert.NotNil(t, r.Updated)
	assert.NotNil(t, r.Missing)
	assert.NotNil(t, r.Errors)
}
