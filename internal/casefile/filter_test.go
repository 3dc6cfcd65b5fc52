package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type filterRow struct {
	ID       string
	Employer string
	Claimant string
	Status   string
	Type     string
	Region   string
	Branch   string
	Period   string
}

func rowFields(r filterRow) FilterFields {
	return FilterFields{
		SearchText: []string{r.ID, r.Employer, r.Claimant},
		Status:     r.Status,
		Type:       r.Type,
		RegionID:   r.Region,
		BranchID:   r.Branch,
		Period:     r.Period,
	}
}

var filterRows = []filterRow{
	{ID: "CLM-001", Employer: "Acme Mills", Claimant: "Okello James", Status: "pending", Type: "age", Region: "r1", Branch: "b1", Period: "2024-01"},
	{ID: "CLM-002", Employer: "Blue Transit", Claimant: "Namatovu Grace", Status: "reviewed", Type: "invalidity", Region: "r1", Branch: "b2", Period: "2024-02"},
	{ID: "CLM-003", Employer: "Acme Mills", Claimant: "Ssebunya Paul", Status: "approved", Type: "age", Region: "r2", Branch: "b3", Period: "2024-03"},
	{ID: "CLM-004", Employer: "Crest Farms", Claimant: "Akena Ruth", Status: "pending", Type: "survivors", Region: "r2", Branch: "b3", Period: "2024-04"},
}

func ids(rows []filterRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterSearch(t *testing.T) {
	got := Apply(filterRows, FilterState{Search: " acme "}, rowFields)
	assert.Equal(t, []string{"CLM-001", "CLM-003"}, ids(got))

	got = Apply(filterRows, FilterState{Search: "GRACE"}, rowFields)
	assert.Equal(t, []string{"CLM-002"}, ids(got))

	got = Apply(filterRows, FilterState{Search: "nobody"}, rowFields)
	assert.Empty(t, got)
}

func TestFilterSentinels(t *testing.T) {
	assert.Len(t, Apply(filterRows, FilterState{Status: "all"}, rowFields), len(filterRows))
	assert.Len(t, Apply(filterRows, FilterState{Status: ""}, rowFields), len(filterRows))
	assert.Len(t, Apply(filterRows, FilterState{Type: "ALL"}, rowFields), len(filterRows))
}

func TestFilterStatusCaseInsensitive(t *testing.T) {
	got := Apply(filterRows, FilterState{Status: "Pending"}, rowFields)
	assert.Equal(t, []string{"CLM-001", "CLM-004"}, ids(got))
}

func TestFilterPeriodRange(t *testing.T) {
	got := Apply(filterRows, FilterState{PeriodFrom: "2024-02", PeriodTo: "2024-03"}, rowFields)
	assert.Equal(t, []string{"CLM-002", "CLM-003"}, ids(got))

	got = Apply(filterRows, FilterState{Period: "2024-04"}, rowFields)
	assert.Equal(t, []string{"CLM-004"}, ids(got))
}

// Composition: filtering by the union of two disjoint constraints equals the
// intersection of filtering by each alone.
func TestFilterComposition(t *testing.T) {
	stateA := FilterState{Status: "pending"}
	stateB := FilterState{RegionID: "r2"}
	combined := FilterState{Status: "pending", RegionID: "r2"}

	onlyA := Apply(filterRows, stateA, rowFields)
	onlyB := Apply(filterRows, stateB, rowFields)
	both := Apply(filterRows, combined, rowFields)

	inA := map[string]bool{}
	for _, id := range ids(onlyA) {
		inA[id] = true
	}
	var intersection []string
	for _, id := range ids(onlyB) {
		if inA[id] {
			intersection = append(intersection, id)
		}
	}

	assert.Equal(t, intersection, ids(both))
	assert.Equal(t, []string{"CLM-004"}, ids(both))
}

// Output order is a stable subsequence of input order, never re-sorted.
func TestFilterStableOrder(t *testing.T) {
	got := Apply(filterRows, FilterState{RegionID: "r2"}, rowFields)
	assert.Equal(t, []string{"CLM-003", "CLM-004"}, ids(got))
}

// The engine does not clear branch when region changes; a stale pairing
// simply matches nothing, which is the caller's problem to prevent.
func TestFilterStaleBranchPairing(t *testing.T) {
	got := Apply(filterRows, FilterState{RegionID: "r1", BranchID: "b3"}, rowFields)
	assert.Empty(t, got)
}
