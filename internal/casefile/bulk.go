package casefile

import "errors"

// ErrEmptySelection is the local guard for bulk calls with no identifiers;
// no storage work happens when it fires.
var ErrEmptySelection = errors.New("empty_selection")

// BulkResult partitions a bulk transition response. Every requested
// identifier lands in exactly one bucket.
type BulkResult struct {
	Updated []string `json:"updated"`
	Missing []string `json:"missing"`
	Errors  []string `json:"errors"`
}

func NewBulkResult() BulkResult {
	return BulkResult{
		Updated: []string{},
		Missing: []string{},
		Errors:  []string{},
	}
}

// FullySuccessful reports the caller-facing verdict: the operation counts as
// a success only when nothing went missing, nothing errored, and at least one
// record actually updated. Partial updates are still a failure to the caller.
func (r BulkResult) FullySuccessful() bool {
	return len(r.Missing) == 0 && len(r.Errors) == 0 && len(r.Updated) > 0
}

// Total is the number of identifiers accounted for.
func (r BulkResult) Total() int {
	return len(r.Updated) + len(r.Missing) + len(r.Errors)
}
