package casefile

import "strings"

// FilterState mirrors the filter panel: every predicate is optional and the
// sentinel values "" and "all" disable a predicate entirely. Predicates
// compose with logical AND. Selecting a region does NOT clear a previously
// chosen branch here; that is the caller's responsibility.
type FilterState struct {
	Search     string
	Status     string
	Type       string
	RegionID   string
	BranchID   string
	Period     string
	PeriodFrom string
	PeriodTo   string
}

// FilterFields is the view of one record the engine matches against.
// SearchText holds the fixed tuple of searchable fields (identifier,
// counterparty names).
type FilterFields struct {
	SearchText []string
	Status     string
	Type       string
	RegionID   string
	BranchID   string
	Period     string
}

func sentinel(v string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(v))
	return trimmed == "" || trimmed == "all"
}

// Matches applies every active predicate to one record.
func (f FilterState) Matches(fields FilterFields) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		found := false
		for _, candidate := range fields.SearchText {
			if strings.Contains(strings.ToLower(candidate), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !sentinel(f.Status) && !strings.EqualFold(strings.TrimSpace(f.Status), fields.Status) {
		return false
	}

	if !sentinel(f.Type) && strings.TrimSpace(f.Type) != fields.Type {
		return false
	}

	if strings.TrimSpace(f.RegionID) != "" && f.RegionID != fields.RegionID {
		return false
	}

	if strings.TrimSpace(f.BranchID) != "" && f.BranchID != fields.BranchID {
		return false
	}

	// YYYY-MM compares correctly as a string
	if p := strings.TrimSpace(f.Period); p != "" && p != fields.Period {
		return false
	}
	if from := strings.TrimSpace(f.PeriodFrom); from != "" && fields.Period < from {
		return false
	}
	if to := strings.TrimSpace(f.PeriodTo); to != "" && fields.Period > to {
		return false
	}

	return true
}

// Apply filters a collection, preserving input order (the output is a stable
// subsequence of the input).
func Apply[T any](records []T, state FilterState, fields func(T) FilterFields) []T {
	out := make([]T, 0, len(records))
	for _, record := range records {
		if state.Matches(fields(record)) {
			out = append(out, record)
		}
	}
	return out
}
