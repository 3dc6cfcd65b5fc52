package casefile

import (
	"strconv"
	"strings"
	"time"
)

// Normalization helpers for wire payloads and spreadsheet cells. Upstream
// data arrives snake_cased, partially populated, and with amounts rendered
// as anything from float64 to "UGX 1,200,000". Every helper is total:
// malformed input yields the documented default, never an error.

// AmountOrZero parses a numeric cell or JSON value into a float64. Malformed
// input normalizes to 0, not NaN.
func AmountOrZero(v interface{}) float64 {
	switch typed := v.(type) {
	case nil:
		return 0
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		return parseAmountString(typed)
	default:
		return 0
	}
}

// CountOrZero parses integer counts with the same tolerance.
func CountOrZero(v interface{}) int64 {
	switch typed := v.(type) {
	case nil:
		return 0
	case int:
		return int64(typed)
	case int64:
		return typed
	case float64:
		return int64(typed)
	case string:
		parsed := parseAmountString(typed)
		return int64(parsed)
	default:
		return 0
	}
}

func parseAmountString(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}
	// strip currency prefixes and thousand separators
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimLeft(cleaned, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$€£ ")
	parsed, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0
	}
	return parsed
}

// StringOr returns the trimmed value or a default when empty.
func StringOr(raw, def string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def
	}
	return trimmed
}

const (
	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
)

// DateOrNil parses a date cell; empty or malformed input yields nil.
func DateOrNil(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "02/01/2006"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// ValidPeriod reports whether raw is a YYYY-MM reporting period.
func ValidPeriod(raw string) bool {
	_, err := time.Parse(periodLayout, strings.TrimSpace(raw))
	return err == nil
}

// Financials is the derived money block shown on detail views.
type Financials struct {
	AmountRequested   float64 `json:"amount_requested"`
	AmountPaid        float64 `json:"amount_paid"`
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
}

// DeriveFinancials computes difference and difference_percent from the two
// source amounts. A negative difference is legal (rendered as a credit);
// percent is 0 when nothing was requested.
func DeriveFinancials(requested, paid float64) Financials {
	diff := requested - paid
	percent := 0.0
	if requested != 0 {
		percent = diff / requested * 100
	}
	return Financials{
		AmountRequested:   requested,
		AmountPaid:        paid,
		Difference:        diff,
		DifferencePercent: percent,
	}
}

// ProcessingDays derives the processing duration; it is only meaningful when
// both dates are present, and reports -1 otherwise.
func ProcessingDays(processed *time.Time, paid *time.Time) int {
	if processed == nil || paid == nil {
		return -1
	}
	return int(paid.Sub(*processed).Hours() / 24)
}
