package casefile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmountOrZero(t *testing.T) {
	assert.Equal(t, 0.0, AmountOrZero(nil))
	assert.Equal(t, 1200.5, AmountOrZero(1200.5))
	assert.Equal(t, 42.0, AmountOrZero(42))
	assert.Equal(t, 1200000.0, AmountOrZero("1,200,000"))
	assert.Equal(t, 1200000.0, AmountOrZero("UGX 1,200,000"))
	assert.Equal(t, 0.0, AmountOrZero("not a number"))
	assert.Equal(t, 0.0, AmountOrZero(""))
	assert.Equal(t, 0.0, AmountOrZero(struct{}{}))
}

func TestCountOrZero(t *testing.T) {
	assert.Equal(t, int64(0), CountOrZero(nil))
	assert.Equal(t, int64(17), CountOrZero("17"))
	assert.Equal(t, int64(3), CountOrZero(3.9))
	assert.Equal(t, int64(0), CountOrZero("n/a"))
}

func TestDateOrNil(t *testing.T) {
	assert.Nil(t, DateOrNil(""))
	assert.Nil(t, DateOrNil("yesterday"))

	parsed := DateOrNil("2024-03-15")
	if assert.NotNil(t, parsed) {
		assert.Equal(t, 2024, parsed.Year())
		assert.Equal(t, time.March, parsed.Month())
	}

	// day-first fallback seen in older exports
	parsed = DateOrNil("15/03/2024")
	assert.NotNil(t, parsed)
}

func TestDeriveFinancials(t *testing.T) {
	fin := DeriveFinancials(100000, 80000)
	assert.Equal(t, 20000.0, fin.Difference)
	assert.InDelta(t, 20.0, fin.DifferencePercent, 1e-9)

	t.Run("overpayment renders as credit", func(t *testing.T) {
		fin := DeriveFinancials(50000, 60000)
		assert.Equal(t, -10000.0, fin.Difference)
		assert.InDelta(t, -20.0, fin.DifferencePercent, 1e-9)
	})

	t.Run("zero requested", func(t *testing.T) {
		fin := DeriveFinancials(0, 0)
		assert.Equal(t, 0.0, fin.DifferencePercent)
	})
}

func TestProcessingDays(t *testing.T) {
	processed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	paid := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 14, ProcessingDays(&processed, &paid))
	assert.Equal(t, -1, ProcessingDays(&processed, nil))
	assert.Equal(t, -1, ProcessingDays(nil, &paid))
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod("2024-06"))
	assert.False(t, ValidPeriod("2024-13"))
	assert.False(t, ValidPeriod("June 2024"))
}
