package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "50.00 NGN", Format(5000, "NGN"))
	assert.Equal(t, "0.00 NGN", Format(0, ""))
	assert.Equal(t, "100.05 USD", Format(10005, "USD"))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "50", Number(5000).String())
	assert.Equal(t, "0.5", Number(50).String())
	assert.Equal(t, "0", Number(0).String())
}

func TestToMinor(t *testing.T) {
	assert.Equal(t, int64(5000), ToMinor(decimal.RequireFromString("50")))
	assert.Equal(t, int64(1235), ToMinor(decimal.RequireFromString("12.345")))
	assert.Equal(t, int64(5000), ToMinor(FromMinor(5000)))
}
