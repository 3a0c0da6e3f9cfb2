// Package currency converts between integer minor units (kobo) and the
// major-unit amounts shown to users.
package currency

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCode is used when a tournament does not name a currency.
const DefaultCode = "NGN"

var hundred = decimal.NewFromInt(100)

// FromMinor returns the major-unit value of an amount in minor units.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(major decimal.Decimal) int64 {
	return major.Mul(hundred).Round(0).IntPart()
}

// Format renders an amount as "50.00 NGN".
func Format(minor int64, code string) string {
	if code == "" {
		code = DefaultCode
	}
	return fmt.Sprintf("%s %s", FromMinor(minor).StringFixed(2), code)
}

// Number returns the major-unit value as a JSON number.
func Number(minor int64) json.Number {
	return json.Number(FromMinor(minor).String())
}
