package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is a currency amount that serializes with exactly two decimal places.
type Money float64

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Float returns the amount as a float64 rounded to cents.
func (m Money) Float() float64 {
	return Round2(float64(m))
}

// String formats the amount as dollars, e.g. "$4.20".
func (m Money) String() string {
	return fmt.Sprintf("$%.2f", m.Float())
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	f := m.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot marshal non-finite money value %v", float64(m))
	}
	return []byte(strconv.FormatFloat(f, 'f', 2, 64)), nil
}

// UnmarshalJSON accepts a JSON number and rounds it to cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid money value %s: %w", data, err)
	}
	*m = Money(Round2(f))
	return nil
}
