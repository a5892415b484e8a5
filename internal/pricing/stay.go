package pricing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// Stay describes the lodging part of a booking. A zero CheckIn or CheckOut
// means the date has not been selected yet.
type Stay struct {
	NightlyRate Money
	CheckIn     time.Time
	CheckOut    time.Time
}

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up. Missing or inverted dates yield zero.
func (s Stay) Nights() int {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return 0
	}
	span := s.CheckOut.Sub(s.CheckIn)
	if span <= 0 {
		return 0
	}
	return int(math.Ceil(float64(span) / float64(day)))
}

// StayCost returns the nights and the lodging subtotal for the stay.
func StayCost(s Stay) (int, Money) {
	nights := s.Nights()
	if nights <= 0 {
		return 0, Zero
	}
	return nights, nonNegative(s.NightlyRate).Mul(decimal.NewFromInt(int64(nights)))
}
