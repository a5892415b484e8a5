package pricing

import "github.com/shopspring/decimal"

// Mode reports how a service offering is billed.
type Mode string

const (
	ModeHourly Mode = "hourly"
	ModeFixed  Mode = "fixed"
)

// Rate is the pricing of a selected service. It is either Hourly or Fixed;
// the interface is sealed so no other shape can reach the calculator.
type Rate interface {
	Mode() Mode
	lineCost() Money
}

// Hourly bills Rate for every booked hour. Durations below one count as one.
type Hourly struct {
	Rate     Money
	Duration int
}

// Mode implements Rate.
func (Hourly) Mode() Mode { return ModeHourly }

func (h Hourly) lineCost() Money {
	return nonNegative(h.Rate).Mul(decimal.NewFromInt(int64(h.Hours())))
}

// Hours is the billed duration; anything below one hour bills as one.
func (h Hourly) Hours() int {
	if h.Duration < 1 {
		return 1
	}
	return h.Duration
}

// Increment adds one hour to the booked duration.
func (h Hourly) Increment() Hourly {
	h.Duration = h.Hours() + 1
	return h
}

// Decrement removes one hour, never going below a single hour.
func (h Hourly) Decrement() Hourly {
	h.Duration = h.Hours() - 1
	if h.Duration < 1 {
		h.Duration = 1
	}
	return h
}

// Fixed bills a flat price regardless of duration.
type Fixed struct {
	Rate Money
}

// Mode implements Rate.
func (Fixed) Mode() Mode { return ModeFixed }

func (f Fixed) lineCost() Money { return nonNegative(f.Rate) }

// Selection is one service chosen alongside a stay.
type Selection struct {
	ID   string
	Rate Rate
}

// NewSelection maps an offering with optional hourly and fixed rates onto a
// Selection. An hourly rate takes precedence; with neither present the
// selection carries no rate and costs nothing.
func NewSelection(id string, hourlyRate, fixedRate *Money, duration int) Selection {
	switch {
	case hourlyRate != nil:
		return Selection{ID: id, Rate: Hourly{Rate: *hourlyRate, Duration: duration}}
	case fixedRate != nil:
		return Selection{ID: id, Rate: Fixed{Rate: *fixedRate}}
	default:
		return Selection{ID: id}
	}
}

// LineCost resolves the cost of a single selection.
func LineCost(s Selection) Money {
	if s.Rate == nil {
		return Zero
	}
	return s.Rate.lineCost()
}
