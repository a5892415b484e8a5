package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

// DateLayout is the wire format of check-in, check-out and service dates.
const DateLayout = "2006-01-02"

var (
	// ErrBookingNotFound is returned when no booking matches the identifier.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrUnavailable is returned when the stay overlaps an existing booking.
	ErrUnavailable = errors.New("property is not available for the selected dates")
	// ErrDuplicateCode is returned by stores when a booking code is already taken.
	ErrDuplicateCode = errors.New("booking code already exists")
)

// Status is the lifecycle state of a booking or one of its service lines.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is a persisted stay with its bundled services. Amounts are the
// server-side computation and never the client-submitted values.
type Booking struct {
	ID          uuid.UUID
	Code        string
	PropertyID  uuid.UUID
	CheckIn     time.Time
	CheckOut    time.Time
	Guests      int
	GuestEmail  string
	Status      Status
	NightlyRate pricing.Money
	Currency    string
	Breakdown   pricing.Breakdown
	Services    []ServiceLine
	CreatedAt   time.Time
}

// ServiceLine is one service booked alongside the stay.
type ServiceLine struct {
	ID          uuid.UUID
	OfferingID  uuid.UUID
	ProviderID  uuid.UUID
	ServiceName string
	ServiceDate time.Time
	Duration    int
	Mode        pricing.Mode
	Rate        pricing.Money
	Total       pricing.Money
	Status      Status
}

// Quote is a non-authoritative price preview for a prospective booking.
type Quote struct {
	PropertyID    uuid.UUID         `json:"propertyId"`
	Currency      string            `json:"currency"`
	Authoritative bool              `json:"authoritative"`
	Breakdown     pricing.Breakdown `json:"breakdown"`
}

// QuoteInput is a parsed quote request. Zero dates mean not selected.
type QuoteInput struct {
	PropertyID uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	Services   []QuoteService
}

// QuoteService references an offering by id.
type QuoteService struct {
	OfferingID uuid.UUID
	Duration   int
}

// Submission is a validated booking request.
type Submission struct {
	PropertyID  uuid.UUID
	CheckIn     time.Time
	CheckOut    time.Time
	Guests      int
	GuestEmail  string
	QuotedTotal *pricing.Money
	Services    []SubmittedService
}

// SubmittedService is a requested service line as sent by the client. Rate
// and Total are only compared against the server price.
type SubmittedService struct {
	ProviderID  uuid.UUID
	ServiceName string
	ServiceDate time.Time
	Duration    int
	Rate        *pricing.Money
	Total       *pricing.Money
}
