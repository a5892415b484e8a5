package property

import (
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

var (
	// ErrPropertyNotFound is returned when no property matches the identifier.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrOfferingNotFound is returned when no service offering matches the lookup.
	ErrOfferingNotFound = errors.New("service offering not found")
)

// Category groups service offerings by the kind of provider.
type Category string

const (
	CategoryChef      Category = "chef"
	CategoryCleaner   Category = "cleaner"
	CategoryTourGuide Category = "tour_guide"
	CategoryOther     Category = "other"
)

// Property is a bookable lodging.
type Property struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	City          string        `json:"city"`
	Country       string        `json:"country"`
	PricePerNight pricing.Money `json:"pricePerNight"`
	MaxGuests     int           `json:"maxGuests"`
}

// Offering is a service a provider sells alongside stays in its city. At most
// one of HourlyRate and FixedRate is set.
type Offering struct {
	ID           uuid.UUID      `json:"id"`
	ProviderID   uuid.UUID      `json:"serviceProviderId"`
	ProviderName string         `json:"serviceProviderName"`
	Name         string         `json:"serviceName"`
	Category     Category       `json:"category"`
	HourlyRate   *pricing.Money `json:"hourlyRate"`
	FixedRate    *pricing.Money `json:"fixedRate"`
}

// Mode reports how the offering is billed.
func (o Offering) Mode() pricing.Mode {
	if o.HourlyRate != nil {
		return pricing.ModeHourly
	}
	return pricing.ModeFixed
}

// Selection converts the offering into a priced selection for duration hours.
func (o Offering) Selection(duration int) pricing.Selection {
	return pricing.NewSelection(o.ID.String(), o.HourlyRate, o.FixedRate, duration)
}

// ParseCategory normalises a stored category value.
func ParseCategory(value string) Category {
	switch Category(value) {
	case CategoryChef, CategoryCleaner, CategoryTourGuide:
		return Category(value)
	default:
		return CategoryOther
	}
}
