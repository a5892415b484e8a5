package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

type bookingView struct {
	ID          uuid.UUID         `json:"id"`
	BookingCode string            `json:"bookingCode"`
	Status      Status            `json:"status"`
	PropertyID  uuid.UUID         `json:"propertyId"`
	CheckIn     string            `json:"checkIn"`
	CheckOut    string            `json:"checkOut"`
	Guests      int               `json:"guests"`
	GuestEmail  string            `json:"guestEmail,omitempty"`
	Currency    string            `json:"currency"`
	NightlyRate pricing.Money     `json:"nightlyRate"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Services    []serviceView     `json:"services"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type serviceView struct {
	ID                uuid.UUID     `json:"id"`
	OfferingID        uuid.UUID     `json:"offeringId"`
	ServiceProviderID uuid.UUID     `json:"serviceProviderId"`
	ServiceName       string        `json:"serviceName"`
	ServiceDate       string        `json:"serviceDate"`
	Duration          int           `json:"duration"`
	PricingMode       pricing.Mode  `json:"pricingMode"`
	Rate              pricing.Money `json:"rate"`
	Total             pricing.Money `json:"total"`
	Status            Status        `json:"status"`
}

func toView(b Booking) bookingView {
	v := bookingView{
		ID:          b.ID,
		BookingCode: b.Code,
		Status:      b.Status,
		PropertyID:  b.PropertyID,
		CheckIn:     b.CheckIn.Format(DateLayout),
		CheckOut:    b.CheckOut.Format(DateLayout),
		Guests:      b.Guests,
		GuestEmail:  b.GuestEmail,
		Currency:    b.Currency,
		NightlyRate: b.NightlyRate,
		Breakdown:   b.Breakdown,
		Services:    make([]serviceView, 0, len(b.Services)),
		CreatedAt:   b.CreatedAt,
	}
	for _, s := range b.Services {
		v.Services = append(v.Services, serviceView{
			ID:                s.ID,
			OfferingID:        s.OfferingID,
			ServiceProviderID: s.ProviderID,
			ServiceName:       s.ServiceName,
			ServiceDate:       s.ServiceDate.Format(DateLayout),
			Duration:          s.Duration,
			PricingMode:       s.Mode,
			Rate:              s.Rate,
			Total:             s.Total,
			Status:            s.Status,
		})
	}
	return v
}
