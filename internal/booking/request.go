package booking

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/pricing"
)

// QuoteRequest is the body of POST /quotes.
type QuoteRequest struct {
	PropertyID string                `json:"propertyId" validate:"required,uuid"`
	CheckIn    string                `json:"checkIn"`
	CheckOut   string                `json:"checkOut"`
	Services   []QuoteServiceRequest `json:"services" validate:"max=50,dive"`
}

// QuoteServiceRequest selects one offering for a quote.
type QuoteServiceRequest struct {
	OfferingID string `json:"offeringId" validate:"required,uuid"`
	Duration   int    `json:"duration" validate:"gte=0,lte=24"`
}

// SubmitRequest is the body of POST /bookings.
type SubmitRequest struct {
	PropertyID  string                 `json:"propertyId" validate:"required,uuid"`
	CheckIn     string                 `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut    string                 `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Guests      int                    `json:"guests" validate:"required,min=1"`
	GuestEmail  string                 `json:"guestEmail" validate:"omitempty,email"`
	QuotedTotal *pricing.Money         `json:"quotedTotal"`
	Services    []SubmitServiceRequest `json:"services" validate:"max=50,dive"`
}

// SubmitServiceRequest is one service line of a booking submission.
type SubmitServiceRequest struct {
	ServiceProviderID string         `json:"serviceProviderId" validate:"required,uuid"`
	ServiceName       string         `json:"serviceName" validate:"required,max=200"`
	ServiceDate       string         `json:"serviceDate" validate:"required,datetime=2006-01-02"`
	Duration          int            `json:"duration" validate:"gte=0,lte=24"`
	Rate              *pricing.Money `json:"rate"`
	Total             *pricing.Money `json:"total"`
	Status            string         `json:"status" validate:"omitempty,max=32"`
}

// RequestValidator applies struct tag validation and reports failures by
// JSON field path.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator constructs a validator keyed on json field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate returns a 422 AppError listing invalid fields, or nil.
func (rv *RequestValidator) Validate(req any) error {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return common.Validation("invalid request", err, nil)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe.Namespace())] = describe(fe)
	}
	return common.Validation("request validation failed", err, details)
}

func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a UUID"
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// Input converts a validated quote request. Dates that are missing or do not
// parse are treated as not selected.
func (r QuoteRequest) Input() QuoteInput {
	in := QuoteInput{
		PropertyID: uuid.MustParse(r.PropertyID),
		CheckIn:    parseOptionalDate(r.CheckIn),
		CheckOut:   parseOptionalDate(r.CheckOut),
		Services:   make([]QuoteService, 0, len(r.Services)),
	}
	for _, s := range r.Services {
		in.Services = append(in.Services, QuoteService{OfferingID: uuid.MustParse(s.OfferingID), Duration: s.Duration})
	}
	return in
}

// Submission converts a validated booking request, enforcing the rules that
// span fields: check-out after check-in and no repeated service slots.
func (r SubmitRequest) Submission() (Submission, error) {
	checkIn, _ := time.Parse(DateLayout, r.CheckIn)
	checkOut, _ := time.Parse(DateLayout, r.CheckOut)
	if !checkOut.After(checkIn) {
		return Submission{}, common.Validation("check-out must be after check-in", nil, map[string]string{
			"checkOut": "must be after checkIn",
		})
	}

	sub := Submission{
		PropertyID:  uuid.MustParse(r.PropertyID),
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      r.Guests,
		GuestEmail:  strings.TrimSpace(r.GuestEmail),
		QuotedTotal: r.QuotedTotal,
		Services:    make([]SubmittedService, 0, len(r.Services)),
	}
	seen := make(map[string]int, len(r.Services))
	for i, s := range r.Services {
		name := strings.TrimSpace(s.ServiceName)
		date, _ := time.Parse(DateLayout, s.ServiceDate)
		slot := strings.ToLower(s.ServiceProviderID) + "|" + strings.ToLower(name) + "|" + s.ServiceDate
		if prev, dup := seen[slot]; dup {
			return Submission{}, common.Validation("duplicate service in booking", nil, map[string]string{
				fmt.Sprintf("services[%d]", i): fmt.Sprintf("repeats services[%d]", prev),
			})
		}
		seen[slot] = i
		sub.Services = append(sub.Services, SubmittedService{
			ProviderID:  uuid.MustParse(s.ServiceProviderID),
			ServiceName: name,
			ServiceDate: date,
			Duration:    s.Duration,
			Rate:        s.Rate,
			Total:       s.Total,
		})
	}
	return sub, nil
}

func parseOptionalDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
