package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/lock"
	"github.com/noah-isme/backend-travel/internal/obs"
	"github.com/noah-isme/backend-travel/internal/pricing"
	"github.com/noah-isme/backend-travel/internal/property"
	"github.com/noah-isme/backend-travel/internal/queue"
)

const maxCodeAttempts = 3

// PropertyReader resolves the property and offerings a booking refers to.
type PropertyReader interface {
	Get(ctx context.Context, id uuid.UUID) (property.Property, error)
	Offerings(ctx context.Context, propertyID uuid.UUID) ([]property.Offering, error)
	FindOffering(ctx context.Context, providerID uuid.UUID, name string) (property.Offering, error)
}

// Store persists bookings.
type Store interface {
	HasOverlap(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id uuid.UUID) (Booking, error)
}

// Locker serialises work on a key across API instances.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Enqueuer schedules booking confirmations.
type Enqueuer interface {
	EnqueueBookingConfirmation(ctx context.Context, p queue.BookingConfirmation) error
}

// ServiceConfig configures the booking service.
type ServiceConfig struct {
	Properties PropertyReader
	Store      Store
	Locker     Locker
	Enqueuer   Enqueuer
	Calculator *pricing.Calculator
	Logger     zerolog.Logger
	LockTTL    time.Duration
	Currency   string
	Now        func() time.Time
	NewCode    func() string
}

// Service quotes and creates bookings. Every amount it returns or stores
// comes from the shared pricing calculator.
type Service struct {
	properties PropertyReader
	store      Store
	locker     Locker
	enqueuer   Enqueuer
	calc       *pricing.Calculator
	logger     zerolog.Logger
	lockTTL    time.Duration
	currency   string
	now        func() time.Time
	newCode    func() string
}

// NewService constructs a booking service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Properties == nil {
		return nil, errors.New("booking: property reader is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("booking: store is required")
	}
	if cfg.Locker == nil {
		return nil, errors.New("booking: locker is required")
	}
	calc := cfg.Calculator
	if calc == nil {
		calc = pricing.NewCalculator(pricing.DefaultBundlePolicy())
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newCode := cfg.NewCode
	if newCode == nil {
		newCode = NewCode
	}
	return &Service{
		properties: cfg.Properties,
		store:      cfg.Store,
		locker:     cfg.Locker,
		enqueuer:   cfg.Enqueuer,
		calc:       calc,
		logger:     cfg.Logger,
		lockTTL:    lockTTL,
		currency:   currency,
		now:        now,
		newCode:    newCode,
	}, nil
}

// Quote previews the price of a prospective booking. Missing or inverted
// dates price the lodging at zero rather than failing.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	ctx, span := otel.Tracer("booking.Service").Start(ctx, "BookingService.Quote")
	defer span.End()

	result := "error"
	defer func() { obs.IncQuote(result) }()

	p, err := s.properties.Get(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			result = "not_found"
		}
		return Quote{}, err
	}
	available, err := s.availableOfferings(ctx, p.ID)
	if err != nil {
		return Quote{}, err
	}

	selections := make([]pricing.Selection, 0, len(in.Services))
	for _, svc := range in.Services {
		o, ok := available[svc.OfferingID]
		if !ok {
			result = "not_found"
			return Quote{}, fmt.Errorf("offering %s: %w", svc.OfferingID, property.ErrOfferingNotFound)
		}
		selections = append(selections, o.Selection(svc.Duration))
	}

	breakdown := s.calc.Compute(pricing.Stay{
		NightlyRate: p.PricePerNight,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
	}, selections)

	span.SetAttributes(
		attribute.String("property.id", p.ID.String()),
		attribute.Int("quote.services", len(selections)),
		attribute.Int("quote.nights", breakdown.Nights),
	)
	result = "ok"
	return Quote{
		PropertyID:    p.ID,
		Currency:      s.currency,
		Authoritative: false,
		Breakdown:     breakdown,
	}, nil
}

// Create validates a submission against stored data, prices it, and persists
// it if the property is free for the stay.
func (s *Service) Create(ctx context.Context, sub Submission) (Booking, error) {
	ctx, span := otel.Tracer("booking.Service").Start(ctx, "BookingService.Create")
	defer span.End()

	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("booking.result", result))
		obs.IncBooking(result)
	}()

	p, err := s.properties.Get(ctx, sub.PropertyID)
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			result = "rejected"
		}
		return Booking{}, err
	}
	span.SetAttributes(attribute.String("property.id", p.ID.String()))

	if sub.Guests > p.MaxGuests {
		result = "rejected"
		return Booking{}, common.Validation(
			fmt.Sprintf("guests exceed the property capacity of %d", p.MaxGuests), nil,
			map[string]string{"guests": fmt.Sprintf("must be at most %d", p.MaxGuests)},
		)
	}

	offerings, selections, err := s.resolveServices(ctx, p.ID, sub.Services)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			result = "rejected"
		}
		return Booking{}, err
	}

	breakdown := s.calc.Compute(pricing.Stay{
		NightlyRate: p.PricePerNight,
		CheckIn:     sub.CheckIn,
		CheckOut:    sub.CheckOut,
	}, selections)
	s.reportMismatch(p.ID, sub, selections, breakdown)

	b := Booking{
		ID:          uuid.New(),
		PropertyID:  p.ID,
		CheckIn:     sub.CheckIn,
		CheckOut:    sub.CheckOut,
		Guests:      sub.Guests,
		GuestEmail:  sub.GuestEmail,
		Status:      StatusPending,
		NightlyRate: p.PricePerNight,
		Currency:    s.currency,
		Breakdown:   breakdown,
		Services:    make([]ServiceLine, 0, len(selections)),
		CreatedAt:   s.now().UTC(),
	}
	for i, sel := range selections {
		b.Services = append(b.Services, ServiceLine{
			ID:          uuid.New(),
			OfferingID:  offerings[i].ID,
			ProviderID:  offerings[i].ProviderID,
			ServiceName: offerings[i].Name,
			ServiceDate: sub.Services[i].ServiceDate,
			Duration:    billedDuration(sel),
			Mode:        offerings[i].Mode(),
			Rate:        unitRate(sel),
			Total:       breakdown.Lines[i].Cost,
			Status:      StatusPending,
		})
	}

	err = s.locker.WithLock(ctx, lock.PropertyBookingKey(p.ID), s.lockTTL, func(ctx context.Context) error {
		overlap, err := s.store.HasOverlap(ctx, b.PropertyID, b.CheckIn, b.CheckOut)
		if err != nil {
			return err
		}
		if overlap {
			return ErrUnavailable
		}
		return s.persist(ctx, &b)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUnavailable):
		result = "conflict"
		return Booking{}, common.NewAppError(common.CodeConflict, ErrUnavailable.Error(), http.StatusConflict, err)
	case errors.Is(err, lock.ErrNotAcquired):
		result = "conflict"
		return Booking{}, common.NewAppError(common.CodeConflict, "another booking for this property is in progress", http.StatusConflict, err)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "create booking")
		return Booking{}, err
	}

	result = "created"
	obs.ObserveBookingTotal(b.Breakdown.Total.InexactFloat64())
	span.SetAttributes(attribute.String("booking.id", b.ID.String()), attribute.String("booking.code", b.Code))
	s.logger.Info().
		Str("booking_id", b.ID.String()).
		Str("booking_code", b.Code).
		Str("property_id", b.PropertyID.String()).
		Str("total", b.Breakdown.Total.String()).
		Msg("booking created")

	s.enqueueConfirmation(ctx, b)
	return b, nil
}

// Get returns a stored booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) availableOfferings(ctx context.Context, propertyID uuid.UUID) (map[uuid.UUID]property.Offering, error) {
	list, err := s.properties.Offerings(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]property.Offering, len(list))
	for _, o := range list {
		out[o.ID] = o
	}
	return out, nil
}

func (s *Service) resolveServices(ctx context.Context, propertyID uuid.UUID, services []SubmittedService) ([]property.Offering, []pricing.Selection, error) {
	if len(services) == 0 {
		return nil, nil, nil
	}
	available, err := s.availableOfferings(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	offerings := make([]property.Offering, 0, len(services))
	selections := make([]pricing.Selection, 0, len(services))
	for i, svc := range services {
		field := fmt.Sprintf("services[%d]", i)
		o, err := s.properties.FindOffering(ctx, svc.ProviderID, svc.ServiceName)
		if err != nil {
			if errors.Is(err, property.ErrOfferingNotFound) {
				return nil, nil, common.Validation("unknown service", err, map[string]string{
					field: fmt.Sprintf("provider does not offer %q", svc.ServiceName),
				})
			}
			return nil, nil, err
		}
		if _, ok := available[o.ID]; !ok {
			return nil, nil, common.Validation("service not available at this property", nil, map[string]string{
				field: fmt.Sprintf("%q is not offered at this property", svc.ServiceName),
			})
		}
		offerings = append(offerings, o)
		selections = append(selections, o.Selection(svc.Duration))
	}
	return offerings, selections, nil
}

func (s *Service) persist(ctx context.Context, b *Booking) error {
	var err error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		b.Code = s.newCode()
		err = s.store.Create(ctx, b)
		if !errors.Is(err, ErrDuplicateCode) {
			return err
		}
		s.logger.Warn().Str("booking_code", b.Code).Msg("booking code collision, regenerating")
	}
	return err
}

// reportMismatch logs and counts client amounts that disagree with the
// recomputed price. The booking proceeds at the server price either way.
func (s *Service) reportMismatch(propertyID uuid.UUID, sub Submission, selections []pricing.Selection, bd pricing.Breakdown) {
	var fields []string
	for i, svc := range sub.Services {
		if svc.Rate != nil && !svc.Rate.Equal(unitRate(selections[i])) {
			fields = append(fields, fmt.Sprintf("services[%d].rate", i))
		}
		if svc.Total != nil && !svc.Total.Equal(bd.Lines[i].Cost) {
			fields = append(fields, fmt.Sprintf("services[%d].total", i))
		}
	}
	if sub.QuotedTotal != nil && !sub.QuotedTotal.Equal(bd.Total) {
		fields = append(fields, "quotedTotal")
	}
	if len(fields) == 0 {
		return
	}
	obs.IncPriceMismatch()
	evt := s.logger.Warn().
		Str("property_id", propertyID.String()).
		Strs("fields", fields).
		Str("server_total", bd.Total.String())
	if sub.QuotedTotal != nil {
		evt = evt.Str("quoted_total", sub.QuotedTotal.String())
	}
	evt.Msg("client price differs from server price")
}

func (s *Service) enqueueConfirmation(ctx context.Context, b Booking) {
	if s.enqueuer == nil {
		return
	}
	err := s.enqueuer.EnqueueBookingConfirmation(ctx, queue.BookingConfirmation{
		BookingID:   b.ID,
		BookingCode: b.Code,
		Email:       b.GuestEmail,
		Total:       b.Breakdown.Total,
		CheckIn:     b.CheckIn.Format(DateLayout),
		CheckOut:    b.CheckOut.Format(DateLayout),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID.String()).Msg("enqueue booking confirmation")
	}
}

func unitRate(sel pricing.Selection) pricing.Money {
	switch r := sel.Rate.(type) {
	case pricing.Hourly:
		return r.Rate
	case pricing.Fixed:
		return r.Rate
	default:
		return pricing.Zero
	}
}

func billedDuration(sel pricing.Selection) int {
	if h, ok := sel.Rate.(pricing.Hourly); ok {
		return h.Hours()
	}
	return 1
}
