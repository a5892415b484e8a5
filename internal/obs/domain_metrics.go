package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts price preview requests by outcome.
	QuotesTotal *prometheus.CounterVec
	// BookingsTotal counts booking submissions by outcome.
	BookingsTotal *prometheus.CounterVec
	// BookingPriceMismatchTotal counts submissions whose client-side amounts disagreed with the server.
	BookingPriceMismatchTotal prometheus.Counter
	// BookingTotalAmount records the authoritative booking totals.
	BookingTotalAmount prometheus.Histogram
	// ConfirmationJobsTotal counts processed booking confirmation jobs.
	ConfirmationJobsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of booking price previews by outcome.",
		}, []string{"result"}))
		BookingsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking submissions by outcome.",
		}, []string{"result"}))
		BookingPriceMismatchTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_price_mismatch_total",
			Help:      "Bookings where client-submitted amounts differed from the recomputed price.",
		}))
		BookingTotalAmount = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_total_amount",
			Help:      "Distribution of authoritative booking totals in major currency units.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}))
		ConfirmationJobsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_confirmation_jobs_total",
			Help:      "Count of booking confirmation jobs by outcome.",
		}, []string{"result"}))
	})
}

// IncQuote records a quote outcome when domain metrics are registered.
func IncQuote(result string) {
	if QuotesTotal != nil {
		QuotesTotal.WithLabelValues(result).Inc()
	}
}

// IncBooking records a booking outcome when domain metrics are registered.
func IncBooking(result string) {
	if BookingsTotal != nil {
		BookingsTotal.WithLabelValues(result).Inc()
	}
}

// IncPriceMismatch records a client/server price disagreement.
func IncPriceMismatch() {
	if BookingPriceMismatchTotal != nil {
		BookingPriceMismatchTotal.Inc()
	}
}

// ObserveBookingTotal records the authoritative total of a created booking.
func ObserveBookingTotal(total float64) {
	if BookingTotalAmount != nil {
		BookingTotalAmount.Observe(total)
	}
}

// IncConfirmationJob records a confirmation job outcome.
func IncConfirmationJob(result string) {
	if ConfirmationJobsTotal != nil {
		ConfirmationJobsTotal.WithLabelValues(result).Inc()
	}
}
