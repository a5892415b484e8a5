package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-travel/internal/pricing"
)

const (
	// TypeBookingConfirmation is the asynq task type for confirmation emails.
	TypeBookingConfirmation = "booking:confirmation"
	// QueueNotifications holds user-facing notification tasks.
	QueueNotifications = "notifications"

	confirmationMaxRetry = 5
	confirmationTimeout  = 30 * time.Second
)

// BookingConfirmation is the payload of a booking confirmation task.
type BookingConfirmation struct {
	BookingID   uuid.UUID     `json:"bookingId"`
	BookingCode string        `json:"bookingCode"`
	Email       string        `json:"email"`
	Total       pricing.Money `json:"total"`
	CheckIn     string        `json:"checkIn"`
	CheckOut    string        `json:"checkOut"`
}

// NewBookingConfirmationTask builds the task announcing a new booking.
func NewBookingConfirmationTask(p BookingConfirmation) (*asynq.Task, error) {
	if p.BookingID == uuid.Nil {
		return nil, fmt.Errorf("queue: booking id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("queue: encode confirmation: %w", err)
	}
	return asynq.NewTask(TypeBookingConfirmation, data,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(confirmationMaxRetry),
		asynq.Timeout(confirmationTimeout),
		asynq.TaskID("confirm:"+p.BookingID.String()),
	), nil
}

// DecodeBookingConfirmation parses a confirmation task payload.
func DecodeBookingConfirmation(data []byte) (BookingConfirmation, error) {
	var p BookingConfirmation
	if err := json.Unmarshal(data, &p); err != nil {
		return BookingConfirmation{}, fmt.Errorf("queue: decode confirmation: %w", err)
	}
	if p.BookingID == uuid.Nil {
		return BookingConfirmation{}, fmt.Errorf("queue: confirmation without booking id")
	}
	p.Email = strings.TrimSpace(p.Email)
	return p, nil
}
