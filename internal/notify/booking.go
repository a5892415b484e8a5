package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/queue"
)

// BookingNotifier sends booking confirmation emails.
type BookingNotifier struct {
	Mail     common.EmailSender
	Enabled  bool
	Currency string
	Logger   zerolog.Logger
}

// Confirm implements queue.Confirmer. Disabled notifiers and bookings without a
// recipient are acknowledged without sending anything.
func (n BookingNotifier) Confirm(_ context.Context, p queue.BookingConfirmation) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	to := strings.TrimSpace(p.Email)
	if to == "" {
		n.Logger.Debug().Str("booking_code", p.BookingCode).Msg("confirmation skipped: no recipient")
		return nil
	}
	if err := n.Mail.Send(to, confirmationSubject(p), n.confirmationBody(p)); err != nil {
		return fmt.Errorf("notify: send confirmation %s: %w", p.BookingCode, err)
	}
	return nil
}

func confirmationSubject(p queue.BookingConfirmation) string {
	return fmt.Sprintf("Booking %s received", p.BookingCode)
}

func (n BookingNotifier) confirmationBody(p queue.BookingConfirmation) string {
	var b strings.Builder
	b.WriteString("<p>Thanks for your booking.</p>")
	fmt.Fprintf(&b, "<p>Reference: <strong>%s</strong></p>", html.EscapeString(p.BookingCode))
	if p.CheckIn != "" && p.CheckOut != "" {
		fmt.Fprintf(&b, "<p>Stay: %s to %s</p>", html.EscapeString(p.CheckIn), html.EscapeString(p.CheckOut))
	}
	total := p.Total.StringFixed(2)
	if n.Currency != "" {
		total = n.Currency + " " + total
	}
	fmt.Fprintf(&b, "<p>Total: %s</p>", html.EscapeString(total))
	b.WriteString("<p>Your booking is pending confirmation by the host.</p>")
	return b.String()
}
