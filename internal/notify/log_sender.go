package notify

import "github.com/rs/zerolog"

// LogSender implements common.EmailSender by writing messages to the log. It
// is the sender used until an outbound mail provider is configured.
type LogSender struct {
	From   string
	Logger zerolog.Logger
}

// Send implements common.EmailSender.
func (s LogSender) Send(to, subject, html string) error {
	s.Logger.Info().
		Str("from", s.From).
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(html)).
		Msg("email dispatched")
	return nil
}
