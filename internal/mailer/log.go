package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to a logger instead of sending them. Used in
// development when no SMTP credentials are configured.
type LogSender struct {
	Logger zerolog.Logger
}

// NewLogSender returns a LogSender writing to l.
func NewLogSender(l zerolog.Logger) *LogSender { return &LogSender{Logger: l} }

func (s *LogSender) Send(_ context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.Logger.Info().
		Str("to", m.To).
		Str("subject", m.Subject).
		Int("html_bytes", len(m.HTML)).
		Msg("mail not sent (log driver)")
	return nil
}
