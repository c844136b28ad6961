// Package mailer delivers transactional email. Senders are constructed once
// at startup and passed to the services that need them.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidMessage is returned when a message lacks a recipient, subject or body.
var ErrInvalidMessage = errors.New("invalid message")

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Validate reports whether m can be sent.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return errors.Join(ErrInvalidMessage, errors.New("missing recipient"))
	case strings.TrimSpace(m.Subject) == "":
		return errors.Join(ErrInvalidMessage, errors.New("missing subject"))
	case strings.TrimSpace(m.HTML) == "":
		return errors.Join(ErrInvalidMessage, errors.New("missing body"))
	}
	return nil
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
