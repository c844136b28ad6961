package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SMTPOptions configures an SMTPSender.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string // also used as the From address
	Password string
	FromName string
	Timeout  time.Duration
}

type dialSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSender sends mail over SMTP with mandatory STARTTLS and PLAIN auth.
type SMTPSender struct {
	client   dialSender
	from     string
	fromName string
	host     string
}

// NewSMTPSender builds a client for opts. No connection is made until Send.
func NewSMTPSender(opts SMTPOptions) (*SMTPSender, error) {
	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, mail.WithTimeout(opts.Timeout))
	}
	c, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: c, from: opts.Username, fromName: opts.FromName, host: opts.Host}, nil
}

// Send dials the server, delivers m and closes the connection.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	ctx, span := otel.Tracer("mailer/SMTPSender").Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("smtp.host", s.host),
			attribute.String("mail.subject", m.Subject),
		),
	)
	defer span.End()

	msg, err := s.build(m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build message")
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(m Message) (*mail.Msg, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("%w: recipient: %v", ErrInvalidMessage, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	msg.SetDate()
	msg.SetMessageID()
	return msg, nil
}
