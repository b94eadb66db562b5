package client

import (
	"context"
	"log"
)

// EmailSender delivers user-facing mail. Delivery is a collaborator
// concern; the core only depends on this interface.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type logEmailSender struct{}

// NewLogEmailSender returns a sender that writes mail to the process log.
// Used in development and as the default until a relay is configured.
func NewLogEmailSender() EmailSender {
	return &logEmailSender{}
}

func (s *logEmailSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("email to %s: %s", to, subject)
	return nil
}
