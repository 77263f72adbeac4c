package mailer

import (
	"context"
	"log"
)

// Sender delivers a transactional email. Implementations report delivery
// failure; callers decide whether that aborts the request.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LogSender logs instead of delivering. Used in development and tests
// when no Brevo key is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[mail] to=%s subject=%q (delivery skipped, no BREVO_API_KEY)", to, subject)
	return nil
}
