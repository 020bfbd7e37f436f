package accounts

import (
	"context"

	"github.com/flixflex/flixflex/internal/logging"
)

// Mailer delivers password-reset messages.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer is the development Mailer: it logs the reset token instead of
// sending mail.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log.With("component", "mailer")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.log.Info(ctx, "password reset requested", "email", email, "token", token)
	return nil
}
