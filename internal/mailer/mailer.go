// Package mailer builds outbound messages and hands them to a mail provider.
package mailer

import (
	"context"

	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// Email is one fully rendered message for a single recipient.
type Email struct {
	To           string
	From         string
	Subject      string
	HTMLBody     string
	RefreshToken string
	Attachments  []model.Attachment
}

// Transport delivers a single message. Implementations must be safe for
// concurrent use.
type Transport interface {
	Send(ctx context.Context, email *Email) error
}
