package mailer

import (
	"context"
	"encoding/base64"
	"net/http"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
)

// GmailTransport sends mail through the Gmail API on behalf of the user
// whose refresh token is attached to each Email.
type GmailTransport struct {
	oauth      *oauth2.Config
	endpoint   string
	httpClient *http.Client
}

// GmailOption customises a GmailTransport.
type GmailOption func(*GmailTransport)

// WithGmailEndpoint overrides the Gmail API base URL.
func WithGmailEndpoint(url string) GmailOption {
	return func(t *GmailTransport) { t.endpoint = url }
}

// WithGmailHTTPClient sets the base HTTP client for token and API calls.
func WithGmailHTTPClient(hc *http.Client) GmailOption {
	return func(t *GmailTransport) { t.httpClient = hc }
}

// NewGmailTransport creates a transport using conf for refresh-token grants.
func NewGmailTransport(conf *oauth2.Config, opts ...GmailOption) *GmailTransport {
	t := &GmailTransport{oauth: conf}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send exchanges the refresh token for an access token and submits the
// message as the authenticated user.
func (t *GmailTransport) Send(ctx context.Context, email *Email) error {
	raw, err := BuildMIME(email)
	if err != nil {
		return &appErrors.TransportError{Op: "build message", To: email.To, Err: err}
	}

	if t.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, t.httpClient)
	}

	tok, err := t.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: email.RefreshToken}).Token()
	if err != nil {
		return &appErrors.TransportError{Op: "token exchange", To: email.To, Err: err}
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))),
	}
	if t.endpoint != "" {
		opts = append(opts, option.WithEndpoint(t.endpoint))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return &appErrors.TransportError{Op: "create gmail service", To: email.To, Err: err}
	}

	msg := &gmail.Message{Raw: base64.RawURLEncoding.EncodeToString(raw)}
	if _, err := svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return &appErrors.TransportError{Op: "send", To: email.To, Err: err}
	}
	return nil
}
