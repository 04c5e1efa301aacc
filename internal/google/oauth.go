package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// DefaultScopes are requested by the extension at sign-in.
var DefaultScopes = []string{
	"openid",
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	gmail.GmailSendScope,
}

// UserInfo is the subset of the Google profile stored on a user.
type UserInfo struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Client performs the code exchange and profile lookup for one OAuth client.
type Client struct {
	clientID         string
	clientSecret     string
	endpoint         oauth2.Endpoint
	userinfoEndpoint string
	httpClient       *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithEndpoint overrides the Google authorization/token endpoint.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(c *Client) { c.endpoint = ep }
}

// WithUserinfoEndpoint overrides the base URL of the userinfo API.
func WithUserinfoEndpoint(url string) Option {
	return func(c *Client) { c.userinfoEndpoint = url }
}

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the given OAuth credentials.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     googleoauth.Endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OAuthConfig returns the oauth2 configuration bound to redirectURI. An
// empty redirectURI is fine for refresh-token grants.
func (c *Client) OAuthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint:     c.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       DefaultScopes,
	}
}

// HTTPClient returns the HTTP client configured for token requests, or nil.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	tok, err := c.OAuthConfig(redirectURI).Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return tok, nil
}

// UserInfo fetches the profile of the account tok belongs to.
func (c *Client) UserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	ctx = c.withHTTPClient(ctx)
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))),
	}
	if c.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.userinfoEndpoint))
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo has no email address")
	}

	return &UserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
