// Package google wraps the Google OAuth2 endpoints the backend talks to.
//
// The extension signs the user in with Google and hands the backend an
// authorization code. The backend exchanges that code for an access and a
// refresh token, reads the user's profile from the userinfo endpoint and keeps
// the refresh token so later sends can obtain fresh access tokens.
package google
