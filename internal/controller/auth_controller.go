package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// Authenticator signs a user in with a Google authorization code.
type Authenticator interface {
	GoogleLogin(ctx context.Context, code, redirectURI string) (*service.LoginResult, error)
}

type AuthController struct {
	Auth   Authenticator
	Logger *zap.Logger
}

type googleLoginRequest struct {
	// The extension sends the authorization code as accessToken.
	AccessToken string `json:"accessToken"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

type sessionUser struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

func (c *AuthController) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	errs := errorResponder{key: "message", fallback: "Authentication failed", logger: c.Logger}

	var body googleLoginRequest
	if err := decodeJSON(r, &body); err != nil {
		errs.write(w, r, err)
		return
	}

	code := body.Code
	if code == "" {
		code = body.AccessToken
	}

	res, err := c.Auth.GoogleLogin(r.Context(), code, body.RedirectURI)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("google login failed", zap.Error(err))
		}
		errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": res.Token,
		"user": sessionUser{
			Email:      res.User.Email,
			Name:       res.User.Name,
			ProfilePic: res.User.ProfilePic,
		},
	})
}
