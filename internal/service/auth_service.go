package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/google"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// GoogleAuthenticator is the part of the Google client sign-in needs.
type GoogleAuthenticator interface {
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (*google.UserInfo, error)
}

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// LoginResult is returned to the extension after sign-in.
type LoginResult struct {
	Token string
	User  *model.User
}

type AuthService struct {
	Google   GoogleAuthenticator
	UserRepo repository.UserRepositoryInterface
	Secret   []byte
	TTL      time.Duration
	Logger   *zap.Logger

	now func() time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// GoogleLogin exchanges an authorization code, records the Google account
// and opens a session for it.
func (s *AuthService) GoogleLogin(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, appErrors.NewValidation("accessToken", "no id token")
	}

	tok, err := s.Google.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, &appErrors.AuthError{Message: "Authentication failed", Err: err}
	}

	info, err := s.Google.UserInfo(ctx, tok)
	if err != nil {
		return nil, &appErrors.AuthError{Message: "Authentication failed", Err: err}
	}

	u := &model.User{
		Email:              info.Email,
		Name:               info.Name,
		ProfilePic:         info.Picture,
		GoogleID:           info.ID,
		GoogleAccessToken:  tok.AccessToken,
		GoogleRefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		u.TokenExpiry = &expiry
	}

	user, err := s.UserRepo.UpsertGoogleUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("user signed in",
			zap.String("user_id", user.ID),
			zap.Bool("refresh_token_stored", user.GoogleRefreshToken != ""),
		)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// IssueToken signs an HS256 session token for userID.
func (s *AuthService) IssueToken(userID string) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := s.clock()
	claims := SessionClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns the user ID it carries.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil || !token.Valid {
		return "", &appErrors.AuthError{Message: "Token invalid or expired", Err: err}
	}
	if claims.ID == "" {
		return "", &appErrors.AuthError{Message: "Token invalid or expired"}
	}
	return claims.ID, nil
}
