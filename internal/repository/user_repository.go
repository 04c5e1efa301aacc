package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// UserRepositoryInterface stores accounts created through Google sign-in.
type UserRepositoryInterface interface {
	// UpsertGoogleUser creates or refreshes the user keyed by email. An empty
	// GoogleRefreshToken keeps the stored one.
	UpsertGoogleUser(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, name, profile_pic, google_id, google_access_token, google_refresh_token, token_expiry, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var expiry sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.ProfilePic, &u.GoogleID,
		&u.GoogleAccessToken, &u.GoogleRefreshToken, &expiry, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		u.TokenExpiry = &t
	}
	return u, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, u *model.User) (*model.User, error) {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	var expiry sql.NullTime
	if u.TokenExpiry != nil {
		expiry = sql.NullTime{Time: *u.TokenExpiry, Valid: true}
	}

	now := time.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
        INSERT INTO users (id, email, name, profile_pic, google_id, google_access_token, google_refresh_token, token_expiry, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        ON CONFLICT (email) DO UPDATE SET
            name = EXCLUDED.name,
            profile_pic = EXCLUDED.profile_pic,
            google_id = EXCLUDED.google_id,
            google_access_token = EXCLUDED.google_access_token,
            google_refresh_token = COALESCE(NULLIF(EXCLUDED.google_refresh_token, ''), users.google_refresh_token),
            token_expiry = EXCLUDED.token_expiry,
            updated_at = EXCLUDED.updated_at
        RETURNING `+userColumns,
		id, u.Email, u.Name, u.ProfilePic, u.GoogleID, u.GoogleAccessToken, u.GoogleRefreshToken, expiry, now)

	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("user", id)
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("user", email)
	}
	return u, err
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
