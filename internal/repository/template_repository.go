package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// Conflict messages returned to the extension verbatim.
const (
	msgTemplateExists       = "Template name already exists."
	msgTemplateRenameExists = "Another template with this name exists"
)

// TemplateRepositoryInterface stores saved email templates. Every call is
// scoped to the owning user; names are unique per owner.
type TemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.EmailTemplate) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error)
	Update(ctx context.Context, t *model.EmailTemplate) error
	Delete(ctx context.Context, ownerID, id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

const templateColumns = `id, owner_id, name, subject, body, variables, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.EmailTemplate, error) {
	t := &model.EmailTemplate{}
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, pq.Array(&t.Variables), &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO email_templates (id, owner_id, name, subject, body, variables, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, t.ID, t.OwnerID, t.Name, t.Subject, t.Body, textArray(t.Variables), t.CreatedAt, t.UpdatedAt)
	if isUniqueViolation(err) {
		return appErrors.NewConflict(msgTemplateExists)
	}
	return err
}

// ListByOwner returns the owner's templates, most recently updated first.
func (r *TemplateRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT `+templateColumns+`
        FROM email_templates
        WHERE owner_id = $1
        ORDER BY updated_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*model.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) GetByID(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `
        SELECT `+templateColumns+`
        FROM email_templates
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("template", id)
	}
	return t, err
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.EmailTemplate) error {
	err := r.DB.QueryRowContext(ctx, `
        UPDATE email_templates
        SET name = $1, subject = $2, body = $3, variables = $4, updated_at = NOW()
        WHERE id = $5 AND owner_id = $6
        RETURNING created_at, updated_at
    `, t.Name, t.Subject, t.Body, textArray(t.Variables), t.ID, t.OwnerID).Scan(&t.CreatedAt, &t.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.NewNotFound("template", t.ID)
	case isUniqueViolation(err):
		return appErrors.NewConflict(msgTemplateRenameExists)
	}
	return err
}

func (r *TemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound("template", id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
