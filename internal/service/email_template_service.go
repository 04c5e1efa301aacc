package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

// TemplateUpdate carries the fields of a partial template update. Nil or
// empty fields keep their stored value.
type TemplateUpdate struct {
	Name      string
	Subject   string
	Body      string
	Variables []string
}

type EmailTemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
}

func (s *EmailTemplateService) Create(ctx context.Context, ownerID string, t *model.EmailTemplate) (*model.EmailTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	switch {
	case t.Name == "":
		return nil, appErrors.NewValidation("name", "name is required")
	case strings.TrimSpace(t.Subject) == "":
		return nil, appErrors.NewValidation("subject", "subject is required")
	case strings.TrimSpace(t.Body) == "":
		return nil, appErrors.NewValidation("body", "body is required")
	}

	t.OwnerID = ownerID
	if t.Variables == nil {
		t.Variables = Placeholders(t.Subject + "\n" + t.Body)
	}
	if err := s.TemplateRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *EmailTemplateService) List(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error) {
	return s.TemplateRepo.ListByOwner(ctx, ownerID)
}

func (s *EmailTemplateService) Get(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error) {
	if id == "" {
		return nil, appErrors.NewValidation("id", "id is required")
	}
	return s.TemplateRepo.GetByID(ctx, ownerID, id)
}

// Update applies the non-empty fields of upd to the stored template.
func (s *EmailTemplateService) Update(ctx context.Context, ownerID, id string, upd TemplateUpdate) (*model.EmailTemplate, error) {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(upd.Name); name != "" {
		existing.Name = name
	}
	if upd.Subject != "" {
		existing.Subject = upd.Subject
	}
	if upd.Body != "" {
		existing.Body = upd.Body
	}
	if upd.Variables != nil {
		existing.Variables = upd.Variables
	}

	if err := s.TemplateRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *EmailTemplateService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return appErrors.NewValidation("id", "id is required")
	}
	return s.TemplateRepo.Delete(ctx, ownerID, id)
}
