package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// TemplateManager is the template CRUD the controller exposes.
type TemplateManager interface {
	Create(ctx context.Context, ownerID string, t *model.EmailTemplate) (*model.EmailTemplate, error)
	List(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error)
	Get(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error)
	Update(ctx context.Context, ownerID, id string, upd service.TemplateUpdate) (*model.EmailTemplate, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TemplateController struct {
	Templates TemplateManager
	Logger    *zap.Logger
}

type createTemplateRequest struct {
	Name      string   `json:"name" validate:"required"`
	Subject   string   `json:"subject" validate:"required"`
	Body      string   `json:"body" validate:"required"`
	Variables []string `json:"variables"`
}

type templateIDRequest struct {
	ID string `json:"id" validate:"required"`
}

type updateTemplateRequest struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"`
}

func (c *TemplateController) errs() errorResponder {
	return errorResponder{key: "error", fallback: "Server Error", logger: c.Logger}
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var body createTemplateRequest
	if err := decodeJSON(r, &body); err != nil {
		c.errs().write(w, r, err)
		return
	}

	tpl, err := c.Templates.Create(r.Context(), UserIDFrom(r.Context()), &model.EmailTemplate{
		Name:      body.Name,
		Subject:   body.Subject,
		Body:      body.Body,
		Variables: body.Variables,
	})
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	templates, err := c.Templates.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	var body templateIDRequest
	if err := decodeJSON(r, &body); err != nil {
		c.errs().write(w, r, err)
		return
	}

	tpl, err := c.Templates.Get(r.Context(), UserIDFrom(r.Context()), body.ID)
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	var body updateTemplateRequest
	if err := decodeJSON(r, &body); err != nil {
		c.errs().write(w, r, err)
		return
	}

	tpl, err := c.Templates.Update(r.Context(), UserIDFrom(r.Context()), body.ID, service.TemplateUpdate{
		Name:      body.Name,
		Subject:   body.Subject,
		Body:      body.Body,
		Variables: body.Variables,
	})
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	var body templateIDRequest
	if err := decodeJSON(r, &body); err != nil {
		c.errs().write(w, r, err)
		return
	}

	if err := c.Templates.Delete(r.Context(), UserIDFrom(r.Context()), body.ID); err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template deleted"})
}
