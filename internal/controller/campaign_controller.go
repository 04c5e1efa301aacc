// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// CampaignReader is the read side of sent campaigns plus dry-run rendering.
type CampaignReader interface {
	ListCampaigns(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Campaign, map[string]int, error)
	GetCampaignDetailsWithStats(ctx context.Context, ownerID, id string) (*service.CampaignDetails, error)
	RenderPreview(ctx context.Context, ownerID string, req service.PreviewRequest) (*service.Preview, error)
}

type CampaignController struct {
	Campaigns CampaignReader
	Logger    *zap.Logger
}

func (c *CampaignController) errs() errorResponder {
	return errorResponder{key: "message", fallback: "Server Error", logger: c.Logger}
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	// Defaults for missing or bad values are applied by the service.
	campaigns, pagination, err := c.Campaigns.ListCampaigns(r.Context(), UserIDFrom(r.Context()), page, pageSize)
	if err != nil {
		c.errs().write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	details, err := c.Campaigns.GetCampaignDetailsWithStats(r.Context(), UserIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (c *CampaignController) Preview(w http.ResponseWriter, r *http.Request) {
	var body service.PreviewRequest
	if err := decodeJSON(r, &body); err != nil {
		c.errs().write(w, r, err)
		return
	}

	preview, err := c.Campaigns.RenderPreview(r.Context(), UserIDFrom(r.Context()), body)
	if err != nil {
		c.errs().write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
