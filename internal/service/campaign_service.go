package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
)

const maxListPage = 1_000_000

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	Logger       *zap.Logger
}

// CampaignDetails is a campaign plus its recipient outcome counts.
type CampaignDetails struct {
	ID            string                     `json:"id"`
	From          string                     `json:"from"`
	Subject       string                     `json:"subject"`
	Body          string                     `json:"body"`
	VariableNames []string                   `json:"variables"`
	Recipients    []model.Recipient          `json:"recipients"`
	Attachments   []model.AttachmentMetadata `json:"attachments,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	Stats         model.CampaignStats        `json:"stats"`
}

// PreviewRequest renders a subject/body against one recipient's values.
// When TemplateID is set the saved template supplies whatever the request
// leaves empty.
type PreviewRequest struct {
	TemplateID    string   `json:"templateId"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	VariableNames []string `json:"variables"`
	Values        []string `json:"variableValues"`
}

// Preview is a rendered message that was not sent.
type Preview struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *CampaignService) RenderPreview(ctx context.Context, ownerID string, req PreviewRequest) (*Preview, error) {
	subject, body, names := req.Subject, req.Body, req.VariableNames

	if req.TemplateID != "" {
		if s.TemplateRepo == nil {
			return nil, appErrors.NewValidation("templateId", "templates are not available")
		}
		tpl, err := s.TemplateRepo.GetByID(ctx, ownerID, req.TemplateID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(subject) == "" {
			subject = tpl.Subject
		}
		if strings.TrimSpace(body) == "" {
			body = tpl.Body
		}
		if names == nil {
			names = tpl.Variables
		}
	}

	if strings.TrimSpace(subject) == "" && strings.TrimSpace(body) == "" {
		return nil, appErrors.NewValidation("body", "template cannot be empty")
	}

	bindings := MapVariables(names, req.Values)
	return &Preview{
		Subject: RenderTemplate(subject, bindings),
		Body:    RenderTemplate(body, bindings),
	}, nil
}

// ListCampaigns fetches the owner's campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	// Keeps the offset far from overflowing; such pages are empty anyway.
	if page > maxListPage {
		page = maxListPage
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.CampaignRepo.ListByOwner(ctx, ownerID, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, ownerID, id string) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignRepo.GetStats(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Debug("campaign stats",
			zap.String("campaign_id", id),
			zap.Int("total", stats.Total),
			zap.Int("failed", stats.Failed),
		)
	}

	return &CampaignDetails{
		ID:            campaign.ID,
		From:          campaign.FromAddress,
		Subject:       campaign.Subject,
		Body:          campaign.Body,
		VariableNames: campaign.VariableNames,
		Recipients:    campaign.Recipients,
		Attachments:   campaign.Attachments,
		CreatedAt:     campaign.CreatedAt,
		Stats:         stats,
	}, nil
}
