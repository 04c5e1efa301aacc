package controller_test

import (
	"context"
	"os"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

// --- Mock Services ---

type MockAuthenticator struct {
	result *service.LoginResult
	err    error
	code   string
}

func (m *MockAuthenticator) GoogleLogin(ctx context.Context, code, redirectURI string) (*service.LoginResult, error) {
	m.code = code
	return m.result, m.err
}

type MockUserRepo struct {
	users map[string]*model.User
}

func (m *MockUserRepo) UpsertGoogleUser(ctx context.Context, u *model.User) (*model.User, error) {
	m.users[u.ID] = u
	return u, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, appErrors.NewNotFound("user", id)
	}
	return u, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.NewNotFound("user", email)
}

// MockMailSender records what the controller handed over. Attachment
// contents are read during the call since the spool is gone afterwards.
type MockMailSender struct {
	userID      string
	input       service.SendMailsInput
	attachments map[string]string
	campaign    *model.Campaign
	err         error
}

func (m *MockMailSender) SendMails(ctx context.Context, userID string, in service.SendMailsInput) (*model.Campaign, error) {
	m.userID = userID
	m.input = in
	m.attachments = map[string]string{}
	if uploads, ok := in.Attachments.([]*model.UploadedFile); ok {
		for _, u := range uploads {
			data, err := os.ReadFile(u.Path)
			if err != nil {
				return nil, err
			}
			m.attachments[u.Name] = string(data)
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.campaign != nil {
		return m.campaign, nil
	}
	if _, _, err := service.ResolveRecipients(in.Source); err != nil {
		return nil, err
	}
	return &model.Campaign{ID: "c-1"}, nil
}

type MockCampaignReader struct {
	campaigns []*model.Campaign
	page      int
	pageSize  int
	owner     string
}

func (m *MockCampaignReader) ListCampaigns(ctx context.Context, ownerID string, page, pageSize int) ([]*model.Campaign, map[string]int, error) {
	m.owner, m.page, m.pageSize = ownerID, page, pageSize
	return m.campaigns, map[string]int{
		"page":        1,
		"page_size":   20,
		"total_count": len(m.campaigns),
		"total_pages": 1,
	}, nil
}

func (m *MockCampaignReader) GetCampaignDetailsWithStats(ctx context.Context, ownerID, id string) (*service.CampaignDetails, error) {
	for _, c := range m.campaigns {
		if c.ID == id && c.OwnerID == ownerID {
			return &service.CampaignDetails{ID: c.ID, Subject: c.Subject, Stats: model.StatsOf(c)}, nil
		}
	}
	return nil, appErrors.NewNotFound("campaign", id)
}

func (m *MockCampaignReader) RenderPreview(ctx context.Context, ownerID string, req service.PreviewRequest) (*service.Preview, error) {
	data := service.MapVariables(req.VariableNames, req.Values)
	return &service.Preview{
		Subject: service.RenderTemplate(req.Subject, data),
		Body:    service.RenderTemplate(req.Body, data),
	}, nil
}

type MockTemplateManager struct {
	templates map[string]*model.EmailTemplate
}

func (m *MockTemplateManager) Create(ctx context.Context, ownerID string, t *model.EmailTemplate) (*model.EmailTemplate, error) {
	for _, existing := range m.templates {
		if existing.OwnerID == ownerID && existing.Name == t.Name {
			return nil, appErrors.NewConflict("Template name already exists.")
		}
	}
	t.ID = "tpl-new"
	t.OwnerID = ownerID
	m.templates[t.ID] = t
	return t, nil
}

func (m *MockTemplateManager) List(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error) {
	out := []*model.EmailTemplate{}
	for _, t := range m.templates {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTemplateManager) Get(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error) {
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return nil, appErrors.NewNotFound("template", id)
	}
	return t, nil
}

func (m *MockTemplateManager) Update(ctx context.Context, ownerID, id string, upd service.TemplateUpdate) (*model.EmailTemplate, error) {
	t, err := m.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if upd.Subject != "" {
		t.Subject = upd.Subject
	}
	return t, nil
}

func (m *MockTemplateManager) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := m.Get(ctx, ownerID, id); err != nil {
		return err
	}
	delete(m.templates, id)
	return nil
}
