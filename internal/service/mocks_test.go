package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/mailer"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

// --- Mock Transport ---

type MockTransport struct {
	mu   sync.Mutex
	sent []*mailer.Email
	fail func(ctx context.Context, email *mailer.Email) error
}

func (m *MockTransport) Send(ctx context.Context, email *mailer.Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()
	if m.fail != nil {
		return m.fail(ctx, email)
	}
	return nil
}

func (m *MockTransport) Sent() []*mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mailer.Email(nil), m.sent...)
}

// --- Mock Repositories ---

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
	createErr error
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *MockCampaignRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []*model.Campaign
	for i := len(m.campaigns) - 1; i >= 0; i-- {
		if m.campaigns[i].OwnerID == ownerID {
			owned = append(owned, m.campaigns[i])
		}
	}
	total := len(owned)
	if offset > total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID == id && c.OwnerID == ownerID {
			return c, nil
		}
	}
	return nil, appErrors.NewNotFound("campaign", id)
}

func (m *MockCampaignRepo) GetStats(ctx context.Context, id string) (model.CampaignStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.ID == id {
			return model.StatsOf(c), nil
		}
	}
	return model.CampaignStats{}, appErrors.NewNotFound("campaign", id)
}

type MockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func NewMockUserRepo(users ...*model.User) *MockUserRepo {
	m := &MockUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MockUserRepo) UpsertGoogleUser(ctx context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			existing.Name = u.Name
			existing.ProfilePic = u.ProfilePic
			existing.GoogleID = u.GoogleID
			existing.GoogleAccessToken = u.GoogleAccessToken
			existing.TokenExpiry = u.TokenExpiry
			if u.GoogleRefreshToken != "" {
				existing.GoogleRefreshToken = u.GoogleRefreshToken
			}
			return existing, nil
		}
	}
	created := *u
	if created.ID == "" {
		created.ID = "user-" + u.Email
	}
	m.users[created.ID] = &created
	return &created, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, appErrors.NewNotFound("user", id)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.NewNotFound("user", email)
}

type MockTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.EmailTemplate
	seq       int
}

func NewMockTemplateRepo() *MockTemplateRepo {
	return &MockTemplateRepo{templates: map[string]*model.EmailTemplate{}}
}

func (m *MockTemplateRepo) nameTaken(ownerID, name, exceptID string) bool {
	for _, t := range m.templates {
		if t.OwnerID == ownerID && t.Name == name && t.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MockTemplateRepo) Create(ctx context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(t.OwnerID, t.Name, "") {
		return appErrors.NewConflict("Template name already exists.")
	}
	m.seq++
	t.ID = fmt.Sprintf("tpl-%02d", m.seq)
	stored := *t
	m.templates[t.ID] = &stored
	return nil
}

func (m *MockTemplateRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.EmailTemplate{}
	for _, t := range m.templates {
		if t.OwnerID == ownerID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, ownerID, id string) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return nil, appErrors.NewNotFound("template", id)
	}
	c := *t
	return &c, nil
}

func (m *MockTemplateRepo) Update(ctx context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.templates[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return appErrors.NewNotFound("template", t.ID)
	}
	if m.nameTaken(t.OwnerID, t.Name, t.ID) {
		return appErrors.NewConflict("Another template with this name exists")
	}
	stored := *t
	m.templates[t.ID] = &stored
	return nil
}

func (m *MockTemplateRepo) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return appErrors.NewNotFound("template", id)
	}
	delete(m.templates, id)
	return nil
}

// --- Mock Queue ---

type MockQueue struct {
	mu        sync.Mutex
	published []any
	err       error
}

func (m *MockQueue) Publish(topic string, payload any) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, payload)
	return nil
}

func (m *MockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return errors.New("not supported")
}
