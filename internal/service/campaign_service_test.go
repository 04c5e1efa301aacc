package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func seededCampaignRepo(owner string, n int) *MockCampaignRepo {
	repo := &MockCampaignRepo{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		repo.campaigns = append(repo.campaigns, &model.Campaign{
			ID:        fmt.Sprintf("c-%02d", i),
			OwnerID:   owner,
			Subject:   "S",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return repo
}

func TestListCampaignsPagination(t *testing.T) {
	repo := seededCampaignRepo("u1", 25)
	repo.campaigns = append(repo.campaigns, &model.Campaign{ID: "other", OwnerID: "u2"})
	svc := &CampaignService{CampaignRepo: repo}

	tests := []struct {
		name      string
		page      int
		pageSize  int
		wantLen   int
		wantFirst string
		wantPage  map[string]int
	}{
		{"first page", 1, 10, 10, "c-25", map[string]int{"page": 1, "page_size": 10, "total_count": 25, "total_pages": 3}},
		{"last page", 3, 10, 5, "c-05", map[string]int{"page": 3, "page_size": 10, "total_count": 25, "total_pages": 3}},
		{"defaults", 0, 0, 20, "c-25", map[string]int{"page": 1, "page_size": 20, "total_count": 25, "total_pages": 2}},
		{"clamped", 1, 500, 25, "c-25", map[string]int{"page": 1, "page_size": 100, "total_count": 25, "total_pages": 1}},
		{"past the end", 9, 10, 0, "", map[string]int{"page": 9, "page_size": 10, "total_count": 25, "total_pages": 3}},
		{"huge page", math.MaxInt, 100, 0, "", map[string]int{"page": 1_000_000, "page_size": 100, "total_count": 25, "total_pages": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaigns, pagination, err := svc.ListCampaigns(context.Background(), "u1", tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Len(t, campaigns, tt.wantLen)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, campaigns[0].ID)
			}
			assert.Equal(t, tt.wantPage, pagination)
		})
	}
}

func TestGetCampaignDetailsWithStats(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{{
		ID:          "c-1",
		OwnerID:     "u1",
		FromAddress: "me@x.com",
		Recipients: []model.Recipient{
			{Email: "a@x.com", SendSucceeded: true},
			{Email: "b@x.com", ErrorDetail: "boom"},
			{Email: "c@x.com", SendSucceeded: true},
		},
	}}}
	svc := &CampaignService{CampaignRepo: repo}

	details, err := svc.GetCampaignDetailsWithStats(context.Background(), "u1", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "me@x.com", details.From)
	assert.Equal(t, model.CampaignStats{Total: 3, Succeeded: 2, Failed: 1}, details.Stats)

	_, err = svc.GetCampaignDetailsWithStats(context.Background(), "u2", "c-1")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestRenderPreview(t *testing.T) {
	templates := NewMockTemplateRepo()
	require.NoError(t, templates.Create(context.Background(), &model.EmailTemplate{
		OwnerID: "u1", Name: "Welcome", Subject: "Hi {{name}}", Body: "<p>{{name}} at {{company}}</p>",
		Variables: []string{"name", "company"},
	}))
	svc := &CampaignService{TemplateRepo: templates}
	ctx := context.Background()

	t.Run("inline", func(t *testing.T) {
		p, err := svc.RenderPreview(ctx, "u1", PreviewRequest{
			Subject: "Hello {{first}}", Body: "Body {{first}} {{missing}}",
			VariableNames: []string{"first"}, Values: []string{"Ann"},
		})
		require.NoError(t, err)
		assert.Equal(t, &Preview{Subject: "Hello Ann", Body: "Body Ann "}, p)
	})

	t.Run("saved template", func(t *testing.T) {
		p, err := svc.RenderPreview(ctx, "u1", PreviewRequest{TemplateID: "tpl-01", Values: []string{"Bo", "Acme"}})
		require.NoError(t, err)
		assert.Equal(t, "Hi Bo", p.Subject)
		assert.Equal(t, "<p>Bo at Acme</p>", p.Body)
	})

	t.Run("override body of saved template", func(t *testing.T) {
		p, err := svc.RenderPreview(ctx, "u1", PreviewRequest{TemplateID: "tpl-01", Body: "Short {{company}}", Values: []string{"Bo", "Acme"}})
		require.NoError(t, err)
		assert.Equal(t, "Hi Bo", p.Subject)
		assert.Equal(t, "Short Acme", p.Body)
	})

	t.Run("foreign template", func(t *testing.T) {
		_, err := svc.RenderPreview(ctx, "u2", PreviewRequest{TemplateID: "tpl-01"})
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.RenderPreview(ctx, "u1", PreviewRequest{})
		assert.True(t, appErrors.IsValidation(err))
	})
}
