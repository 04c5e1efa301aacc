package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailmerge-backend/internal/controller"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

func campaignRouter(reader *MockCampaignReader) http.Handler {
	ctrl := &controller.CampaignController{Campaigns: reader}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(controller.WithUserID(req.Context(), "u1")))
		})
	})
	r.Get("/mails", ctrl.ListCampaigns)
	r.Get("/mails/{id}", ctrl.GetCampaignDetails)
	r.Post("/preview", ctrl.Preview)
	return r
}

func TestListCampaignsPassesPaging(t *testing.T) {
	reader := &MockCampaignReader{campaigns: []*model.Campaign{{ID: "c1", OwnerID: "u1"}}}
	srv := campaignRouter(reader)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mails?page=2&page_size=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", reader.owner)
	assert.Equal(t, 2, reader.page)
	assert.Equal(t, 5, reader.pageSize)

	var res struct {
		Data       []model.Campaign `json:"data"`
		Pagination map[string]int   `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Len(t, res.Data, 1)
	assert.Equal(t, 1, res.Pagination["total_count"])
}

func TestListCampaignsIgnoresBadPaging(t *testing.T) {
	reader := &MockCampaignReader{}
	w := httptest.NewRecorder()
	campaignRouter(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mails?page=abc", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, reader.page)
}

func TestGetCampaignDetails(t *testing.T) {
	reader := &MockCampaignReader{campaigns: []*model.Campaign{
		{ID: "c1", OwnerID: "u1", Subject: "Hello", Recipients: []model.Recipient{{SendSucceeded: true}, {}}},
		{ID: "c2", OwnerID: "u2"},
	}}
	srv := campaignRouter(reader)

	t.Run("own campaign", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mails/c1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"stats":{"total":2,"succeeded":1,"failed":1}`)
	})

	t.Run("someone else's campaign", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mails/c2", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Campaign not found"}`, w.Body.String())
	})
}

func TestPreview(t *testing.T) {
	w := httptest.NewRecorder()
	body := `{"subject":"Hi {{name}}","body":"Your code is {{code}}","variables":["name","code"],"variableValues":["Ann","X1"]}`
	campaignRouter(&MockCampaignReader{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"Hi Ann","body":"Your code is X1"}`, w.Body.String())
}
