package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactHandler_Submit(t *testing.T) {
	t.Run("Success - stores inquiry with client ip", func(t *testing.T) {
		svc := &MockLeadService{SubmitContactFunc: func(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactLead, error) {
			assert.Equal(t, "Acme", req.Organization)
			assert.Equal(t, "203.0.113.7", ip)
			return &models.ContactLead{ID: "c1"}, nil
		}}
		h := NewContactHandler(svc, nil)

		c, rec := jsonRequest(http.MethodPost, "/api/contact",
			`{"name":"Sam","email":"sam@example.com","organization":"Acme","objective":"Automation","message":"Hello"}`)
		c.Request().Header.Set("X-Real-IP", "203.0.113.7")
		require.NoError(t, h.Submit(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Your inquiry has been received.","leadId":"c1"}`, rec.Body.String())
	})

	t.Run("Error - missing fields", func(t *testing.T) {
		h := NewContactHandler(&MockLeadService{}, nil)

		c, rec := jsonRequest(http.MethodPost, "/api/contact", `{"name":"Sam","email":"sam@example.com"}`)
		require.NoError(t, h.Submit(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestContactHandler_ListDownload(t *testing.T) {
	contacts := testdata.GenerateContactLeads(3)
	svc := &MockLeadService{ListContactsFunc: func(ctx context.Context) ([]*models.ContactLead, error) {
		return contacts, nil
	}}
	m := &MockMetrics{}
	h := NewContactHandler(svc, m)
	h.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	c, rec := jsonRequest(http.MethodGet, "/api/contact/leads", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), contacts[0].Email)

	c, rec = jsonRequest(http.MethodGet, "/api/contact/leads/download?format=csv", "")
	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="leads-2026-03-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), contacts[2].ID)
	assert.Equal(t, []string{"csv"}, m.exports)
}
