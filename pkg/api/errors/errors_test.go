package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestFromDomain_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("Missing required fields or consent not given"), http.StatusBadRequest, "validation_error"},
		{"duplicate phone", domain.NewDuplicatePhoneError("+14035550100"), http.StatusBadRequest, "duplicate_phone"},
		{"invalid phone", domain.NewInvalidPhoneError("123"), http.StatusBadRequest, "invalid_phone_number"},
		{"not found", domain.NewNotFoundError("lead"), http.StatusNotFound, "not_found"},
		{"unauthorized", domain.NewUnauthorizedError("bad signature"), http.StatusForbidden, "unauthorized"},
		{"slot unavailable", domain.NewSlotUnavailableError(), http.StatusConflict, "slot_unavailable"},
		{"gateway", domain.NewGatewayError("twilio", errors.New("21211 invalid To")), http.StatusBadGateway, "gateway_error"},
		{"internal", domain.NewInternalError(errors.New("disk full")), http.StatusInternalServerError, "internal_error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/api/ai/submit")
			require.NoError(t, FromDomain(c, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			resp := parseBody(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestFromDomain_ClientMessageExposed(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/ai/submit")
	_ = FromDomain(c, domain.NewValidationError("Missing required fields or consent not given"))

	assert.Equal(t, "Missing required fields or consent not given", parseBody(t, rec).Message)
}

func TestFromDomain_NoInternalDetails(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/ai/tools/send-sms")
	_ = FromDomain(c, domain.NewGatewayError("twilio", errors.New("auth token AC123 rejected")))

	assert.NotContains(t, rec.Body.String(), "AC123")
	assert.NotContains(t, rec.Body.String(), "twilio")
}

func TestValidationError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/ai/submit")
	require.NoError(t, ValidationError(c, "Invalid request body"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", parseBody(t, rec).Message)
}

func TestInternalError(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/ai/admin/leads")
	require.NoError(t, InternalError(c, errors.New("open ai-leads.json: permission denied")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "permission denied")
}
