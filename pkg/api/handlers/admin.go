package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/ironoak/pkg/api/errors"
	"github.com/jordanlanch/ironoak/pkg/auth"
	"github.com/jordanlanch/ironoak/pkg/export"
	"github.com/jordanlanch/ironoak/pkg/leadlifecycle"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// AdminService manages leads on behalf of the operator
type AdminService interface {
	List(ctx context.Context) ([]*models.Lead, error)
	Get(ctx context.Context, id string) (*models.Lead, error)
	Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, since time.Time) (leadlifecycle.Stats, error)
}

// AdminConfig holds the credentials of the single operator account
type AdminConfig struct {
	Email           string
	APIKey          string
	JWTSecret       string
	ExpirationHours int
}

// AdminHandler handles the operator endpoints
type AdminHandler struct {
	service   AdminService
	cfg       AdminConfig
	validator *validator.Validate
	metrics   Metrics
	now       func() time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service AdminService, cfg AdminConfig, metrics Metrics) *AdminHandler {
	if cfg.ExpirationHours <= 0 {
		cfg.ExpirationHours = 24
	}
	return &AdminHandler{
		service:   service,
		cfg:       cfg,
		validator: newValidator(),
		metrics:   orNop(metrics),
		now:       time.Now,
	}
}

// Login exchanges the admin API key for a bearer token
func (h *AdminHandler) Login(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, "email and apiKey are required")
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), h.cfg.Email) || !auth.CheckAPIKey(h.cfg.APIKey, req.APIKey) {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or API key",
		})
	}

	token, expires, err := auth.GenerateJWT(h.cfg.Email, h.cfg.JWTSecret, h.cfg.ExpirationHours, h.now())
	if err != nil {
		return errors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.TokenResponse{Token: token, ExpiresAt: expires})
}

// List godoc
// @Summary List leads
// @Tags Admin
// @Produce json
// @Success 200 {object} models.LeadListResponse
// @Security BearerAuth
// @Router /api/ai/admin/leads [get]
func (h *AdminHandler) List(c echo.Context) error {
	leads, err := h.service.List(c.Request().Context())
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.LeadListResponse{Success: true, Leads: leads, Total: len(leads)})
}

// Get returns one lead
func (h *AdminHandler) Get(c echo.Context) error {
	lead, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Update applies an admin edit
func (h *AdminHandler) Update(c echo.Context) error {
	var patch models.LeadPatch
	if err := c.Bind(&patch); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}
	if err := h.validator.Struct(patch); err != nil {
		return errors.ValidationError(c, "Invalid lead fields")
	}

	lead, err := h.service.Patch(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.LeadResponse{Success: true, Lead: lead})
}

// Delete removes a lead
func (h *AdminHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Download exports every lead as csv (default) or xlsx
func (h *AdminHandler) Download(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return errors.FromDomain(c, err)
	}

	leads, err := h.service.List(c.Request().Context())
	if err != nil {
		return errors.FromDomain(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteLeads(&buf, format, leads); err != nil {
		return errors.InternalError(c, err)
	}
	h.metrics.RecordExportCreated(string(format))

	return attachment(c, format, export.Filename("ai-intensive-leads", format, h.now()), buf.Bytes())
}

// Stats summarizes leads since ?since= (RFC3339), defaulting to 24 hours
func (h *AdminHandler) Stats(c echo.Context) error {
	since := h.now().Add(-24 * time.Hour)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errors.ValidationError(c, "since must be an RFC3339 timestamp")
		}
		since = parsed
	}

	stats, err := h.service.Stats(c.Request().Context(), since)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
