package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/ironoak/pkg/api/errors"
	"github.com/jordanlanch/ironoak/pkg/export"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// ContactService stores general contact-form inquiries
type ContactService interface {
	SubmitContact(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactLead, error)
	ListContacts(ctx context.Context) ([]*models.ContactLead, error)
}

// ContactHandler handles the general contact form
type ContactHandler struct {
	service   ContactService
	validator *validator.Validate
	metrics   Metrics
	now       func() time.Time
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service ContactService, metrics Metrics) *ContactHandler {
	return &ContactHandler{
		service:   service,
		validator: newValidator(),
		metrics:   orNop(metrics),
		now:       time.Now,
	}
}

// Submit stores an inquiry
func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, "Missing required fields")
	}

	contact, err := h.service.SubmitContact(c.Request().Context(), req, c.RealIP())
	if err != nil {
		return errors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, models.ContactResponse{
		Success: true,
		Message: "Your inquiry has been received.",
		LeadID:  contact.ID,
	})
}

// List returns every inquiry (admin)
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.service.ListContacts(c.Request().Context())
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.ContactListResponse{Success: true, Leads: contacts})
}

// Download exports every inquiry as csv or xlsx (admin)
func (h *ContactHandler) Download(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return errors.FromDomain(c, err)
	}

	contacts, err := h.service.ListContacts(c.Request().Context())
	if err != nil {
		return errors.FromDomain(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteContacts(&buf, format, contacts); err != nil {
		return errors.InternalError(c, err)
	}
	h.metrics.RecordExportCreated(string(format))

	return attachment(c, format, export.Filename("leads", format, h.now()), buf.Bytes())
}

func attachment(c echo.Context, format export.Format, filename string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, format.ContentType(), body)
}
