package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/ironoak/pkg/api/errors"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// IntakeService creates leads from the public form
type IntakeService interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Lead, error)
}

// IntakeHandler handles the AI Intensive lead form
type IntakeHandler struct {
	service   IntakeService
	validator *validator.Validate
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(service IntakeService) *IntakeHandler {
	return &IntakeHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Submit godoc
// @Summary Submit a lead
// @Tags Intake
// @Accept json
// @Produce json
// @Param request body models.SubmitRequest true "Lead form"
// @Success 200 {object} models.SubmitResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/ai/submit [post]
func (h *IntakeHandler) Submit(c echo.Context) error {
	var req models.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, "Invalid email address or message too long")
	}

	req.IPAddress = c.RealIP()
	req.UserAgent = c.Request().UserAgent()

	lead, err := h.service.Submit(c.Request().Context(), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, models.SubmitResponse{
		Success: true,
		Message: "Received. Check your phone for next steps.",
		LeadID:  lead.ID,
	})
}
