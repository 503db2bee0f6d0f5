package handlers

import (
	"context"
	"net/http"

	"github.com/jordanlanch/ironoak/pkg/api/errors"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

// ToolsService backs the conversational agent's tool calls
type ToolsService interface {
	CheckAvailability(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error)
	BookAppointment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	SendInfo(ctx context.Context, phone, firstName string) (string, error)
	RescheduleAppointment(ctx context.Context, req models.RescheduleRequest) (*models.BookingResult, error)
	CancelAppointment(ctx context.Context, req models.CancelRequest) error
}

// ToolsHandler handles the agent tool endpoints
type ToolsHandler struct {
	service ToolsService
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(service ToolsService) *ToolsHandler {
	return &ToolsHandler{service: service}
}

// CheckAvailability lists open slots for an inquiry type
func (h *ToolsHandler) CheckAvailability(c echo.Context) error {
	var req models.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	slots, err := h.service.CheckAvailability(c.Request().Context(), req.Category())
	if err != nil {
		return errors.FromDomain(c, err)
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}

	return c.JSON(http.StatusOK, models.AvailabilityResponse{
		Success:        true,
		AvailableSlots: slots,
	})
}

// BookAppointment books a slot. A slot taken since it was offered is a 409.
func (h *ToolsHandler) BookAppointment(c echo.Context) error {
	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	result, err := h.service.BookAppointment(c.Request().Context(), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, models.BookingResponse{
		Success:          true,
		EventID:          result.EventID,
		EventLink:        result.EventLink,
		ConfirmationSent: true,
	})
}

// RescheduleAppointment moves the caller's booked event. The new slot being
// taken is a 409; an event not booked on the caller's lead is a 404.
func (h *ToolsHandler) RescheduleAppointment(c echo.Context) error {
	var req models.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	result, err := h.service.RescheduleAppointment(c.Request().Context(), req)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, models.BookingResponse{
		Success:          true,
		EventID:          result.EventID,
		ConfirmationSent: true,
	})
}

// CancelAppointment cancels the caller's booked event
func (h *ToolsHandler) CancelAppointment(c echo.Context) error {
	var req models.CancelRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	if err := h.service.CancelAppointment(c.Request().Context(), req); err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Appointment cancelled"})
}

// SendSMS texts the course info to a caller
func (h *ToolsHandler) SendSMS(c echo.Context) error {
	var req models.SendInfoRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, "Invalid request body")
	}

	sid, err := h.service.SendInfo(c.Request().Context(), req.Phone, req.FirstName)
	if err != nil {
		return errors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, models.SendInfoResponse{
		Success: true,
		Message: "SMS sent successfully",
		SID:     sid,
	})
}
