package handlers

import (
	"context"
	"net/http"

	"github.com/jordanlanch/ironoak/pkg/leadlifecycle"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/telephony"
	"github.com/labstack/echo/v4"
)

// CallService reacts to telephony webhooks
type CallService interface {
	HandleVoiceConnect(ctx context.Context, call leadlifecycle.VoiceConnect) string
	HandleCallStatus(ctx context.Context, ev leadlifecycle.CallStatusEvent) error
	HandleInboundSMS(ctx context.Context, msg leadlifecycle.InboundSMS) error
}

// SignatureValidator checks provider signatures over the public URL
type SignatureValidator interface {
	Validate(path string, params map[string]string, signature string) error
}

// TwilioHandler handles the voice, call-status and inbound SMS webhooks.
// Every route verifies X-Twilio-Signature before reading or writing leads.
type TwilioHandler struct {
	service   CallService
	validator SignatureValidator
	metrics   Metrics
	log       logger.Logger
}

// NewTwilioHandler creates a new Twilio webhook handler
func NewTwilioHandler(service CallService, validator SignatureValidator, metrics Metrics, log logger.Logger) *TwilioHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TwilioHandler{
		service:   service,
		validator: validator,
		metrics:   orNop(metrics),
		log:       log.With("handler", "twilio"),
	}
}

// verify returns the form params when the signature matches, otherwise it
// writes 403 and returns ok=false
func (h *TwilioHandler) verify(c echo.Context) (map[string]string, bool, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, false, c.String(http.StatusBadRequest, "Bad Request")
	}
	params := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	sig := c.Request().Header.Get(telephony.SignatureHeader)
	if err := h.validator.Validate(c.Request().URL.RequestURI(), params, sig); err != nil {
		h.metrics.RecordSignatureFailure("twilio")
		h.log.Warn("Invalid Twilio signature", "path", c.Path())
		return nil, false, c.String(http.StatusForbidden, "Forbidden")
	}
	return params, true, nil
}

// Voice answers a connected call with the agent's TwiML
func (h *TwilioHandler) Voice(c echo.Context) error {
	params, ok, err := h.verify(c)
	if !ok {
		return err
	}

	twiml := h.service.HandleVoiceConnect(c.Request().Context(), leadlifecycle.VoiceConnect{
		From:    params["From"],
		To:      params["To"],
		CallSID: params["CallSid"],
	})
	return c.Blob(http.StatusOK, "text/xml", []byte(twiml))
}

// Status records call progress
func (h *TwilioHandler) Status(c echo.Context) error {
	params, ok, err := h.verify(c)
	if !ok {
		return err
	}

	if err := h.service.HandleCallStatus(c.Request().Context(), leadlifecycle.CallStatusEvent{
		CallSID:      params["CallSid"],
		CallStatus:   params["CallStatus"],
		CallDuration: params["CallDuration"],
		To:           params["To"],
	}); err != nil {
		h.log.Error("Call status handling failed", "call_sid", params["CallSid"], "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.String(http.StatusOK, "OK")
}

// InboundSMS applies opt-out and opt-in keywords
func (h *TwilioHandler) InboundSMS(c echo.Context) error {
	params, ok, err := h.verify(c)
	if !ok {
		return err
	}

	if err := h.service.HandleInboundSMS(c.Request().Context(), leadlifecycle.InboundSMS{
		From: params["From"],
		Body: params["Body"],
	}); err != nil {
		h.log.Error("Inbound SMS handling failed", "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.String(http.StatusOK, "OK")
}
