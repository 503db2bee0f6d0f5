package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/jordanlanch/ironoak/pkg/backup"
	"github.com/jordanlanch/ironoak/pkg/billing"
	"github.com/jordanlanch/ironoak/pkg/leadlifecycle"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/labstack/echo/v4"
)

type MockLeadService struct {
	SubmitFunc            func(ctx context.Context, req models.SubmitRequest) (*models.Lead, error)
	SubmitContactFunc     func(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactLead, error)
	ListContactsFunc      func(ctx context.Context) ([]*models.ContactLead, error)
	HandleVoiceFunc       func(ctx context.Context, call leadlifecycle.VoiceConnect) string
	HandleStatusFunc      func(ctx context.Context, ev leadlifecycle.CallStatusEvent) error
	HandleInboundFunc     func(ctx context.Context, msg leadlifecycle.InboundSMS) error
	HandlePaymentFunc     func(ctx context.Context, checkout billing.CheckoutCompleted) error
	CheckAvailabilityFunc func(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error)
	BookAppointmentFunc   func(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	SendInfoFunc          func(ctx context.Context, phone, firstName string) (string, error)
	RescheduleFunc        func(ctx context.Context, req models.RescheduleRequest) (*models.BookingResult, error)
	CancelFunc            func(ctx context.Context, req models.CancelRequest) error
	ListFunc              func(ctx context.Context) ([]*models.Lead, error)
	GetFunc               func(ctx context.Context, id string) (*models.Lead, error)
	PatchFunc             func(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	DeleteFunc            func(ctx context.Context, id string) error
	StatsFunc             func(ctx context.Context, since time.Time) (leadlifecycle.Stats, error)
}

func (m *MockLeadService) Submit(ctx context.Context, req models.SubmitRequest) (*models.Lead, error) {
	return m.SubmitFunc(ctx, req)
}

func (m *MockLeadService) SubmitContact(ctx context.Context, req models.ContactRequest, ip string) (*models.ContactLead, error) {
	return m.SubmitContactFunc(ctx, req, ip)
}

func (m *MockLeadService) ListContacts(ctx context.Context) ([]*models.ContactLead, error) {
	return m.ListContactsFunc(ctx)
}

func (m *MockLeadService) HandleVoiceConnect(ctx context.Context, call leadlifecycle.VoiceConnect) string {
	return m.HandleVoiceFunc(ctx, call)
}

func (m *MockLeadService) HandleCallStatus(ctx context.Context, ev leadlifecycle.CallStatusEvent) error {
	return m.HandleStatusFunc(ctx, ev)
}

func (m *MockLeadService) HandleInboundSMS(ctx context.Context, msg leadlifecycle.InboundSMS) error {
	return m.HandleInboundFunc(ctx, msg)
}

func (m *MockLeadService) HandlePaymentCompleted(ctx context.Context, checkout billing.CheckoutCompleted) error {
	return m.HandlePaymentFunc(ctx, checkout)
}

func (m *MockLeadService) CheckAvailability(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error) {
	return m.CheckAvailabilityFunc(ctx, t)
}

func (m *MockLeadService) BookAppointment(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	return m.BookAppointmentFunc(ctx, req)
}

func (m *MockLeadService) SendInfo(ctx context.Context, phone, firstName string) (string, error) {
	return m.SendInfoFunc(ctx, phone, firstName)
}

func (m *MockLeadService) RescheduleAppointment(ctx context.Context, req models.RescheduleRequest) (*models.BookingResult, error) {
	return m.RescheduleFunc(ctx, req)
}

func (m *MockLeadService) CancelAppointment(ctx context.Context, req models.CancelRequest) error {
	return m.CancelFunc(ctx, req)
}

func (m *MockLeadService) List(ctx context.Context) ([]*models.Lead, error) {
	return m.ListFunc(ctx)
}

func (m *MockLeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	return m.GetFunc(ctx, id)
}

func (m *MockLeadService) Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	return m.PatchFunc(ctx, id, patch)
}

func (m *MockLeadService) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *MockLeadService) Stats(ctx context.Context, since time.Time) (leadlifecycle.Stats, error) {
	return m.StatsFunc(ctx, since)
}

type MockMetrics struct {
	signatureFailures []string
	duplicates        int
	exports           []string
}

func (m *MockMetrics) RecordSignatureFailure(provider string) {
	m.signatureFailures = append(m.signatureFailures, provider)
}

func (m *MockMetrics) RecordWebhookDuplicate() { m.duplicates++ }

func (m *MockMetrics) RecordExportCreated(format string) {
	m.exports = append(m.exports, format)
}

type MockBackupService struct {
	CreateBackupFunc func(ctx context.Context) (*backup.BackupResult, error)
	ListBackupsFunc  func(ctx context.Context) ([]backup.BackupInfo, error)
}

func (m *MockBackupService) CreateBackup(ctx context.Context) (*backup.BackupResult, error) {
	return m.CreateBackupFunc(ctx)
}

func (m *MockBackupService) ListBackups(ctx context.Context) ([]backup.BackupInfo, error) {
	return m.ListBackupsFunc(ctx)
}

func jsonRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func formRequest(target string, form url.Values, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
