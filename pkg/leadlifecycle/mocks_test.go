package leadlifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jordanlanch/ironoak/pkg/agent"
	"github.com/jordanlanch/ironoak/pkg/calendar"
	"github.com/jordanlanch/ironoak/pkg/email"
	"github.com/jordanlanch/ironoak/pkg/followup"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/store"
	"github.com/jordanlanch/ironoak/pkg/telephony"
	"github.com/stretchr/testify/require"
)

const (
	testProviderNumber = "+15875550000"
	testOperatorPhone  = "+14036136014"
	testLeadPhone      = "+14035550100"
)

type sentSMS struct {
	To   string
	Body string
}

// MockNotifier records every text and call
type MockNotifier struct {
	mu            sync.Mutex
	sms           []sentSMS
	calls         []telephony.CallRequest
	SendSMSFunc   func(to, body string) (string, error)
	PlaceCallFunc func(req telephony.CallRequest) (string, error)
}

func (m *MockNotifier) SendSMS(ctx context.Context, to, body string) (string, error) {
	m.mu.Lock()
	m.sms = append(m.sms, sentSMS{To: to, Body: body})
	n := len(m.sms)
	m.mu.Unlock()

	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, body)
	}
	return fmt.Sprintf("SM%03d", n), nil
}

func (m *MockNotifier) PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.PlaceCallFunc != nil {
		return m.PlaceCallFunc(req)
	}
	return "CA-followup", nil
}

// sentTo returns the bodies texted to number
func (m *MockNotifier) sentTo(number string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sms {
		if s.To == number {
			out = append(out, s.Body)
		}
	}
	return out
}

func (m *MockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockAgent returns canned TwiML
type MockAgent struct {
	last             *agent.CallContext
	RegisterCallFunc func(call agent.CallContext) (string, error)
}

func (m *MockAgent) RegisterCall(ctx context.Context, call agent.CallContext) (string, error) {
	m.last = &call
	if m.RegisterCallFunc != nil {
		return m.RegisterCallFunc(call)
	}
	return "<Response><Connect/></Response>", nil
}

// MockScheduler stands in for the calendar service
type MockScheduler struct {
	booked         []calendar.BookingParams
	cancelled      []string
	SlotsFunc      func(t models.InquiryType) ([]models.TimeSlot, error)
	BookFunc       func(p calendar.BookingParams) (*models.BookingResult, error)
	RescheduleFunc func(eventID string, newStart time.Time) (string, error)
	CancelFunc     func(eventID string) error
}

func (m *MockScheduler) AvailableSlots(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error) {
	if m.SlotsFunc != nil {
		return m.SlotsFunc(t)
	}
	return nil, nil
}

func (m *MockScheduler) Book(ctx context.Context, p calendar.BookingParams) (*models.BookingResult, error) {
	m.booked = append(m.booked, p)
	if m.BookFunc != nil {
		return m.BookFunc(p)
	}
	return &models.BookingResult{EventID: "evt-1", EventLink: "https://calendar.test/evt-1"}, nil
}

func (m *MockScheduler) Reschedule(ctx context.Context, eventID string, newStart time.Time) (string, error) {
	if m.RescheduleFunc != nil {
		return m.RescheduleFunc(eventID, newStart)
	}
	return eventID, nil
}

func (m *MockScheduler) Cancel(ctx context.Context, eventID string) error {
	m.cancelled = append(m.cancelled, eventID)
	if m.CancelFunc != nil {
		return m.CancelFunc(eventID)
	}
	return nil
}

// MockFollowUps collects scheduled jobs
type MockFollowUps struct {
	jobs         []followup.Job
	ScheduleFunc func(job followup.Job) error
}

func (m *MockFollowUps) Schedule(ctx context.Context, job followup.Job) error {
	m.jobs = append(m.jobs, job)
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(job)
	}
	return nil
}

// MockAlerter collects mirrored operator alerts
type MockAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (m *MockAlerter) Alert(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, text)
	return nil
}

// MockMailer collects emails
type MockMailer struct {
	contacts []*models.ContactLead
	receipts []*models.Lead
}

func (m *MockMailer) SendContactNotification(c *models.ContactLead) error {
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *MockMailer) SendPaymentReceipt(lead *models.Lead, course email.CourseDetails) error {
	m.receipts = append(m.receipts, lead)
	return nil
}

type harness struct {
	svc       *Service
	leads     *store.LeadStore
	contacts  *store.ContactStore
	notifier  *MockNotifier
	agent     *MockAgent
	scheduler *MockScheduler
	followUps *MockFollowUps
	alerter   *MockAlerter
	mailer    *MockMailer
	now       time.Time
}

func testConfig(t *testing.T) Config {
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	return Config{
		ProviderNumber:  testProviderNumber,
		OperatorPhone:   testOperatorPhone,
		OperatorContact: "403-613-6014",
		BaseURL:         "https://api.test",
		BookingLink:     "https://book.test/iron-oak",
		PaymentLink:     "https://pay.test/intensive",
		Course:          email.CourseDetails{Dates: "March 10-31", Time: "6-9 PM", Location: "Calgary"},
		CoursePrice:     "$280 CAD (all 4 sessions)",
		AgentName:       "Jordan AI",
		MinCallSeconds:  20,
		FollowUpMin:     5 * time.Minute,
		FollowUpMax:     10 * time.Minute,
		Location:        loc,
	}
}

func setupService(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	locks := store.NewPartitionLocks()
	now := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	h := &harness{
		leads:     store.NewLeadStore(dir, locks),
		contacts:  store.NewContactStore(dir, locks),
		notifier:  &MockNotifier{},
		agent:     &MockAgent{},
		scheduler: &MockScheduler{},
		followUps: &MockFollowUps{},
		alerter:   &MockAlerter{},
		mailer:    &MockMailer{},
		now:       now,
	}
	h.leads.SetClock(func() time.Time { return now })

	h.svc = NewService(Dependencies{
		Leads:     h.leads,
		Contacts:  h.contacts,
		Notifier:  h.notifier,
		Agent:     h.agent,
		Scheduler: h.scheduler,
		FollowUps: h.followUps,
		Alerter:   h.alerter,
		Mailer:    h.mailer,
	}, testConfig(t), logger.Nop())
	h.svc.SetClock(func() time.Time { return now })
	h.svc.SetDelay(func() time.Duration { return 7 * time.Minute })
	h.svc.SetDispatch(func(fn func()) { fn() })
	return h
}

// seedLead stores a consenting lead whose text gate is still open
func (h *harness) seedLead(t *testing.T, phone string, mutate ...func(*models.Lead)) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		FirstName:    "Dana",
		Phone:        phone,
		InquiryType:  models.InquiryAIIntensive,
		ConsentGiven: true,
	}
	for _, fn := range mutate {
		fn(lead)
	}
	require.NoError(t, h.leads.Create(context.Background(), lead))
	return lead
}

func (h *harness) reload(t *testing.T, id string) *models.Lead {
	t.Helper()
	lead, err := h.leads.Get(context.Background(), id)
	require.NoError(t, err)
	return lead
}
