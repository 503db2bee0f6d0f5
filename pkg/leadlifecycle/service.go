// Package leadlifecycle is the lead lifecycle engine. It owns every state
// transition of a lead, from intake through calls, texts, payment and
// booking, and decides which notifications each transition triggers.
package leadlifecycle

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jordanlanch/ironoak/pkg/agent"
	"github.com/jordanlanch/ironoak/pkg/calendar"
	"github.com/jordanlanch/ironoak/pkg/email"
	"github.com/jordanlanch/ironoak/pkg/followup"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/telephony"
)

// LeadRepository is the ai-leads partition
type LeadRepository interface {
	Get(ctx context.Context, id string) (*models.Lead, error)
	GetByPhone(ctx context.Context, phone string) (*models.Lead, error)
	GetByCallSID(ctx context.Context, sid string) (*models.Lead, error)
	List(ctx context.Context) ([]*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, id string, fn func(*models.Lead) error) (*models.Lead, error)
	Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	TryBeginSend(ctx context.Context, id string, outcome models.SMSOutcome) (bool, error)
	Upsert(ctx context.Context, phone string, create func() *models.Lead, patch func(*models.Lead)) (*models.Lead, bool, error)
}

// ContactRepository is the general contact-form partition
type ContactRepository interface {
	Create(ctx context.Context, c *models.ContactLead) error
	List(ctx context.Context) ([]*models.ContactLead, error)
}

// Notifier sends texts and places calls
type Notifier interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
	PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error)
}

// AgentRegistrar hands a connected call to the voice agent
type AgentRegistrar interface {
	RegisterCall(ctx context.Context, call agent.CallContext) (string, error)
}

// Scheduler computes availability and books calendar events
type Scheduler interface {
	AvailableSlots(ctx context.Context, t models.InquiryType) ([]models.TimeSlot, error)
	Book(ctx context.Context, p calendar.BookingParams) (*models.BookingResult, error)
	Reschedule(ctx context.Context, eventID string, newStart time.Time) (string, error)
	Cancel(ctx context.Context, eventID string) error
}

// FollowUpScheduler arranges the delayed follow-up call
type FollowUpScheduler interface {
	Schedule(ctx context.Context, job followup.Job) error
}

// OperatorAlerter mirrors operator texts to a chat channel
type OperatorAlerter interface {
	Alert(ctx context.Context, text string) error
}

// Mailer sends operator and customer emails
type Mailer interface {
	SendContactNotification(c *models.ContactLead) error
	SendPaymentReceipt(lead *models.Lead, course email.CourseDetails) error
}

// Recorder receives lifecycle counters
type Recorder interface {
	RecordLeadCreated(source string)
	RecordNotification(kind string, ok bool)
	RecordSendGate(acquired bool)
	RecordFollowUp(result string)
	RecordPayment()
}

// Config carries the business settings the engine needs
type Config struct {
	ProviderNumber  string
	OperatorPhone   string
	OperatorContact string
	BaseURL         string
	BookingLink     string
	PaymentLink     string
	Course          email.CourseDetails
	CoursePrice     string
	AgentName       string
	MinCallSeconds  int
	FollowUpMin     time.Duration
	FollowUpMax     time.Duration
	Location        *time.Location
}

// Dependencies groups the collaborators of Service. Alerter, Mailer and
// Recorder are optional.
type Dependencies struct {
	Leads     LeadRepository
	Contacts  ContactRepository
	Notifier  Notifier
	Agent     AgentRegistrar
	Scheduler Scheduler
	FollowUps FollowUpScheduler
	Alerter   OperatorAlerter
	Mailer    Mailer
	Recorder  Recorder
}

// Service handles lead lifecycle operations.
type Service struct {
	leads     LeadRepository
	contacts  ContactRepository
	notifier  Notifier
	agent     AgentRegistrar
	scheduler Scheduler
	followUps FollowUpScheduler
	alerter   OperatorAlerter
	mailer    Mailer
	metrics   Recorder

	cfg      Config
	log      logger.Logger
	now      func() time.Time
	delay    func() time.Duration
	dispatch func(fn func())
}

// NewService creates a new lead lifecycle service.
func NewService(deps Dependencies, cfg Config, log logger.Logger) *Service {
	if cfg.MinCallSeconds <= 0 {
		cfg.MinCallSeconds = 20
	}
	if cfg.FollowUpMin <= 0 {
		cfg.FollowUpMin = 5 * time.Minute
	}
	if cfg.FollowUpMax < cfg.FollowUpMin {
		cfg.FollowUpMax = cfg.FollowUpMin
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.AgentName == "" {
		cfg.AgentName = "Jordan AI"
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Service{
		leads:     deps.Leads,
		contacts:  deps.Contacts,
		notifier:  deps.Notifier,
		agent:     deps.Agent,
		scheduler: deps.Scheduler,
		followUps: deps.FollowUps,
		alerter:   deps.Alerter,
		mailer:    deps.Mailer,
		metrics:   deps.Recorder,
		cfg:       cfg,
		log:       log.With("component", "leadlifecycle"),
		now:       time.Now,
		dispatch:  func(fn func()) { go fn() },
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	s.delay = s.randomDelay
	return s
}

// SetClock overrides the current time source
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetDelay overrides the follow-up delay picker
func (s *Service) SetDelay(delay func() time.Duration) {
	s.delay = delay
}

// SetDispatch overrides how post-response work is started. Tests pass a
// function that runs fn inline.
func (s *Service) SetDispatch(dispatch func(fn func())) {
	s.dispatch = dispatch
}

// SetFollowUps attaches the follow-up scheduler after construction. The
// timer scheduler needs the service as its runner, so one of the two has
// to be wired late.
func (s *Service) SetFollowUps(f FollowUpScheduler) {
	s.followUps = f
}

// randomDelay picks a whole number of minutes in [FollowUpMin, FollowUpMax]
func (s *Service) randomDelay() time.Duration {
	lo := int(s.cfg.FollowUpMin / time.Minute)
	hi := int(s.cfg.FollowUpMax / time.Minute)
	if hi <= lo {
		return s.cfg.FollowUpMin
	}
	return time.Duration(lo+rand.IntN(hi-lo+1)) * time.Minute
}

// background detaches ctx from the request so post-response work is not
// canceled when the handler returns
func (s *Service) background(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	s.dispatch(func() { fn(detached) })
}

// sendSMS sends body to to and records the result under kind
func (s *Service) sendSMS(ctx context.Context, kind, to, body string) (string, error) {
	sid, err := s.notifier.SendSMS(ctx, to, body)
	s.metrics.RecordNotification(kind, err == nil)
	if err != nil {
		s.log.Error("Failed to send SMS", "kind", kind, "to", to, "error", err)
		return "", err
	}
	s.log.Info("SMS sent", "kind", kind, "to", to, "sid", sid)
	return sid, nil
}

// notifyOperator texts the operator and mirrors the text to the alert
// channel. Failures are logged only.
func (s *Service) notifyOperator(ctx context.Context, kind, body string) {
	if s.cfg.OperatorPhone != "" {
		_, _ = s.sendSMS(ctx, kind, s.cfg.OperatorPhone, body)
	}
	if s.alerter != nil {
		if err := s.alerter.Alert(ctx, body); err != nil {
			s.log.Warn("Failed to mirror operator alert", "kind", kind, "error", err)
		}
	}
}

// recordSendResult closes out a gated send: sent with sid and timestamp,
// or failed.
func (s *Service) recordSendResult(ctx context.Context, leadID, sid string, sendErr error) {
	_, err := s.leads.Update(ctx, leadID, func(l *models.Lead) error {
		if sendErr != nil {
			l.SMSStatus = models.SMSFailed
			return nil
		}
		l.SMSStatus = models.SMSSent
		l.SMSSID = models.StringPtr(sid)
		l.SMSSentAt = models.TimePtr(s.now().UTC())
		return nil
	})
	if err != nil {
		s.log.Error("Failed to record SMS result", "lead_id", leadID, "error", err)
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordLeadCreated(string)        {}
func (nopRecorder) RecordNotification(string, bool) {}
func (nopRecorder) RecordSendGate(bool)             {}
func (nopRecorder) RecordFollowUp(string)           {}
func (nopRecorder) RecordPayment()                  {}
