package leadlifecycle

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/agent"
	"github.com/jordanlanch/ironoak/pkg/domain"
	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/jordanlanch/ironoak/pkg/phone"
	"github.com/jordanlanch/ironoak/pkg/telephony"
)

// unknownCaller is the placeholder name given to leads created from an
// inbound call. The agent uses it to decide whether to ask for details.
const unknownCaller = "Unknown"

var (
	optOutKeywords = map[string]struct{}{
		"STOP": {}, "STOPALL": {}, "UNSUBSCRIBE": {}, "CANCEL": {}, "END": {}, "QUIT": {},
	}
	optInKeywords = map[string]struct{}{
		"START": {}, "YES": {}, "UNSTOP": {},
	}
)

// CallStatusEvent is a Twilio status callback
type CallStatusEvent struct {
	CallSID      string
	CallStatus   string
	CallDuration string
	To           string
}

// InboundSMS is a text received on the provider number
type InboundSMS struct {
	From string
	Body string
}

// VoiceConnect is the voice webhook Twilio calls when a call connects
type VoiceConnect struct {
	From    string
	To      string
	CallSID string
}

// HandleCallStatus records the call outcome and, when the outcome warrants
// it, sends a single follow-up text through the exclusive-send gate.
func (s *Service) HandleCallStatus(ctx context.Context, ev CallStatusEvent) error {
	status, ok := models.ParseCallStatus(ev.CallStatus)
	if !ok {
		s.log.Warn("Ignoring unknown call status", "call_sid", ev.CallSID, "status", ev.CallStatus)
		return nil
	}
	duration, err := strconv.Atoi(ev.CallDuration)
	if err != nil {
		duration = 0
	}

	lead, err := s.leadForCall(ctx, ev)
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.Warn("Lead not found for call", "call_sid", ev.CallSID)
			return nil
		}
		return err
	}

	// consent is evaluated on the record as it was when the callback arrived
	if _, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
		l.CallStatus = status
		l.CallDuration = &duration
		return nil
	}); err != nil {
		return err
	}

	switch {
	case status.IsTerminalFailure():
		if !lead.CanReceiveOffers() {
			return nil
		}
		return s.sendGatedOffer(ctx, lead, models.OutcomeMissedOffer, kindMissedOffer,
			missedCallMessage(lead.FirstName, s.cfg.PaymentLink))

	case status == models.CallCompleted:
		if !lead.CanReceiveOffers() {
			return nil
		}
		if duration < s.cfg.MinCallSeconds {
			s.log.Info("Call too short for follow-up text", "lead_id", lead.ID, "duration", duration)
			return nil
		}
		return s.sendGatedOffer(ctx, lead, models.OutcomeCompletedOffer, kindCompletedOffer,
			completedCallMessage(lead.FirstName, s.cfg.PaymentLink))
	}

	return nil
}

// leadForCall finds the lead by call sid, falling back to the dialed number
// for outbound calls whose sid was not stored yet. The fallback backfills
// the sid.
func (s *Service) leadForCall(ctx context.Context, ev CallStatusEvent) (*models.Lead, error) {
	lead, err := s.leads.GetByCallSID(ctx, ev.CallSID)
	if err == nil {
		return lead, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	lead, err = s.leads.GetByPhone(ctx, normalizeOrRaw(ev.To))
	if err != nil {
		return nil, err
	}
	if ev.CallSID != "" {
		updated, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.CallSID = models.StringPtr(ev.CallSID)
			return nil
		})
		if err != nil {
			return nil, err
		}
		lead = updated
	}
	return lead, nil
}

// sendGatedOffer acquires the send gate, sends body and finalizes the
// status. Losing the gate means another delivery already handled it.
func (s *Service) sendGatedOffer(ctx context.Context, lead *models.Lead, outcome models.SMSOutcome, kind, body string) error {
	acquired, err := s.leads.TryBeginSend(ctx, lead.ID, outcome)
	if err != nil {
		return err
	}
	s.metrics.RecordSendGate(acquired)
	if !acquired {
		s.log.Info("SMS already processed for lead, skipping", "lead_id", lead.ID, "outcome", outcome)
		return nil
	}

	sid, sendErr := s.sendSMS(ctx, kind, lead.Phone, body)
	s.recordSendResult(ctx, lead.ID, sid, sendErr)
	return nil
}

// HandleInboundSMS applies opt-out and opt-in keywords. Other texts and
// unknown senders are logged only.
func (s *Service) HandleInboundSMS(ctx context.Context, msg InboundSMS) error {
	body := strings.ToUpper(strings.TrimSpace(msg.Body))

	lead, err := s.leads.GetByPhone(ctx, normalizeOrRaw(msg.From))
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.Info("Inbound SMS from unknown number", "from", msg.From)
			return nil
		}
		return err
	}

	if _, ok := optOutKeywords[body]; ok {
		if _, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.OptedOut = true
			l.OptedOutAt = models.TimePtr(s.now().UTC())
			return nil
		}); err != nil {
			return err
		}
		s.log.Info("Lead opted out via SMS", "lead_id", lead.ID)
		return nil
	}

	if _, ok := optInKeywords[body]; ok {
		if _, err := s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.OptedOut = false
			l.OptedOutAt = nil
			return nil
		}); err != nil {
			return err
		}
		s.log.Info("Lead opted back in via SMS", "lead_id", lead.ID)
		return nil
	}

	s.log.Info("Inbound SMS", "lead_id", lead.ID, "body", body)
	return nil
}

// HandleVoiceConnect resolves the lead for a connecting call and returns
// the TwiML to answer with. It never returns an error: failures become a
// spoken apology and a hangup.
func (s *Service) HandleVoiceConnect(ctx context.Context, call VoiceConnect) string {
	inbound := call.To == s.cfg.ProviderNumber
	leadPhone := call.To
	if inbound {
		leadPhone = call.From
	}
	log := s.log.With("call_sid", call.CallSID, "inbound", inbound)

	lead, err := s.leads.GetByPhone(ctx, normalizeOrRaw(leadPhone))
	switch {
	case err == nil:
		lead, err = s.leads.Update(ctx, lead.ID, func(l *models.Lead) error {
			l.CallSID = models.StringPtr(call.CallSID)
			l.CallStatus = models.CallInitiated
			return nil
		})
		if err != nil {
			log.Error("Failed to record call on lead", "error", err)
			return telephony.TechnicalErrorTwiML()
		}

	case domain.IsNotFound(err) && inbound:
		lead, err = s.createInboundLead(ctx, normalizeOrRaw(leadPhone), call.CallSID)
		if err != nil {
			log.Error("Failed to create lead for inbound caller", "error", err)
			return telephony.TechnicalErrorTwiML()
		}
		log.Info("Created lead for inbound caller", "lead_id", lead.ID)

	case domain.IsNotFound(err):
		log.Error("Outbound call but no lead found", "to", call.To)
		return telephony.ErrorTwiML()

	default:
		log.Error("Failed to look up caller", "error", err)
		return telephony.TechnicalErrorTwiML()
	}

	twiml, err := s.agent.RegisterCall(ctx, agent.CallContext{
		FromNumber:     call.From,
		ToNumber:       call.To,
		Inbound:        inbound,
		FirstName:      lead.FirstName,
		CallerPhone:    leadPhone,
		NeedsInfo:      lead.FirstName == unknownCaller,
		CourseDates:    s.cfg.Course.Dates,
		CourseTime:     s.cfg.Course.Time,
		CourseLocation: s.cfg.Course.Location,
	})
	if err != nil {
		log.Error("Agent registration failed", "error", err)
		return telephony.TechnicalErrorTwiML()
	}
	return twiml
}

func (s *Service) createInboundLead(ctx context.Context, leadPhone, callSID string) (*models.Lead, error) {
	lead := &models.Lead{
		ID:               uuid.NewString(),
		FirstName:        unknownCaller,
		Phone:            leadPhone,
		ConsentGiven:     false,
		CallStatus:       models.CallInitiated,
		CallSID:          models.StringPtr(callSID),
		SMSStatus:        models.SMSPending,
		PaymentStatus:    models.PaymentPending,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		if !domain.IsDuplicatePhone(err) {
			return nil, err
		}
		// a concurrent webhook created it first
		existing, gerr := s.leads.GetByPhone(ctx, leadPhone)
		if gerr != nil {
			return nil, gerr
		}
		return existing, nil
	}
	s.metrics.RecordLeadCreated("voice")
	return lead, nil
}

// normalizeOrRaw canonicalizes provider numbers, which already arrive in
// E.164, and leaves anything unparseable untouched
func normalizeOrRaw(number string) string {
	if n, err := phone.Normalize(number); err == nil {
		return n
	}
	return number
}
