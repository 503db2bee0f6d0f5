package models

import "time"

// SMSStatus tracks the follow-up text for a lead. It only moves forward:
// pending -> sending -> sent|failed.
type SMSStatus string

const (
	SMSPending SMSStatus = "pending"
	SMSSending SMSStatus = "sending"
	SMSSent    SMSStatus = "sent"
	SMSFailed  SMSStatus = "failed"
)

// CanAdvanceTo reports whether next is a legal successor of s. Staying put is allowed.
func (s SMSStatus) CanAdvanceTo(next SMSStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case SMSPending:
		return next == SMSSending || next == SMSSent || next == SMSFailed
	case SMSSending:
		return next == SMSSent || next == SMSFailed
	default:
		return false
	}
}

// SMSOutcome records why the follow-up text was sent
type SMSOutcome string

const (
	OutcomeCompletedOffer SMSOutcome = "completed_offer"
	OutcomeMissedOffer    SMSOutcome = "missed_offer"
	OutcomeDelivered      SMSOutcome = "delivered"
)

// CallStatus mirrors Twilio's call lifecycle vocabulary
type CallStatus string

const (
	CallPending    CallStatus = "pending"
	CallQueued     CallStatus = "queued"
	CallInitiated  CallStatus = "initiated"
	CallRinging    CallStatus = "ringing"
	CallInProgress CallStatus = "in-progress"
	CallCompleted  CallStatus = "completed"
	CallFailed     CallStatus = "failed"
	CallNoAnswer   CallStatus = "no-answer"
	CallBusy       CallStatus = "busy"
	CallCanceled   CallStatus = "canceled"
)

var knownCallStatuses = map[CallStatus]struct{}{
	CallPending: {}, CallQueued: {}, CallInitiated: {}, CallRinging: {}, CallInProgress: {},
	CallCompleted: {}, CallFailed: {}, CallNoAnswer: {}, CallBusy: {}, CallCanceled: {},
}

// ParseCallStatus validates a provider status string
func ParseCallStatus(s string) (CallStatus, bool) {
	cs := CallStatus(s)
	_, ok := knownCallStatuses[cs]
	return cs, ok
}

// IsTerminalFailure is true for statuses that mean the lead was never reached
func (c CallStatus) IsTerminalFailure() bool {
	switch c {
	case CallFailed, CallNoAnswer, CallBusy, CallCanceled:
		return true
	}
	return false
}

// PaymentStatus is pending until the checkout completes
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// InquiryType is the category picked on the intake form
type InquiryType string

const (
	InquirySystems     InquiryType = "systems"
	InquiryConsulting  InquiryType = "consulting"
	InquiryEducation   InquiryType = "education"
	InquiryAIIntensive InquiryType = "ai-intensive"
)

// Valid reports whether t is a recognized category
func (t InquiryType) Valid() bool {
	switch t {
	case InquirySystems, InquiryConsulting, InquiryEducation, InquiryAIIntensive:
		return true
	}
	return false
}

// DisplayName is the human label used in calendar events and texts
func (t InquiryType) DisplayName() string {
	switch t {
	case InquirySystems:
		return "Systems Implementation Call"
	case InquiryConsulting:
		return "Strategic Consulting"
	case InquiryEducation:
		return "Education / Training Intro"
	case InquiryAIIntensive:
		return "AI Intensive"
	}
	return string(t)
}

// Lead is a prospect in the ai-leads partition
type Lead struct {
	ID               string        `json:"id"`
	FirstName        string        `json:"firstName"`
	LastName         *string       `json:"lastName"`
	Phone            string        `json:"phone"`
	Email            *string       `json:"email"`
	InquiryType      InquiryType   `json:"inquiryType,omitempty"`
	Message          *string       `json:"message"`
	ConsentGiven     bool          `json:"consentGiven"`
	ConsentTimestamp *time.Time    `json:"consentTimestamp"`
	IPAddress        *string       `json:"ipAddress"`
	UserAgent        *string       `json:"userAgent"`
	CallStatus       CallStatus    `json:"callStatus"`
	CallSID          *string       `json:"callSid"`
	CallDuration     *int          `json:"callDuration"`
	SMSStatus        SMSStatus     `json:"smsStatus"`
	SMSOutcome       *SMSOutcome   `json:"smsOutcome"`
	SMSSID           *string       `json:"smsSid"`
	SMSSentAt        *time.Time    `json:"smsSentAt"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	AmountPaid       *int64        `json:"amountPaid"`
	PaidAt           *time.Time    `json:"paidAt"`
	OptedOut         bool          `json:"optedOut"`
	OptedOutAt       *time.Time    `json:"optedOutAt"`
	ScheduledDate    *time.Time    `json:"scheduledDate"`
	ScheduledNotes   *string       `json:"scheduledNotes"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// GetID satisfies the store's keyed record constraint
func (l *Lead) GetID() string { return l.ID }

// FullName joins first and last name when a last name is present
func (l *Lead) FullName() string {
	if l.LastName != nil && *l.LastName != "" {
		return l.FirstName + " " + *l.LastName
	}
	return l.FirstName
}

// CanReceiveOffers is the consent gate for every outbound follow-up
func (l *Lead) CanReceiveOffers() bool {
	return l.ConsentGiven && !l.OptedOut
}

// Clone returns a deep copy so callers never share pointers with the store
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	c.LastName = cloneString(l.LastName)
	c.Email = cloneString(l.Email)
	c.Message = cloneString(l.Message)
	c.IPAddress = cloneString(l.IPAddress)
	c.UserAgent = cloneString(l.UserAgent)
	c.CallSID = cloneString(l.CallSID)
	c.SMSSID = cloneString(l.SMSSID)
	c.ScheduledNotes = cloneString(l.ScheduledNotes)
	c.ConsentTimestamp = cloneTime(l.ConsentTimestamp)
	c.SMSSentAt = cloneTime(l.SMSSentAt)
	c.PaidAt = cloneTime(l.PaidAt)
	c.OptedOutAt = cloneTime(l.OptedOutAt)
	c.ScheduledDate = cloneTime(l.ScheduledDate)
	if l.CallDuration != nil {
		d := *l.CallDuration
		c.CallDuration = &d
	}
	if l.AmountPaid != nil {
		a := *l.AmountPaid
		c.AmountPaid = &a
	}
	if l.SMSOutcome != nil {
		o := *l.SMSOutcome
		c.SMSOutcome = &o
	}
	return &c
}

// LeadPatch carries the admin-editable fields; nil means unchanged. Payment
// state is written only by checkout completion.
type LeadPatch struct {
	FirstName      *string        `json:"firstName" validate:"omitempty,min=1"`
	LastName       *string        `json:"lastName"`
	Email          *string        `json:"email" validate:"omitempty,email"`
	Message        *string        `json:"message"`
	CallStatus     *CallStatus    `json:"callStatus"`
	ScheduledDate  *time.Time     `json:"scheduledDate"`
	ScheduledNotes *string        `json:"scheduledNotes"`
}

// Apply copies the set fields onto l
func (p LeadPatch) Apply(l *Lead) {
	if p.FirstName != nil {
		l.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		l.LastName = cloneString(p.LastName)
	}
	if p.Email != nil {
		l.Email = cloneString(p.Email)
	}
	if p.Message != nil {
		l.Message = cloneString(p.Message)
	}
	if p.CallStatus != nil {
		l.CallStatus = *p.CallStatus
	}
	if p.ScheduledDate != nil {
		l.ScheduledDate = cloneTime(p.ScheduledDate)
	}
	if p.ScheduledNotes != nil {
		l.ScheduledNotes = cloneString(p.ScheduledNotes)
	}
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
