package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSMSStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to SMSStatus
		allowed  bool
	}{
		{SMSPending, SMSSending, true},
		{SMSPending, SMSSent, true},
		{SMSPending, SMSFailed, true},
		{SMSSending, SMSSent, true},
		{SMSSending, SMSFailed, true},
		{SMSSending, SMSPending, false},
		{SMSSent, SMSPending, false},
		{SMSSent, SMSSending, false},
		{SMSFailed, SMSSending, false},
		{SMSSent, SMSSent, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestParseCallStatus(t *testing.T) {
	cs, ok := ParseCallStatus("no-answer")
	assert.True(t, ok)
	assert.True(t, cs.IsTerminalFailure())

	cs, ok = ParseCallStatus("completed")
	assert.True(t, ok)
	assert.False(t, cs.IsTerminalFailure())

	_, ok = ParseCallStatus("exploded")
	assert.False(t, ok)
}

func TestInquiryType(t *testing.T) {
	assert.True(t, InquiryAIIntensive.Valid())
	assert.False(t, InquiryType("plumbing").Valid())
	assert.Equal(t, "Strategic Consulting", InquiryConsulting.DisplayName())
	assert.Equal(t, "plumbing", InquiryType("plumbing").DisplayName())
}

func TestLead_CloneIsDeep(t *testing.T) {
	sid := "CA1"
	now := time.Now()
	l := &Lead{ID: "1", CallSID: &sid, PaidAt: &now}

	c := l.Clone()
	*c.CallSID = "CA2"

	assert.Equal(t, "CA1", *l.CallSID)
	assert.NotSame(t, l.PaidAt, c.PaidAt)
}

func TestLead_CanReceiveOffers(t *testing.T) {
	assert.True(t, (&Lead{ConsentGiven: true}).CanReceiveOffers())
	assert.False(t, (&Lead{ConsentGiven: true, OptedOut: true}).CanReceiveOffers())
	assert.False(t, (&Lead{}).CanReceiveOffers())
}

func TestLeadPatch_Apply(t *testing.T) {
	l := &Lead{FirstName: "Ann", PaymentStatus: PaymentPending}
	name := "Anne"

	LeadPatch{FirstName: &name}.Apply(l)

	assert.Equal(t, "Anne", l.FirstName)
	assert.Equal(t, PaymentPending, l.PaymentStatus)
	assert.Nil(t, l.Email)
}

func TestSubmitRequest_CategoryAlias(t *testing.T) {
	assert.Equal(t, InquirySystems, SubmitRequest{InquiryCategory: "systems"}.Category())
	assert.Equal(t, InquiryEducation, SubmitRequest{InquiryType: "education", InquiryCategory: "systems"}.Category())
}
