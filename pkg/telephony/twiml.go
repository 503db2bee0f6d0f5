package telephony

import "github.com/twilio/twilio-go/twiml"

const sayVoice = "Polly.Matthew"

const (
	unknownLeadMessage    = "Sorry, we encountered an error. Please try again later."
	technicalErrorMessage = "Sorry, we encountered a technical error. Please try again later."
)

// SayAndHangup renders a TwiML document that speaks message and ends the call
func SayAndHangup(message string) string {
	doc, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message, Voice: sayVoice},
		&twiml.VoiceHangup{},
	})
	if err != nil {
		return fallbackTwiML(message)
	}
	return doc
}

// ErrorTwiML answers an outbound call that matches no known lead
func ErrorTwiML() string {
	return SayAndHangup(unknownLeadMessage)
}

// TechnicalErrorTwiML answers a call when the agent could not be reached
func TechnicalErrorTwiML() string {
	return SayAndHangup(technicalErrorMessage)
}

func fallbackTwiML(message string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Response><Say voice="` + sayVoice + `">` + message + `</Say><Hangup/></Response>`
}
