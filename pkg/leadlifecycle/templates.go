package leadlifecycle

import (
	"fmt"
	"time"

	"github.com/jordanlanch/ironoak/pkg/email"
	"github.com/jordanlanch/ironoak/pkg/models"
)

const (
	// notification kinds, used for logs and metrics
	kindCategory        = "category"
	kindOperatorLead    = "operator_new_lead"
	kindMissedOffer     = "missed_offer"
	kindCompletedOffer  = "completed_offer"
	kindPaymentConfirm  = "payment_confirmation"
	kindOperatorPayment = "operator_payment"
	kindBookingConfirm  = "booking_confirmation"
	kindOperatorBooking = "operator_booking"
	kindSendInfo        = "send_info"

	kindRescheduleConfirm  = "reschedule_confirmation"
	kindOperatorReschedule = "operator_reschedule"
	kindOperatorCancel     = "operator_cancel"

	operatorMessageLimit = 100
)

func categoryMessage(t models.InquiryType, firstName string, cfg Config) string {
	switch t {
	case models.InquirySystems:
		return fmt.Sprintf("Hi %s, this is Iron & Oak.\n\nNext step is a 15-minute systems call to map your operational flow and identify scope.\n\nBook here:\n%s\n\nReply CALL if you prefer manual coordination.\n\n%s",
			firstName, cfg.BookingLink, cfg.OperatorContact)
	case models.InquiryConsulting:
		return fmt.Sprintf("Hi %s, confirmed.\n\nLet's align objectives and timeline.\n\nBook a short strategy call:\n%s\n\nIf timing is urgent, reply PRIORITY.\n\n%s",
			firstName, cfg.BookingLink, cfg.OperatorContact)
	case models.InquiryEducation:
		return fmt.Sprintf("Hi %s, here's the next step.\n\nWe offer solo training or team implementation sessions.\n\nBook here:\n%s\n\nReply SOLO or TEAM and we'll tailor it.\n\n%s",
			firstName, cfg.BookingLink, cfg.OperatorContact)
	case models.InquiryAIIntensive:
		return fmt.Sprintf("Hi %s.\n\nHere's the registration link:\n\n%s\n\nLimited seats.\nReply DONE once registered.\n\n%s",
			firstName, cfg.PaymentLink, cfg.OperatorContact)
	}
	return fmt.Sprintf("Hi %s, thanks for reaching out to Iron & Oak.\n\nWe'll be in touch shortly.\n\n%s", firstName, cfg.OperatorContact)
}

func operatorNewLeadMessage(lead *models.Lead, at time.Time) string {
	emailText := "Not provided"
	if lead.Email != nil && *lead.Email != "" {
		emailText = *lead.Email
	}
	return fmt.Sprintf("New Lead – Iron & Oak\nName: %s\nPhone: %s\nEmail: %s\nType: %s\nMessage: %s\nTime: %s",
		lead.FullName(), lead.Phone, emailText, lead.InquiryType, shortMessage(lead.Message), at.Format("1/2/2006, 3:04:05 PM"))
}

// shortMessage truncates to operatorMessageLimit runes
func shortMessage(msg *string) string {
	if msg == nil || *msg == "" {
		return "No message"
	}
	r := []rune(*msg)
	if len(r) > operatorMessageLimit {
		return string(r[:operatorMessageLimit]) + "..."
	}
	return *msg
}

func missedCallMessage(firstName, paymentLink string) string {
	return fmt.Sprintf("Hi %s, we tried to call you about the AI Intensive but couldn't reach you.\n\nHere's the registration link if you're still interested:\n%s\n\nQuestions? Reply to this message.\n\nReply STOP to opt out.",
		firstName, paymentLink)
}

func completedCallMessage(firstName, paymentLink string) string {
	return fmt.Sprintf("Hi %s! Thanks for your interest in the AI Intensive.\n\nHere's your registration link:\n%s\n\nOnly 10 seats available. Questions? Reply to this message.\n\nReply STOP to opt out.",
		firstName, paymentLink)
}

func paymentConfirmationMessage(firstName string, course email.CourseDetails) string {
	return fmt.Sprintf("Hi %s, you're registered for AI Intensive! \U0001F389\n\n\U0001F4C5 %s\n⏰ %s\n\U0001F4CD %s\n\nBring your laptop. See you there!\n\nQuestions? Reply to this message.",
		firstName, course.Dates, course.Time, course.Location)
}

func operatorPaymentMessage(lead *models.Lead, amountCents int64, course email.CourseDetails) string {
	emailText := "N/A"
	if lead.Email != nil && *lead.Email != "" {
		emailText = *lead.Email
	}
	return fmt.Sprintf("\U0001F4B0 NEW PAYMENT RECEIVED\n\nName: %s\nPhone: %s\nEmail: %s\nAmount: $%s\n\nCourse: %s",
		lead.FirstName, lead.Phone, emailText, FormatCents(amountCents), course.Dates)
}

// FormatCents renders minor units as dollars with two decimals
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// bookingTimes renders start as weekday, "January 2" and "3:04 PM" in loc
func bookingTimes(start time.Time, loc *time.Location) (day, date, clock string) {
	local := start.In(loc)
	return local.Format("Monday"), local.Format("January 2"), local.Format("3:04 PM")
}

func bookingConfirmationMessage(t models.InquiryType, start time.Time, loc *time.Location, contact string) string {
	day, date, clock := bookingTimes(start, loc)
	return fmt.Sprintf("Confirmed. You're booked for %s on %s, %s at %s MT.\n\nIf you need to reschedule, reply CHANGE.\n\n%s\nIron-Oak.ca",
		t.DisplayName(), day, date, clock, contact)
}

func operatorBookingMessage(t models.InquiryType, start time.Time, loc *time.Location, name, phone, emailAddr string) string {
	_, date, clock := bookingTimes(start, loc)
	return fmt.Sprintf("BOOKED – Iron & Oak\nName: %s\nType: %s\nDate: %s\nTime: %s MT\nPhone: %s\nEmail: %s",
		name, t.DisplayName(), date, clock, phone, emailAddr)
}

func rescheduleConfirmationMessage(start time.Time, loc *time.Location, contact string) string {
	day, date, clock := bookingTimes(start, loc)
	return fmt.Sprintf("Updated. You're now booked for %s, %s at %s MT.\n\nIf you need to change it again, reply CHANGE.\n\n%s\nIron-Oak.ca",
		day, date, clock, contact)
}

func operatorRescheduleMessage(name, phone string, start time.Time, loc *time.Location) string {
	_, date, clock := bookingTimes(start, loc)
	return fmt.Sprintf("RESCHEDULED – Iron & Oak\nName: %s\nNew Date: %s\nNew Time: %s MT\nPhone: %s",
		name, date, clock, phone)
}

func operatorCancelMessage(name, phone, eventID string) string {
	return fmt.Sprintf("CANCELLED – Iron & Oak\nName: %s\nPhone: %s\nEvent ID: %s", name, phone, eventID)
}

func sendInfoMessage(name string, cfg Config, contactDisplay string) string {
	return fmt.Sprintf("Hi %s! Here's the info for Iron & Oak's AI Intensive:\n\n\U0001F4B3 Register & Pay: %s\n\n\U0001F4C5 Course: %s\n⏰ Time: %s\n\U0001F4CD Location: %s\n\U0001F4B0 Price: %s\n\nQuestions? Call/text: %s",
		name, cfg.PaymentLink, cfg.Course.Dates, cfg.Course.Time, cfg.Course.Location, cfg.CoursePrice, contactDisplay)
}
