package models

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SubmitResponse is returned after a successful intake
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// TimeSlot is a bookable calendar window
type TimeSlot struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Display string    `json:"display"`
}

// AvailabilityResponse lists free slots
type AvailabilityResponse struct {
	Success        bool       `json:"success"`
	AvailableSlots []TimeSlot `json:"availableSlots"`
}

// BookingResult is what the scheduling gateway returns after creating an event
type BookingResult struct {
	EventID   string `json:"eventId"`
	EventLink string `json:"eventLink,omitempty"`
}

// BookingResponse is returned by the book-appointment tool
type BookingResponse struct {
	Success          bool   `json:"success"`
	EventID          string `json:"eventId"`
	EventLink        string `json:"eventLink,omitempty"`
	ConfirmationSent bool   `json:"confirmationSent"`
}

// SendInfoResponse is returned by the send-sms tool
type SendInfoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SID     string `json:"sid"`
}

// LeadListResponse wraps the admin listing
type LeadListResponse struct {
	Success bool    `json:"success"`
	Leads   []*Lead `json:"leads"`
	Total   int     `json:"total"`
}

// LeadResponse wraps a single lead after an admin edit
type LeadResponse struct {
	Success bool  `json:"success"`
	Lead    *Lead `json:"lead"`
}

// ContactListResponse wraps the contact-form listing
type ContactListResponse struct {
	Success bool           `json:"success"`
	Leads   []*ContactLead `json:"leads"`
}

// ContactResponse is returned after a contact-form submission
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// TokenResponse carries an admin bearer token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// WebhookAck is the body Stripe receives for every accepted delivery
type WebhookAck struct {
	Received bool `json:"received"`
}
