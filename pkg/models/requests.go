package models

// SubmitRequest is the intake form body. inquiryCategory is accepted as an alias of inquiryType.
type SubmitRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	Email           string `json:"email" validate:"omitempty,email"`
	InquiryType     string `json:"inquiryType"`
	InquiryCategory string `json:"inquiryCategory"`
	Message         string `json:"message" validate:"max=5000"`
	ConsentGiven    bool   `json:"consentGiven"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// Category returns the inquiry type, falling back to the alias field
func (r SubmitRequest) Category() InquiryType {
	if r.InquiryType != "" {
		return InquiryType(r.InquiryType)
	}
	return InquiryType(r.InquiryCategory)
}

// AvailabilityRequest is the body of the check-availability tool
type AvailabilityRequest struct {
	InquiryType     string `json:"inquiryType"`
	InquiryCategory string `json:"inquiryCategory"`
}

// Category returns the inquiry type, falling back to the alias field
func (r AvailabilityRequest) Category() InquiryType {
	if r.InquiryType != "" {
		return InquiryType(r.InquiryType)
	}
	return InquiryType(r.InquiryCategory)
}

// BookingRequest is the body of the book-appointment tool
type BookingRequest struct {
	InquiryType     string `json:"inquiryType"`
	InquiryCategory string `json:"inquiryCategory"`
	StartTime       string `json:"startTime"`
	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	ClientPhone     string `json:"clientPhone"`
	Message         string `json:"message"`
}

// Category returns the inquiry type, falling back to the alias field
func (r BookingRequest) Category() InquiryType {
	if r.InquiryType != "" {
		return InquiryType(r.InquiryType)
	}
	return InquiryType(r.InquiryCategory)
}

// RescheduleRequest is the body of the reschedule-appointment tool
type RescheduleRequest struct {
	EventID      string `json:"eventId"`
	NewStartTime string `json:"newStartTime"`
	ClientPhone  string `json:"clientPhone"`
}

// CancelRequest is the body of the cancel-appointment tool
type CancelRequest struct {
	EventID     string `json:"eventId"`
	ClientPhone string `json:"clientPhone"`
}

// SendInfoRequest is the body of the send-sms tool
type SendInfoRequest struct {
	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
}

// AdminLoginRequest exchanges the admin API key for a bearer token
type AdminLoginRequest struct {
	Email  string `json:"email" validate:"required,email"`
	APIKey string `json:"apiKey" validate:"required"`
}
