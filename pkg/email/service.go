// Package email sends operator notifications and payment receipts through
// SendGrid. Without an API key messages are only logged.
package email

import (
	"fmt"
	"log"

	"github.com/jordanlanch/ironoak/pkg/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender is the part of the SendGrid client the service uses
type Sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Message is a fully rendered email
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Service delivers rendered messages
type Service struct {
	from          *mail.Email
	operatorEmail string
	sender        Sender
}

// NewService creates an email service. An empty sendGridAPIKey selects
// console mode, which logs instead of sending.
func NewService(fromEmail, fromName, operatorEmail, sendGridAPIKey string) *Service {
	var sender Sender
	if sendGridAPIKey != "" {
		sender = sendgrid.NewSendClient(sendGridAPIKey)
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}
	return NewServiceWithSender(fromEmail, fromName, operatorEmail, sender)
}

// NewServiceWithSender creates an email service around an existing sender.
// A nil sender is console mode.
func NewServiceWithSender(fromEmail, fromName, operatorEmail string, sender Sender) *Service {
	return &Service{
		from:          mail.NewEmail(fromName, fromEmail),
		operatorEmail: operatorEmail,
		sender:        sender,
	}
}

// Enabled reports whether messages actually leave the process
func (s *Service) Enabled() bool {
	return s.sender != nil
}

// SendContactNotification tells the operator a contact-form inquiry arrived
func (s *Service) SendContactNotification(c *models.ContactLead) error {
	if s.operatorEmail == "" {
		return nil
	}
	subject, html, text := buildContactNotificationEmail(c)
	return s.Send(Message{To: s.operatorEmail, ToName: s.from.Name, Subject: subject, HTML: html, Text: text})
}

// SendPaymentReceipt confirms a course registration to the buyer
func (s *Service) SendPaymentReceipt(lead *models.Lead, course CourseDetails) error {
	if lead.Email == nil || *lead.Email == "" {
		return nil
	}
	subject, html, text := buildPaymentReceiptEmail(lead, course)
	return s.Send(Message{To: *lead.Email, ToName: lead.FullName(), Subject: subject, HTML: html, Text: text})
}

// Send delivers msg, or logs it in console mode
func (s *Service) Send(msg Message) error {
	if s.sender == nil {
		log.Printf("📧 [EMAIL] %s -> %s <%s> (not sent, console mode)", msg.Subject, msg.ToName, msg.To)
		return nil
	}

	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.Text, msg.HTML)
	resp, err := s.sender.Send(m)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	log.Printf("✅ Email %q sent to %s (SendGrid status: %d)", msg.Subject, msg.To, resp.StatusCode)
	return nil
}
