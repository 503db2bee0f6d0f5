package email

import (
	"fmt"
	"html"

	"github.com/jordanlanch/ironoak/pkg/models"
)

// CourseDetails are the AI Intensive logistics included in receipts
type CourseDetails struct {
	Dates    string
	Time     string
	Location string
}

// buildContactNotificationEmail returns the operator email for a contact-form inquiry.
func buildContactNotificationEmail(c *models.ContactLead) (subject, htmlBody, plainText string) {
	subject = fmt.Sprintf("New inquiry from %s", c.Name)

	htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>New Inquiry</h2>
			<p><strong>Name:</strong> %s</p>
			<p><strong>Email:</strong> %s</p>
			<p><strong>Organization:</strong> %s</p>
			<p><strong>Objective:</strong> %s</p>
			<p><strong>Message:</strong></p>
			<p>%s</p>
		</body>
		</html>
	`, html.EscapeString(c.Name), html.EscapeString(c.Email), html.EscapeString(c.Organization),
		html.EscapeString(c.Objective), html.EscapeString(c.Message))

	plainText = fmt.Sprintf(`New Inquiry

Name: %s
Email: %s
Organization: %s
Objective: %s

Message:
%s
`, c.Name, c.Email, c.Organization, c.Objective, c.Message)

	return
}

// buildPaymentReceiptEmail returns the buyer's registration receipt.
func buildPaymentReceiptEmail(lead *models.Lead, course CourseDetails) (subject, htmlBody, plainText string) {
	subject = "You're registered for the AI Intensive"

	amount := "0.00"
	if lead.AmountPaid != nil {
		amount = fmt.Sprintf("%.2f", float64(*lead.AmountPaid)/100)
	}

	htmlBody = fmt.Sprintf(`
		<html>
		<body>
			<h2>Registration Confirmed</h2>
			<p>Hi %s,</p>
			<p>We received your payment of <strong>$%s</strong>. Your seat is reserved.</p>
			<ul>
				<li>Dates: %s</li>
				<li>Time: %s</li>
				<li>Location: %s</li>
			</ul>
			<p>Bring your laptop. See you there!</p>
			<p>Iron &amp; Oak</p>
		</body>
		</html>
	`, html.EscapeString(lead.FirstName), amount, html.EscapeString(course.Dates),
		html.EscapeString(course.Time), html.EscapeString(course.Location))

	plainText = fmt.Sprintf(`Hi %s,

We received your payment of $%s. Your seat is reserved.

Dates: %s
Time: %s
Location: %s

Bring your laptop. See you there!

Iron & Oak
`, lead.FirstName, amount, course.Dates, course.Time, course.Location)

	return
}
