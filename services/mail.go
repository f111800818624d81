package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"sharenest-backend/config"
)

// DateRange carries the pre-formatted calendar dates included in booking
// emails.
type DateRange struct {
	From string
	To   string
}

// LandlordContact is attached to a status update only when a booking was
// approved; declined tenants never see the landlord's contact details.
type LandlordContact struct {
	Name  string
	Phone string
}

// Notifier delivers outbound email. It is injected into the services that
// need it so tests can swap in a recording double. All sends from the
// booking flow are best-effort: callers log failures and move on.
type Notifier interface {
	SendBookingRequest(to, landlordName, tenantName, propertyTitle string, dates DateRange, viewURL string) error
	SendBookingConfirmation(to, tenantName, propertyTitle string, dates DateRange, viewURL string) error
	SendBookingStatusUpdate(to, tenantName, propertyTitle, status string, dates DateRange, viewURL string, contact *LandlordContact) error
	SendPasswordReset(to, name, resetURL string) error
}

// SMTPNotifier sends mail over plain SMTP. When SMTP is not configured it
// degrades to logging the message, which keeps local development working
// without a relay.
type SMTPNotifier struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func NewSMTPNotifier(cfg config.App) *SMTPNotifier {
	return &SMTPNotifier{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
	}
}

func (n *SMTPNotifier) configured() bool {
	return n.Host != "" && n.Port != "" && n.Username != "" && n.Password != ""
}

func (n *SMTPNotifier) send(to, subject, plainBody, htmlBody string) error {
	if !n.configured() {
		log.Printf("[MOCK EMAIL] to:%s subject:%q", to, subject)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", n.FromName, n.Username)
	auth := smtp.PlainAuth("", n.Username, n.Password, n.Host)
	addr := fmt.Sprintf("%s:%s", n.Host, n.Port)

	boundary := "----=_SHARENEST_EMAIL_BOUNDARY"
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
	msg.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, plainBody))
	msg.WriteString(fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody))
	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return smtp.SendMail(addr, auth, n.Username, []string{to}, []byte(msg.String()))
}

func (n *SMTPNotifier) SendBookingRequest(to, landlordName, tenantName, propertyTitle string, dates DateRange, viewURL string) error {
	subject := fmt.Sprintf("New Booking Request for %s", propertyTitle)

	plain := fmt.Sprintf(
		"Hello %s,\n\n"+
			"You have received a new booking request for your property %s.\n\n"+
			"Tenant: %s\nDates: %s to %s\n\n"+
			"Please review and respond to this request as soon as possible: %s\n",
		landlordName, propertyTitle, tenantName, dates.From, dates.To, viewURL,
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New Booking Request</h2>
  <p>Hello %s,</p>
  <p>You have received a new booking request for your property <strong>%s</strong>.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 4px;">
    <p><strong>Tenant:</strong> %s</p>
    <p><strong>Dates:</strong> %s to %s</p>
  </div>
  <p>Please review and respond to this request as soon as possible.</p>
  <p><a href="%s">View Booking Request</a></p>
</div>`, landlordName, propertyTitle, tenantName, dates.From, dates.To, viewURL)

	return n.send(to, subject, plain, html)
}

func (n *SMTPNotifier) SendBookingConfirmation(to, tenantName, propertyTitle string, dates DateRange, viewURL string) error {
	subject := fmt.Sprintf("Booking Request Sent: %s", propertyTitle)

	plain := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your booking request for %s has been sent to the landlord.\n\n"+
			"Dates: %s to %s\n\n"+
			"You will receive another email once the landlord responds.\n\n"+
			"View your request: %s\n",
		tenantName, propertyTitle, dates.From, dates.To, viewURL,
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Booking Request Sent</h2>
  <p>Hello %s,</p>
  <p>Your booking request for <strong>%s</strong> has been sent to the landlord.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 4px;">
    <p><strong>Dates:</strong> %s to %s</p>
  </div>
  <p>You will receive another email once the landlord responds.</p>
  <p><a href="%s">View Booking Request</a></p>
</div>`, tenantName, propertyTitle, dates.From, dates.To, viewURL)

	return n.send(to, subject, plain, html)
}

func (n *SMTPNotifier) SendBookingStatusUpdate(to, tenantName, propertyTitle, status string, dates DateRange, viewURL string, contact *LandlordContact) error {
	statusText := "Approved"
	if status != "approved" {
		statusText = "Declined"
	}
	subject := fmt.Sprintf("Booking %s: %s", statusText, propertyTitle)

	contactPlain := ""
	contactHTML := ""
	if status == "approved" && contact != nil {
		contactPlain = fmt.Sprintf("\nLandlord Contact Information:\nName: %s\nPhone: %s\n", contact.Name, contact.Phone)
		contactHTML = fmt.Sprintf(`<div style="background-color: #e8f5e9; padding: 15px; border-radius: 4px;">
    <p><strong>Landlord Contact Information:</strong></p>
    <p><strong>Name:</strong> %s</p>
    <p><strong>Phone:</strong> %s</p>
  </div>`, contact.Name, contact.Phone)
	}

	plain := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your booking request for %s has been %s.\n\n"+
			"Dates: %s to %s\n%s\n"+
			"View booking details: %s\n",
		tenantName, propertyTitle, status, dates.From, dates.To, contactPlain, viewURL,
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Booking %s</h2>
  <p>Hello %s,</p>
  <p>Your booking request for <strong>%s</strong> has been <strong>%s</strong>.</p>
  <div style="background-color: #f8f9fa; padding: 15px; border-radius: 4px;">
    <p><strong>Dates:</strong> %s to %s</p>
  </div>
  %s
  <p><a href="%s">View Booking Details</a></p>
</div>`, statusText, tenantName, propertyTitle, status, dates.From, dates.To, contactHTML, viewURL)

	return n.send(to, subject, plain, html)
}

func (n *SMTPNotifier) SendPasswordReset(to, name, resetURL string) error {
	subject := "Reset your ShareNest password"

	plain := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset your ShareNest password. Open the link below to create a new password:\n\n"+
			"%s\n\n"+
			"This link will expire in 1 hour.\n\n"+
			"If you didn't request a password reset, you can safely ignore this email.\n",
		name, resetURL,
	)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Reset Your Password</h2>
  <p>Hello %s,</p>
  <p>We received a request to reset your ShareNest password. Click the button below to create a new password:</p>
  <p><a href="%s" style="background-color: #3498db; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset Password</a></p>
  <p>This link will expire in 1 hour.</p>
  <p>If you didn't request a password reset, you can safely ignore this email.</p>
</div>`, name, resetURL)

	return n.send(to, subject, plain, html)
}
