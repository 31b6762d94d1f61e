package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"handyman-recruitment-backend/config"
	"handyman-recruitment-backend/internal/domain"
)

// SendFunc matches smtp.SendMail so tests can capture outgoing mail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends intake notifications to the agency inbox via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	toEmail   string
	send      SendFunc
}

var _ domain.Notifier = (*EmailService)(nil)

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		toEmail:   cfg.ContactEmailTo,
		send:      smtp.SendMail,
	}
}

// WithSender replaces the SMTP transport.
func (s *EmailService) WithSender(send SendFunc) *EmailService {
	s.send = send
	return s
}

type notificationData struct {
	Title   string
	Fields  []field
	Message string
	ReplyTo string
}

type field struct {
	Label string
	Value string
}

const notificationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f4e79; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #1f4e79; margin-top: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>{{.Title}}</h1></div>
        <div class="content">
            {{range .Fields}}<p><span class="label">{{.Label}}:</span> {{.Value}}</p>
            {{end}}
            <div class="message-box">{{.Message}}</div>
        </div>
        <p>Reply to: {{.ReplyTo}}</p>
    </div>
</body>
</html>`

var tmpl = template.Must(template.New("notification").Parse(notificationTemplate))

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.toEmail != ""
}

func (s *EmailService) NotifyContactMessage(ctx context.Context, msg *domain.ContactMessage) error {
	return s.sendNotification(ctx, fmt.Sprintf("Website contact (%s): %s", msg.ContactType, msg.FullName), notificationData{
		Title: "New Contact Message",
		Fields: []field{
			{"From", msg.FullName},
			{"I am a", string(msg.ContactType)},
			{"Phone", msg.PhoneNumber},
			{"Email", msg.Email},
		},
		Message: msg.Message,
		ReplyTo: msg.Email,
	})
}

func (s *EmailService) NotifyEnquiry(ctx context.Context, enquiry *domain.Enquiry) error {
	company := "-"
	if enquiry.CompanyName != nil {
		company = *enquiry.CompanyName
	}
	return s.sendNotification(ctx, fmt.Sprintf("Hiring enquiry: %s in %s", enquiry.ServiceType, enquiry.Location), notificationData{
		Title: "New Hiring Enquiry",
		Fields: []field{
			{"Name", enquiry.FullName},
			{"Company", company},
			{"Phone", enquiry.PhoneNumber},
			{"Email", enquiry.Email},
			{"Location", enquiry.Location},
			{"Service required", enquiry.ServiceType},
		},
		Message: enquiry.Message,
		ReplyTo: enquiry.Email,
	})
}

func (s *EmailService) sendNotification(ctx context.Context, subject string, data notificationData) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Reply-To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		s.toEmail,
		data.ReplyTo,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{s.toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
