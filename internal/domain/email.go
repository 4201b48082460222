package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ActivationEmailData holds data for the account activation email.
type ActivationEmailData struct {
	Email          string
	Name           string
	ActivationURL  string
	ExpiresInHours int
}

// InvitationEmailData holds data for the event invitation email.
type InvitationEmailData struct {
	Email     string
	EventName string
	EventCity string
	StartAt   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendAccountActivation(ctx context.Context, data *ActivationEmailData) error
	SendEventInvitation(ctx context.Context, data *InvitationEmailData) error
}
