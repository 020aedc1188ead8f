package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Client is the main entry point for sending notifications.
type Client struct {
	provider  EmailSender
	templates *TemplateRegistry
}

// NewClient creates a new notification client.
func NewClient(provider EmailSender) *Client {
	return &Client{
		provider:  provider,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template and sends the resulting email.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
