package otpinfra

import (
	"context"
	"fmt"

	"github.com/cloudeforte/accounts/pkg/notifx"
	"github.com/cloudeforte/accounts/pkg/otp"
)

const (
	verificationTemplate  = "otp_email_verification"
	passwordResetTemplate = "otp_password_reset"
)

const verificationHTML = `<p>Hello,</p>
<p>Your CloudeForte verification code is <strong>{{.Code}}</strong>.</p>
<p>The code expires in {{.TTLMinutes}} minutes. If you did not create an account, you can ignore this email.</p>`

const passwordResetHTML = `<p>Hello,</p>
<p>Your CloudeForte password reset code is <strong>{{.Code}}</strong>.</p>
<p>The code expires in {{.TTLMinutes}} minutes. If you did not request a password reset, you can ignore this email.</p>`

// EmailNotifier implements otp.Notifier by rendering a purpose-specific
// template and sending it through a notifx client.
type EmailNotifier struct {
	client     *notifx.Client
	from       string
	ttlMinutes int
}

// NewEmailNotifier creates an email-backed OTP notifier. ttlMinutes is
// only used for the message copy.
func NewEmailNotifier(client *notifx.Client, from string, ttlMinutes int) (*EmailNotifier, error) {
	if err := client.RegisterTemplate(verificationTemplate, verificationHTML); err != nil {
		return nil, err
	}
	if err := client.RegisterTemplate(passwordResetTemplate, passwordResetHTML); err != nil {
		return nil, err
	}

	return &EmailNotifier{
		client:     client,
		from:       from,
		ttlMinutes: ttlMinutes,
	}, nil
}

// SendCode delivers the code to the identity's mailbox.
func (n *EmailNotifier) SendCode(ctx context.Context, identity, code string, purpose otp.Purpose) error {
	tmpl := verificationTemplate
	subject := "Verify your CloudeForte account"
	if purpose == otp.PurposePasswordReset {
		tmpl = passwordResetTemplate
		subject = "Reset your CloudeForte password"
	}

	data := struct {
		Code       string
		TTLMinutes int
	}{Code: code, TTLMinutes: n.ttlMinutes}

	msg := notifx.EmailMessage{
		From:     n.from,
		To:       []string{identity},
		Subject:  subject,
		TextBody: fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, n.ttlMinutes),
	}

	return n.client.SendTemplatedEmail(ctx, tmpl, data, msg)
}
