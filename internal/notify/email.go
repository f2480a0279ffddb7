package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-resty/resty/v2"

	"planora/internal/domain"
)

// EmailSender one configured outbound email channel for one event.
type EmailSender interface {
	IsConfigured() bool
	Send(ctx context.Context, to, subject, body string) error
}

// GmailTokenSource exchanges a stored refresh token for an access token.
// Implemented by the OAuth manager.
type GmailTokenSource interface {
	AccessToken(ctx context.Context, refreshToken string) (string, error)
}

const (
	sendgridURL  = "https://api.sendgrid.com/v3/mail/send"
	mailgunBase  = "https://api.mailgun.net/v3"
	gmailSendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
)

// EmailSenderFromEvent picks the sender for the event's configured
// provider. An unconfigured event yields a sender whose IsConfigured
// reports false; the dispatcher then records a skip.
func EmailSenderFromEvent(event *domain.WeddingEvent, client *resty.Client, gmail GmailTokenSource) EmailSender {
	comm := event.Communication
	switch comm.EmailProvider {
	case domain.EmailProviderSendGrid:
		return &sendgridSender{client: client, apiKey: comm.EmailAPIKey, from: comm.EmailFrom}
	case domain.EmailProviderMailgun:
		return &mailgunSender{client: client, apiKey: comm.EmailAPIKey, domain: comm.EmailDomain, from: comm.EmailFrom}
	case domain.EmailProviderGmail:
		return &gmailSender{client: client, tokens: gmail, refreshToken: comm.GmailRefreshToken, from: comm.EmailFrom}
	}
	return unconfiguredEmail{}
}

type unconfiguredEmail struct{}

func (unconfiguredEmail) IsConfigured() bool { return false }
func (unconfiguredEmail) Send(context.Context, string, string, string) error {
	return fmt.Errorf("email provider not configured")
}

type sendgridSender struct {
	client *resty.Client
	apiKey string
	from   string
}

func (s *sendgridSender) IsConfigured() bool { return s.apiKey != "" && s.from != "" }

func (s *sendgridSender) Send(ctx context.Context, to, subject, body string) error {
	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": s.from},
		"subject": subject,
		"content": []map[string]string{{"type": "text/plain", "value": body}},
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(sendgridURL)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode())
	}
	return nil
}

type mailgunSender struct {
	client *resty.Client
	apiKey string
	domain string
	from   string
}

func (s *mailgunSender) IsConfigured() bool {
	return s.apiKey != "" && s.domain != "" && s.from != ""
}

func (s *mailgunSender) Send(ctx context.Context, to, subject, body string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBasicAuth("api", s.apiKey).
		SetFormData(map[string]string{
			"from":    s.from,
			"to":      to,
			"subject": subject,
			"text":    body,
		}).
		Post(fmt.Sprintf("%s/%s/messages", mailgunBase, s.domain))
	if err != nil {
		return fmt.Errorf("mailgun request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailgun returned %d", resp.StatusCode())
	}
	return nil
}

type gmailSender struct {
	client       *resty.Client
	tokens       GmailTokenSource
	refreshToken string
	from         string
}

func (s *gmailSender) IsConfigured() bool {
	return s.refreshToken != "" && s.from != "" && s.tokens != nil
}

func (s *gmailSender) Send(ctx context.Context, to, subject, body string) error {
	accessToken, err := s.tokens.AccessToken(ctx, s.refreshToken)
	if err != nil {
		return fmt.Errorf("gmail token refresh failed: %w", err)
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.from, to, subject, body)
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"raw": base64.RawURLEncoding.EncodeToString([]byte(raw))}).
		Post(gmailSendURL)
	if err != nil {
		return fmt.Errorf("gmail request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gmail returned %d", resp.StatusCode())
	}
	return nil
}
