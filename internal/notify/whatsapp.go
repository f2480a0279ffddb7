package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"planora/internal/domain"
)

// WhatsAppSender one configured WhatsApp channel for one event.
type WhatsAppSender interface {
	IsConfigured() bool
	Send(ctx context.Context, to, body string) error
}

const whatsappGraphBase = "https://graph.facebook.com/v18.0"

// WhatsAppSenderFromEvent builds a Cloud API sender from the event's
// per-event credentials.
func WhatsAppSenderFromEvent(event *domain.WeddingEvent, client *resty.Client) WhatsAppSender {
	comm := event.Communication
	return &cloudAPISender{
		client:  client,
		phoneID: comm.WhatsAppPhoneID,
		token:   comm.WhatsAppToken,
	}
}

type cloudAPISender struct {
	client  *resty.Client
	phoneID string
	token   string
}

func (s *cloudAPISender) IsConfigured() bool { return s.phoneID != "" && s.token != "" }

func (s *cloudAPISender) Send(ctx context.Context, to, body string) error {
	to = NormalizePhoneNumber(to)
	if to == "" {
		return fmt.Errorf("empty phone number")
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"messaging_product": "whatsapp",
			"to":                to,
			"type":              "text",
			"text":              map[string]string{"body": body},
		}).
		Post(fmt.Sprintf("%s/%s/messages", whatsappGraphBase, s.phoneID))
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("whatsapp returned %d", resp.StatusCode())
	}
	return nil
}

// NormalizePhoneNumber strips formatting so the number matches the
// international digits-only form the Cloud API expects.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
