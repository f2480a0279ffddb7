// Package notify executes the notification effects produced by the RSVP
// state machine: best-effort, per-channel, with every outcome journaled.
// Delivery failure is recorded, never propagated to the RSVP result.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"planora/internal/domain"
	"planora/internal/repository"
)

// SenderFactory builds per-event channel senders.
type SenderFactory interface {
	Email(event *domain.WeddingEvent) EmailSender
	WhatsApp(event *domain.WeddingEvent) WhatsAppSender
}

// RestySenderFactory the production factory: resty-backed providers
// configured from the event's communication settings.
type RestySenderFactory struct {
	client *resty.Client
	gmail  GmailTokenSource
}

func NewRestySenderFactory(timeout time.Duration, gmail GmailTokenSource) *RestySenderFactory {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &RestySenderFactory{client: client, gmail: gmail}
}

func (f *RestySenderFactory) Email(event *domain.WeddingEvent) EmailSender {
	return EmailSenderFromEvent(event, f.client, f.gmail)
}

func (f *RestySenderFactory) WhatsApp(event *domain.WeddingEvent) WhatsAppSender {
	return WhatsAppSenderFromEvent(event, f.client)
}

// Outcome what happened to one effect on one channel.
type Outcome struct {
	Channel  string
	Template string
	Status   string // sent/failed/skipped
	Detail   string
}

// Dispatcher renders and sends effects, recording each outcome.
type Dispatcher struct {
	senders   SenderFactory
	templates repository.TemplatesRepo
	outcomes  repository.NotificationsRepo
	logger    *zap.Logger
}

func NewDispatcher(senders SenderFactory, templates repository.TemplatesRepo, outcomes repository.NotificationsRepo, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{senders: senders, templates: templates, outcomes: outcomes, logger: logger}
}

// Dispatch attempts every effect. A channel is attempted only when its
// provider is configured AND the guest has a usable contact; otherwise
// the effect is journaled as skipped. One channel's failure never
// cancels another. Dispatch itself never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WeddingEvent, guest *domain.Guest, effects []Effect) []Outcome {
	outcomes := make([]Outcome, 0, len(effects))
	for _, effect := range effects {
		outcome := d.dispatchOne(ctx, event, guest, effect)
		d.record(ctx, event, guest, outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event *domain.WeddingEvent, guest *domain.Guest, effect Effect) Outcome {
	outcome := Outcome{Channel: effect.Channel, Template: effect.Template}

	var send func(rendered Rendered) error
	switch effect.Channel {
	case domain.ChannelEmail:
		sender := d.senders.Email(event)
		if !sender.IsConfigured() {
			return skipped(outcome, "no email provider configured")
		}
		if guest.Email == "" {
			return skipped(outcome, "guest has no email address")
		}
		send = func(r Rendered) error { return sender.Send(ctx, guest.Email, r.Subject, r.Body) }
	case domain.ChannelWhatsApp:
		sender := d.senders.WhatsApp(event)
		if !sender.IsConfigured() {
			return skipped(outcome, "no whatsapp provider configured")
		}
		if guest.Phone == "" {
			return skipped(outcome, "guest has no phone number")
		}
		send = func(r Rendered) error { return sender.Send(ctx, guest.Phone, r.Body) }
	default:
		return skipped(outcome, "unknown channel")
	}

	override, err := d.templates.Get(ctx, event.ID, effect.Channel, effect.Template)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		d.logger.Warn("template lookup failed, using default",
			zap.String("template", effect.Template), zap.Error(err))
		override = nil
	}
	rendered, err := Render(effect.Channel, effect.Template, override, effect.Params)
	if err != nil {
		outcome.Status = domain.NotificationFailed
		outcome.Detail = err.Error()
		return outcome
	}

	if err := send(rendered); err != nil {
		d.logger.Warn("notification send failed",
			zap.String("channel", effect.Channel),
			zap.String("template", effect.Template),
			zap.Int64("guest_id", guest.ID),
			zap.Error(err))
		outcome.Status = domain.NotificationFailed
		outcome.Detail = err.Error()
		return outcome
	}

	outcome.Status = domain.NotificationSent
	return outcome
}

func (d *Dispatcher) record(ctx context.Context, event *domain.WeddingEvent, guest *domain.Guest, outcome Outcome) {
	err := d.outcomes.Record(ctx, &domain.NotificationRecord{
		EventID:  event.ID,
		GuestID:  guest.ID,
		Channel:  outcome.Channel,
		Template: outcome.Template,
		Status:   outcome.Status,
		Detail:   outcome.Detail,
	})
	if err != nil {
		d.logger.Warn("failed to record notification outcome", zap.Error(err))
	}
}

func skipped(outcome Outcome, detail string) Outcome {
	outcome.Status = domain.NotificationSkipped
	outcome.Detail = detail
	return outcome
}
