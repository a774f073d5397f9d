package worker

// notify_worker.go
// Processes ticket lifecycle notifications from QueueNotify: an email to the
// customer (when they left one) and a message to the optional chat webhook.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fixflow/internal/infra"
	"fixflow/internal/model"

	"github.com/rs/zerolog/log"
)

// NotifyJobPayload is the job envelope sent to QueueNotify.
type NotifyJobPayload struct {
	TicketID      string `json:"ticket_id"`
	Folio         string `json:"folio"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	FromState     string `json:"from_state,omitempty"`
	ToState       string `json:"to_state"`
}

func notifyPayloadFor(t *model.Ticket, from, to model.TicketState) NotifyJobPayload {
	p := NotifyJobPayload{
		TicketID:     t.ID.String(),
		Folio:        t.Folio,
		CustomerName: t.CustomerName,
		FromState:    string(from),
		ToState:      string(to),
	}
	if t.CustomerEmail != nil {
		p.CustomerEmail = *t.CustomerEmail
	}
	return p
}

// NotifyWorker delivers ticket notifications. Both channels are optional;
// only real delivery failures count as errors and trigger a retry.
type NotifyWorker struct {
	mailer  *infra.Mailer
	webhook *infra.WebhookClient
}

func NewNotifyWorker(mailer *infra.Mailer, webhook *infra.WebhookClient) *NotifyWorker {
	return &NotifyWorker{mailer: mailer, webhook: webhook}
}

// Process sends the email and webhook message for one lifecycle event.
func (w *NotifyWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload NotifyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads are not retryable.
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return nil
	}

	subject, body := renderNotification(payload)

	var firstErr error
	if w.mailer != nil && w.mailer.Configured() && payload.CustomerEmail != "" {
		if err := w.mailer.Send(payload.CustomerEmail, subject, body); err != nil {
			log.Error().Err(err).Str("to", payload.CustomerEmail).Msg("notify_worker: failed to send email")
			firstErr = err
		} else {
			log.Info().Str("to", payload.CustomerEmail).Str("folio", payload.Folio).Msg("notify_worker: email sent")
		}
	}

	if w.webhook != nil && w.webhook.Configured() {
		err := w.webhook.Notify(ctx, fmt.Sprintf("%s: %s", payload.Folio, body))
		switch {
		case errors.Is(err, infra.ErrCircuitOpen):
			// Fast-fail while the webhook is down; the retry (or the DLQ)
			// picks it up once the breaker probes again.
			log.Warn().Str("folio", payload.Folio).Msg("notify_worker: webhook circuit open")
			if firstErr == nil {
				firstErr = err
			}
		case err != nil:
			log.Error().Err(err).Str("folio", payload.Folio).Msg("notify_worker: webhook delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func renderNotification(p NotifyJobPayload) (subject, body string) {
	switch p.ToState {
	case string(model.TicketReceived):
		subject = fmt.Sprintf("Repair ticket %s received", p.Folio)
		body = fmt.Sprintf("Hi %s, we received your device. Your ticket number is %s.", p.CustomerName, p.Folio)
	case string(model.TicketRepaired):
		subject = fmt.Sprintf("Your device is ready — ticket %s", p.Folio)
		body = fmt.Sprintf("Hi %s, the repair for ticket %s is finished. You can pick up your device.", p.CustomerName, p.Folio)
	case string(model.TicketCanceled):
		subject = fmt.Sprintf("Repair ticket %s canceled", p.Folio)
		body = fmt.Sprintf("Hi %s, your repair ticket %s was canceled.", p.CustomerName, p.Folio)
	default:
		subject = fmt.Sprintf("Update on repair ticket %s", p.Folio)
		body = fmt.Sprintf("Hi %s, your repair ticket %s moved to %s.", p.CustomerName, p.Folio, p.ToState)
	}
	return subject, body
}
