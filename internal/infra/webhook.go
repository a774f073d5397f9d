package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookClient posts ticket lifecycle events to an optional chat webhook
// (Slack-compatible payload). All calls go through a circuit breaker so a
// dead webhook cannot stall the notification workers.
type WebhookClient struct {
	url    string
	client *http.Client
	cb     *CircuitBreaker
}

func NewWebhookClient(url string, cb *CircuitBreaker) *WebhookClient {
	return &WebhookClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		cb:     cb,
	}
}

// Configured reports whether a webhook URL was provided.
func (w *WebhookClient) Configured() bool { return w.url != "" }

// CircuitState exposes the breaker state for the health endpoint.
func (w *WebhookClient) CircuitState() CBState { return w.cb.State() }

// Notify posts a text message. Returns ErrCircuitOpen without touching the
// network while the breaker is open.
func (w *WebhookClient) Notify(ctx context.Context, text string) error {
	return w.cb.Execute(func() error {
		payload, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
		}
		return nil
	})
}
