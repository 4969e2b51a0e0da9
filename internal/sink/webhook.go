package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Webhook POSTs result payloads to a remote endpoint. An empty URL disables
// delivery entirely.
type Webhook struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewWebhook creates a Webhook sink.
func NewWebhook(url string, log zerolog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With().Str("component", "results_webhook").Logger(),
	}
}

// Deliver posts the payload. Non-2xx responses are an error; callers treat
// all delivery errors as non-fatal.
func (w *Webhook) Deliver(ctx context.Context, p *Payload) error {
	if w.url == "" {
		return nil
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post results: unexpected status %d", resp.StatusCode)
	}

	w.log.Debug().
		Str("user_id", p.UserID).
		Str("test_id", p.TestID).
		Msg("Results forwarded")
	return nil
}
