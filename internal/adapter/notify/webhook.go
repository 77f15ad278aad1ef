package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// WebhookPublisher POSTs order events to an HTTP endpoint.
type WebhookPublisher struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewWebhookPublisher creates a webhook publisher with a default timeout.
func NewWebhookPublisher(endpoint string, logger *slog.Logger) (*WebhookPublisher, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("webhook url must be absolute")
	}
	return &WebhookPublisher{
		endpoint: parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}, nil
}

// Publish delivers the event. Any 2xx counts as accepted.
func (p *WebhookPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.EventID)
	req.Header.Set("X-Event-Kind", string(event.Kind))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return RetryAfterError{After: parseRetryAfter(resp.Header.Get("Retry-After"), p.now())}
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Error("webhook request failed",
			slog.String("event_id", event.EventID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(payload)),
		)
		return fmt.Errorf("webhook error: %s", resp.Status)
	}
}

// Name identifies the publisher in logs.
func (p *WebhookPublisher) Name() string { return "webhook" }
