// Package webhook implements the Notifier port as a JSON POST to a
// configured endpoint (chat webhook, incident channel).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/weftlabs/weft/pkg/ports"
)

// Notifier posts notifications as JSON.
type Notifier struct {
	url     string
	client  *http.Client
	headers map[string]string
}

// Option configures the notifier.
type Option func(*Notifier)

// WithHTTPClient overrides the HTTP client (timeouts, transport).
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// WithHeader adds a request header (auth tokens, signatures).
func WithHeader(key, value string) Option {
	return func(n *Notifier) {
		n.headers[key] = value
	}
}

// New creates a notifier for the given endpoint.
func New(url string, opts ...Option) (*Notifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: endpoint URL is required")
	}
	n := &Notifier{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type payload struct {
	Channel   string            `json:"channel,omitempty"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Severity  string            `json:"severity,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notify implements ports.Notifier.
func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	body, err := json.Marshal(payload{
		Channel:   notification.Channel,
		Subject:   notification.Subject,
		Body:      notification.Body,
		Severity:  notification.Severity,
		Fields:    notification.Fields,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: endpoint returned %s", resp.Status)
	}
	return nil
}
