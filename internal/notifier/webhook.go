package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GodofWar9000/tele-triage/internal/domain"
)

// SendRequest is the JSON body posted to the webhook.
type SendRequest struct {
	To      string `json:"to"`
	Channel string `json:"channel"`
	Content string `json:"content"`
}

// WebhookNotifier delivers resolutions by POSTing JSON to a relay endpoint.
// The URL is injected from config so tests can point to a local mock.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the message to the configured webhook URL and accepts any 2xx.
func (n *WebhookNotifier) Send(ctx context.Context, target, message string) error {
	body, err := json.Marshal(SendRequest{
		To:      target,
		Channel: "sms",
		Content: message,
	})
	if err != nil {
		return domain.Permanent(fmt.Errorf("webhook: marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return domain.Permanent(fmt.Errorf("webhook: create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return domain.Transient(fmt.Errorf("webhook: send request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	return classifyResponse("webhook", resp)
}

// compile-time check that WebhookNotifier implements Notifier
var _ Notifier = (*WebhookNotifier)(nil)
