package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier delivers best-effort status messages to a user. Delivery failure
// is the caller's to log, never to escalate.
type Notifier interface {
	Send(ctx context.Context, recipient, text string) error
}

// LogNotifier writes messages to the structured log. It is the fallback
// channel when no webhook is configured.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Send(_ context.Context, recipient, text string) error {
	logger := n.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithField("recipient", recipient).Info(text)
	return nil
}

// WebhookNotifier posts messages to a Discord-compatible webhook.
type WebhookNotifier struct {
	URL  string
	HTTP *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL: strings.TrimSpace(url),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, recipient, text string) error {
	if n.URL == "" {
		return fmt.Errorf("notify: webhook URL is empty")
	}

	payload, err := json.Marshal(map[string]string{
		"content": fmt.Sprintf("<@%s> %s", recipient, text),
	})
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook request failed: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook http %d", res.StatusCode)
	}
	return nil
}
