// Package notify delivers alert messages through a Discord webhook.
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
)

const maxErrorBodyBytes = 1024

// Discord posts messages to a webhook URL. An empty URL makes delivery a
// no-op.
type Discord struct {
	webhookURL string
	timeout    time.Duration
	httpClient *http.Client
}

func NewDiscord(webhookURL string, timeout time.Duration) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Notify posts the message as webhook content.
func (d *Discord) Notify(ctx context.Context, message string) error {
	if d.webhookURL == "" {
		return nil
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("discord webhook failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
