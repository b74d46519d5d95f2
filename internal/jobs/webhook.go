package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// WebhookClient is an interface for sending webhook notifications
type WebhookClient interface {
	Send(ctx context.Context, url string, data interface{}) error
}

// HTTPWebhookClient implements WebhookClient using standard HTTP requests
type HTTPWebhookClient struct {
	client *http.Client
}

func NewHTTPWebhookClient(timeout time.Duration) *HTTPWebhookClient {
	return &HTTPWebhookClient{client: &http.Client{Timeout: timeout}}
}

// Send posts data as JSON to url
func (c *HTTPWebhookClient) Send(ctx context.Context, url string, data interface{}) error {
	if c.client == nil {
		c.client = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return nil
}

// MockWebhookClient is a mock implementation for testing
type MockWebhookClient struct {
	Calls []WebhookCall
	Err   error
	mu    sync.Mutex
}

// WebhookCall represents a call to the webhook client
type WebhookCall struct {
	URL  string
	Data interface{}
}

// Send records the webhook call for testing
func (m *MockWebhookClient) Send(ctx context.Context, url string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, WebhookCall{
		URL:  url,
		Data: data,
	})
	return m.Err
}
