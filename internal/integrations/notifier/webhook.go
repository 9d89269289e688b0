package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookClient клиент внешнего сервиса уведомлений
type WebhookClient struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewWebhookClient создает новый экземпляр клиента сервиса уведомлений
func NewWebhookClient(baseURL string, timeout time.Duration, log Logger) *WebhookClient {
	return &WebhookClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send передаёт событие сервису уведомлений
func (c *WebhookClient) Send(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications/bookings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", event.ID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Notification service unavailable for event=%s: %v", event.Type, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
