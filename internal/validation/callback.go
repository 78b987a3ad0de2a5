package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pronounce/backend/internal/models"
)

// ErrDeliveryFailed is returned when the backend did not acknowledge a verdict
var ErrDeliveryFailed = errors.New("verdict delivery failed")

// maxAckSize bounds how much of the backend response is read
const maxAckSize = 1024

// CallbackClient posts verdicts to the backend callback endpoint
type CallbackClient struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewCallbackClient creates a callback client.
// Every call is bounded by timeout; apiKey is sent as X-API-Key when not empty.
func NewCallbackClient(url, apiKey string, timeout time.Duration) *CallbackClient {
	return &CallbackClient{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Notify posts one verdict. It is not retried.
func (c *CallbackClient) Notify(ctx context.Context, verdict models.VerdictRequest) error {
	body, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	ack, err := io.ReadAll(io.LimitReader(resp.Body, maxAckSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrDeliveryFailed, err)
	}
	if resp.StatusCode != http.StatusOK || string(ack) != models.VerdictAcknowledgement {
		return fmt.Errorf("%w: status %d, body %q", ErrDeliveryFailed, resp.StatusCode, ack)
	}

	return nil
}
