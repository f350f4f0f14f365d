package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/istochnik/delivery-backend/pkg/errors"
)

const (
	responseBodyReadLimit int64 = 4096
	expectedAck                 = "Workflow was started"
)

var errWebhookURLRequired = errors.New("webhook url is required")

// Client triggers the external workflow-automation webhook that runs the
// district-sync job. The automation service is a collaborator boundary; we
// only relay its acknowledgment.
type Client struct {
	httpClient *http.Client
	url        string
	maxRetries int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxRetries overrides how many times a failed trigger is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewClient builds a webhook client for the given URL.
func NewClient(url string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, errWebhookURLRequired
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		url:        trimmed,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// TriggerResponse is the acknowledgment returned by the automation service.
type TriggerResponse struct {
	Message string `json:"message"`
}

// TriggerSync fires the webhook and verifies the workflow-started ack.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; 4xx responses fail immediately.
func (c *Client) TriggerSync(ctx context.Context, payload any) (*TriggerResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode webhook payload")
	}

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(500*time.Millisecond))

	var ack *TriggerResponse
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, attemptErr := c.post(ctx, body)
		if attemptErr != nil {
			var terminal *terminalError
			if errors.As(attemptErr, &terminal) {
				return attemptErr
			}
			return retry.RetryableError(attemptErr)
		}
		ack = resp
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "trigger district sync webhook")
	}
	return ack, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*TriggerResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		// Client errors will not heal on retry.
		return nil, retryStop(fmt.Errorf("webhook rejected request with %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var ack TriggerResponse
	if err := json.Unmarshal(raw, &ack); err != nil {
		return nil, fmt.Errorf("decode webhook response: %w", err)
	}
	if ack.Message != expectedAck {
		return nil, retryStop(fmt.Errorf("unexpected webhook ack %q", ack.Message))
	}
	return &ack, nil
}

// retryStop wraps terminal errors so the retry loop surfaces them as-is.
type terminalError struct {
	err error
}

func (t *terminalError) Error() string { return t.err.Error() }
func (t *terminalError) Unwrap() error { return t.err }

func retryStop(err error) error {
	return &terminalError{err: err}
}
