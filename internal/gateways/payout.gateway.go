package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/valyala/fasthttp"
)

var ErrWebhookUnavailable = errors.New("payout webhook unavailable")

// PayoutNotification tells the back-office payment system that a
// commission became payable.
type PayoutNotification struct {
	PurchaseID      int64     `json:"purchase_id"`
	CedenteID       int64     `json:"cedente_id"`
	CommissionCents int64     `json:"commission_cents"`
	ReleasedAt      time.Time `json:"released_at"`
}

type NotifyResponse struct {
	NotificationID string `json:"notification_id"`
	Accepted       bool   `json:"accepted"`
	ErrorMsg       string `json:"error_message,omitempty"`
}

type Config struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client delivers payout notifications over HTTP with bounded retry.
type Client struct {
	config Config
	http   *fasthttp.Client

	totalRequests  atomic.Int64
	failedRequests atomic.Int64
}

func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 200 * time.Millisecond
	}
	return &Client{
		config: config,
		http: &fasthttp.Client{
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
}

// Notify posts the notification, retrying transient failures with a
// linear backoff. A 4xx from the webhook is permanent and not retried.
func (c *Client) Notify(ctx context.Context, n *PayoutNotification) (*NotifyResponse, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		resp, err := c.send(body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var permErr *permanentError
		if errors.As(err, &permErr) {
			return nil, permErr.err
		}

		logger.Warn("payout notification attempt failed",
			"purchase_id", n.PurchaseID,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, fmt.Errorf("%w: %v", ErrWebhookUnavailable, lastErr)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (c *Client) send(body []byte) (*NotifyResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	c.totalRequests.Add(1)

	if err := c.http.DoTimeout(req, resp, c.config.Timeout); err != nil {
		c.failedRequests.Add(1)
		return nil, err
	}

	status := resp.StatusCode()
	if status >= 400 && status < 500 {
		c.failedRequests.Add(1)
		return nil, &permanentError{err: fmt.Errorf("webhook rejected notification: status %d", status)}
	}
	if status >= 500 {
		c.failedRequests.Add(1)
		return nil, fmt.Errorf("webhook error: status %d", status)
	}

	var out NotifyResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode webhook response: %w", err)
	}
	return &out, nil
}

func (c *Client) Stats() (total, failed int64) {
	return c.totalRequests.Load(), c.failedRequests.Load()
}
