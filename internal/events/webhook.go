package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// WebhookPublisher POSTs each event as JSON to a fixed URL.
type WebhookPublisher struct {
	url     string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type WebhookOption func(*WebhookPublisher)

func WithTimeout(d time.Duration) WebhookOption {
	return func(w *WebhookPublisher) { w.defaultTimeout = d }
}

func WithHeaderProvider(h HeaderProvider) WebhookOption {
	return func(w *WebhookPublisher) { w.headers = h }
}

func WithRetry(max int) WebhookOption {
	return func(w *WebhookPublisher) { w.retryMax = max }
}

// WithDial overrides how connections are opened (in-memory listeners in tests).
func WithDial(dial fasthttp.DialFunc) WebhookOption {
	return func(w *WebhookPublisher) { w.http.Dial = dial }
}

func NewWebhookPublisher(url string, opts ...WebhookOption) *WebhookPublisher {
	w := &WebhookPublisher{
		url:            strings.TrimSpace(url),
		http:           &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 5 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WebhookPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(w.url)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Chess-Event", e.Type)
	if w.headers != nil {
		for k, v := range w.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	req.SetBody(payload)

	attempts := w.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := w.http.DoDeadline(req, resp, w.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("webhook request failed: %w", err)
		} else {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return nil
			}
			lastErr = fmt.Errorf("webhook error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if !shouldRetryStatus(status) {
				return lastErr
			}
		}
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return lastErr
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (w *WebhookPublisher) Close() error {
	w.http.CloseIdleConnections()
	return nil
}

func (w *WebhookPublisher) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(w.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
