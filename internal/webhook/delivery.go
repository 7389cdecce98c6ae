// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Delivery configuration constants
const (
	MaxAttempts    = 5
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 5 * time.Minute
	RequestTimeout = 15 * time.Second
	MaxResponseLen = 4 * 1024
	UserAgent      = "evops-webhook/1.0"
)

// Request headers
const (
	HeaderSignature = "X-Evops-Signature"
	HeaderEvent     = "X-Evops-Event"
	HeaderDelivery  = "X-Evops-Delivery"
)

// DeliveryResult represents the result of a delivery attempt.
type DeliveryResult struct {
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

// Success reports whether the endpoint accepted the delivery.
func (r DeliveryResult) Success() bool {
	return r.Error == nil
}

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

var errStopped = errors.New("dispatcher stopped")

// deliver posts a queued delivery, retrying with exponential backoff while
// the failure is retryable and attempts remain.
func (d *Dispatcher) deliver(ctx context.Context, delivery *queuedDelivery) {
	for attempt := 1; ; attempt++ {
		result := d.attemptDelivery(ctx, delivery)
		if result.Success() {
			d.logger.Info("webhook delivered",
				"delivery_id", delivery.event.ID,
				"event_type", delivery.event.Type,
				"url", delivery.url,
				"status_code", result.StatusCode,
				"attempt", attempt)
			return
		}

		if !result.ShouldRetry || attempt >= d.cfg.MaxAttempts {
			d.logger.Warn("webhook delivery failed",
				"delivery_id", delivery.event.ID,
				"event_type", delivery.event.Type,
				"url", delivery.url,
				"attempts", attempt,
				"error", result.Error)
			return
		}

		backoff := calculateBackoff(attempt, d.cfg.InitialBackoff, d.cfg.MaxBackoff)
		d.logger.Debug("webhook delivery retry scheduled",
			"delivery_id", delivery.event.ID,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", result.Error)

		if err := d.wait(ctx, backoff); err != nil {
			d.logger.Warn("webhook delivery abandoned",
				"delivery_id", delivery.event.ID,
				"event_type", delivery.event.Type,
				"url", delivery.url,
				"attempts", attempt,
				"error", err)
			return
		}
	}
}

func (d *Dispatcher) wait(ctx context.Context, backoff time.Duration) error {
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-d.done:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attemptDelivery performs a single signed HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *queuedDelivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.url, bytes.NewReader(delivery.payload))
	if err != nil {
		return DeliveryResult{Error: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderEvent, delivery.event.Type)
	req.Header.Set(HeaderDelivery, delivery.event.ID)
	if d.cfg.Secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+GenerateSignature(delivery.payload, d.cfg.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return DeliveryResult{Error: fmt.Errorf("request failed: %w", err), ShouldRetry: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	result := DeliveryResult{StatusCode: resp.StatusCode, ResponseBody: string(body)}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		result.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		result.ShouldRetry = resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests
	default:
		result.Error = fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		result.ShouldRetry = true
	}
	return result
}

// calculateBackoff doubles initial for every attempt after the first, capped at maxBackoff.
func calculateBackoff(attempt int, initial, maxBackoff time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	return backoff
}
