// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config holds dispatcher configuration.
type Config struct {
	URLs      []string
	Secret    string
	Workers   int // Number of concurrent delivery workers
	QueueSize int

	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Client overrides the shared HTTP client.
	Client *http.Client
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:        3,
		QueueSize:      100,
		MaxAttempts:    MaxAttempts,
		InitialBackoff: InitialBackoff,
		MaxBackoff:     MaxBackoff,
	}
}

// queuedDelivery is one event bound for one endpoint.
type queuedDelivery struct {
	event   *Event
	url     string
	payload []byte
}

// Dispatcher fans events out to every configured endpoint through a bounded
// queue and a fixed worker pool. Deliveries live only in memory: a full queue
// or a stop drops them with a warning.
type Dispatcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
	queue  chan *queuedDelivery
	wg     sync.WaitGroup
	done   chan struct{}

	lifecycle sync.Mutex // serializes Start and Stop
	mu        sync.RWMutex
	running   bool
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(logger *slog.Logger, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = httpClient
	}

	return &Dispatcher{
		cfg:    cfg,
		client: client,
		logger: logger,
		now:    time.Now,
		queue:  make(chan *queuedDelivery, cfg.QueueSize),
	}
}

// Start starts the dispatcher workers. A stopped dispatcher can be started
// again; deliveries still queued are picked up by the new workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.done = make(chan struct{})

	d.logger.Info("starting webhook dispatcher", "workers", d.cfg.Workers, "endpoints", len(d.cfg.URLs))

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i, d.done)
	}
}

// Stop stops the dispatcher and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int, done <-chan struct{}) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case delivery := <-d.queue:
			d.deliver(ctx, delivery)
		}
	}
}

// Publish queues eventType for every endpoint. It never blocks the caller.
func (d *Dispatcher) Publish(_ context.Context, eventType string, data any) {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		d.logger.Warn("webhook dispatcher not running, dropping event", "event_type", eventType)
		return
	}
	if len(d.cfg.URLs) == 0 {
		return
	}

	event := NewEvent(eventType, data, d.now())
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("failed to marshal webhook payload", "error", err, "event_type", eventType)
		return
	}

	for _, url := range d.cfg.URLs {
		select {
		case d.queue <- &queuedDelivery{event: event, url: url, payload: payload}:
		default:
			d.logger.Warn("webhook queue full, dropping delivery",
				"delivery_id", event.ID,
				"event_type", eventType,
				"url", url)
		}
	}
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(GenerateSignature(payload, secret)))
}
