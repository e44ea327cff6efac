package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fbz-tec/docvault/core/config"
	"github.com/fbz-tec/docvault/core/telemetry"
	"github.com/fbz-tec/docvault/internal/logger"
)

// State is the lifecycle position of a Cache.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Connector opens and closes handles of type H.
type Connector[H any] interface {
	Connect(ctx context.Context, uri string) (H, error)
	Disconnect(ctx context.Context, handle H) error
}

// ConnectorFunc adapts a plain connect function. Disconnect is a no-op.
type ConnectorFunc[H any] func(ctx context.Context, uri string) (H, error)

func (f ConnectorFunc[H]) Connect(ctx context.Context, uri string) (H, error) {
	return f(ctx, uri)
}

func (f ConnectorFunc[H]) Disconnect(context.Context, H) error {
	return nil
}

const connectKey = "connect"

// Cache holds the single shared connection of the process.
//
// The first Get establishes the connection; callers arriving while that
// attempt is in flight wait for the same attempt. Once connected, Get returns
// the cached handle without touching the connector. A failed attempt returns
// the cache to StateUninitialized so the next Get tries again.
type Cache[H any] struct {
	uri       string
	backend   string
	timeout   time.Duration
	connector Connector[H]
	collector telemetry.Collector

	group singleflight.Group

	mu       sync.Mutex
	state    State
	handle   H
	inflight chan struct{} // closed when the running attempt finishes
}

// Option configures a Cache.
type Option func(*cacheOptions)

type cacheOptions struct {
	backend   string
	timeout   time.Duration
	collector telemetry.Collector
}

// WithBackend names the backend in logs and metrics.
func WithBackend(name string) Option {
	return func(o *cacheOptions) { o.backend = name }
}

// WithConnectTimeout bounds each connect attempt. Defaults to config.DefaultConnectTimeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *cacheOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCollector reports connect attempts, failures and state changes.
func WithCollector(c telemetry.Collector) Option {
	return func(o *cacheOptions) {
		if c != nil {
			o.collector = c
		}
	}
}

// NewCache builds a cache for uri. Nothing is dialed until the first Get.
func NewCache[H any](uri string, connector Connector[H], opts ...Option) *Cache[H] {
	o := cacheOptions{
		backend:   "database",
		timeout:   config.DefaultConnectTimeout,
		collector: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cache[H]{
		uri:       uri,
		backend:   o.backend,
		timeout:   o.timeout,
		connector: connector,
		collector: o.collector,
	}
	c.collector.SetConnectionState(c.backend, int(StateUninitialized))
	return c
}

// Get returns the shared handle, connecting on first use.
//
// An empty URI fails with *config.ConfigurationError and never reaches the
// connector. Connect failures are returned as *ConnectionError. Cancelling ctx
// stops this caller waiting but not the shared attempt, which runs under the
// connect timeout.
func (c *Cache[H]) Get(ctx context.Context) (H, error) {
	var zero H

	if strings.TrimSpace(c.uri) == "" {
		return zero, config.MissingURIError()
	}

	c.mu.Lock()
	if c.state == StateConnected {
		h := c.handle
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	attemptCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(connectKey, func() (any, error) {
		return c.connect(attemptCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(H), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// connect runs inside the singleflight group, so at most one is active.
func (c *Cache[H]) connect(ctx context.Context) (any, error) {
	c.mu.Lock()
	// A previous attempt may have finished between the fast path and DoChan.
	if c.state == StateConnected {
		h := c.handle
		c.mu.Unlock()
		return h, nil
	}
	c.setState(StateConnecting)
	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	target := SanitizeURI(c.uri)
	logger.Debug("Connecting to %s (timeout %v): %s", c.backend, c.timeout, target)
	c.collector.IncConnectAttempt(c.backend)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	h, err := c.connector.Connect(ctx, c.uri)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		c.inflight = nil
		close(done)
	}()

	if err != nil {
		c.setState(StateUninitialized)
		c.collector.IncConnectFailure(c.backend)
		logger.Debug("Connection to %s failed after %v: %v", c.backend, time.Since(start), err)
		return nil, &ConnectionError{Backend: c.backend, Target: target, Err: err}
	}

	c.handle = h
	c.setState(StateConnected)
	logger.Debug("Connected to %s in %v", c.backend, time.Since(start))
	return h, nil
}

// setState must be called with c.mu held.
func (c *Cache[H]) setState(s State) {
	c.state = s
	c.collector.SetConnectionState(c.backend, int(s))
}

// State returns the current lifecycle state.
func (c *Cache[H]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Backend returns the backend name given with WithBackend.
func (c *Cache[H]) Backend() string {
	return c.backend
}

// Close disconnects the cached handle, if any, and resets the cache so the
// next Get reconnects. An attempt already in flight is waited for, then its
// handle is disconnected. If ctx ends first, Close returns ctx.Err() and the
// attempt's handle stays cached.
func (c *Cache[H]) Close(ctx context.Context) error {
	c.mu.Lock()
	for c.state == StateConnecting {
		done := c.inflight
		c.mu.Unlock()
		logger.Debug("Waiting for the %s connect attempt before closing...", c.backend)
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	h := c.handle
	var zero H
	c.handle = zero
	c.setState(StateUninitialized)
	c.mu.Unlock()

	logger.Debug("Closing %s connection...", c.backend)
	if err := c.connector.Disconnect(ctx, h); err != nil {
		logger.Debug("Error closing %s connection: %v", c.backend, err)
		return err
	}
	logger.Debug("%s connection closed successfully", c.backend)
	return nil
}
