// Package feed consumes the push event stream.
//
// The transport promises nothing: messages arrive unordered, duplicated, or
// malformed, and the socket drops whenever it likes. The listener's job is
// narrow — keep a connection alive, decode what can be decoded, hand events
// to the reconciler, and absorb everything else.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/rovshanmuradov/solana-dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	initialBackoff   = 200 * time.Millisecond
	maxBackoff       = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Handler receives each successfully decoded event. It runs on the listener
// goroutine, so it must not block for long.
type Handler func(domain.Event)

// Listener owns one feed connection and its reconnect loop.
type Listener struct {
	url         string
	handler     Handler
	maxAttempts uint
	logger      *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
	done      chan struct{}
}

// NewListener creates a feed listener. maxAttempts bounds reconnect tries
// per outage; zero means retry forever.
func NewListener(url string, maxAttempts uint, handler Handler, logger *zap.Logger) *Listener {
	return &Listener{
		url:         url,
		handler:     handler,
		maxAttempts: maxAttempts,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Run connects and consumes until the context ends or reconnection is
// exhausted. A dropped connection is rebuilt with exponential backoff; the
// caller's state is untouched across reconnects, the snapshot refresh covers
// whatever was missed.
func (l *Listener) Run(ctx context.Context) error {
	for {
		conn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = l.readLoop(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return nil
		case <-l.done:
			return nil
		default:
		}
		l.logger.Warn("feed connection lost, reconnecting", zap.Error(err))
	}
}

func (l *Listener) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialBackoff
	policy.MaxInterval = maxBackoff

	opts := []backoff.RetryOption{backoff.WithBackOff(policy)}
	if l.maxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(l.maxAttempts))
	}

	conn, err := backoff.Retry(ctx, func() (*websocket.Conn, error) {
		conn, _, err := dialer.DialContext(ctx, l.url, nil)
		if err != nil {
			l.logger.Debug("feed dial failed", zap.Error(err))
			return nil, err
		}
		return conn, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	l.logger.Info("feed connected", zap.String("url", l.url))
	return conn, nil
}

func (l *Listener) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := domain.DecodeEvent(msg)
		if err != nil {
			// Malformed entries are dropped, never fatal to the pipeline.
			if errors.Is(err, domain.ErrMalformedEvent) {
				l.logger.Warn("dropping malformed feed message", zap.Error(err))
				continue
			}
			l.logger.Warn("feed decode failed", zap.Error(err))
			continue
		}

		l.handler(ev)
	}
}

// Close tears the listener down. Safe to call more than once.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		if l.conn != nil {
			_ = l.conn.Close()
		}
		l.mu.Unlock()
	})
}
