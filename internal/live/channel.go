package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homedeck/internal/shared"
	"github.com/gorilla/websocket"
)

// Config configures the push channel connection.
type Config struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
}

// DefaultConfig returns settings for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PongTimeout:      10 * time.Second,
		WriteTimeout:     5 * time.Second,
		MaxMessageSize:   1 << 20,
	}
}

// Channel is a push channel subscription.
type Channel struct {
	cfg    Config
	logger *log.Logger
}

func NewChannel(cfg Config, logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Channel{cfg: cfg, logger: shared.WithLogger(logger, "channel", cfg.URL)}
}

// Run connects and delivers events to sink until ctx is done or the server closes the connection.
// A clean shutdown returns nil.
func (ch *Channel) Run(ctx context.Context, sink Sink) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: ch.cfg.HandshakeTimeout,
		ReadBufferSize:   4096,
		WriteBufferSize:  1024,
	}

	conn, resp, err := dialer.DialContext(ctx, ch.cfg.URL, ch.cfg.Header)
	if err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %w", shared.ErrTransport, ch.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	ch.logger.Info("connected")

	if ch.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(ch.cfg.MaxMessageSize)
	}

	readWindow := ch.cfg.PingInterval + ch.cfg.PongTimeout
	if ch.cfg.PingInterval > 0 {
		conn.SetReadDeadline(time.Now().Add(readWindow))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readWindow))
		})
	}

	done := make(chan struct{})
	defer close(done)
	go ch.keepalive(ctx, conn, done)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ch.logger.Info("disconnected")
				return nil
			}
			return fmt.Errorf("%w: read: %w", shared.ErrTransport, err)
		}

		if ch.cfg.PingInterval > 0 {
			conn.SetReadDeadline(time.Now().Add(readWindow))
		}

		ev, err := Decode(frame)
		switch {
		case errors.Is(err, ErrUnknownEvent):
			ch.logger.Debug("ignoring event", "event", ev.Name)
			continue
		case err != nil:
			ch.logger.Warn("malformed frame", "error", err)
			continue
		}
		Deliver(sink, ev)
	}
}

// keepalive pings on an interval and sends a close frame when ctx ends.
func (ch *Channel) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	var tick <-chan time.Time
	if ch.cfg.PingInterval > 0 {
		ticker := time.NewTicker(ch.cfg.PingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(ch.cfg.WriteTimeout))
			conn.Close()
			return
		case <-tick:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ch.cfg.WriteTimeout)); err != nil {
				ch.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}
