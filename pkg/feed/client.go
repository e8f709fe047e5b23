package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn abstracts the gorilla/websocket.Conn for testability
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
}

// Dialer abstracts websocket dialing for testability
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (Conn, *http.Response, error)
}

type gorillaDialer struct {
	dialer *websocket.Dialer
}

// NewGorillaDialer creates a production WebSocket dialer using gorilla/websocket
func NewGorillaDialer(config Config) Dialer {
	return &gorillaDialer{
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
	}
}

func (g *gorillaDialer) DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (Conn, *http.Response, error) {
	conn, resp, err := g.dialer.DialContext(ctx, urlStr, requestHeader)
	if err != nil {
		return nil, resp, err
	}
	return conn, resp, nil
}

// Client is a reconnecting WebSocket message source. On every successful
// (re)connect it replays the registered subscription payloads, so consumers
// keep receiving the channels they asked for across connection drops.
type Client struct {
	config  Config
	dialer  Dialer
	backoff Backoff
	logger  *zap.Logger

	mu            sync.Mutex
	conn          Conn
	connected     bool
	subscriptions []interface{}

	messages chan []byte
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewClient creates a feed client. The dialer is injectable so tests can run
// without a network.
func NewClient(cfg Config, dialer Dialer, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feed config: %w", err)
	}
	return &Client{
		config:   cfg,
		dialer:   dialer,
		backoff:  NewExponentialBackoff(cfg.ReconnectInitialDelay, cfg.ReconnectMaxDelay, cfg.MaxReconnects),
		logger:   logger,
		messages: make(chan []byte, cfg.MessageBuffer),
	}, nil
}

// Subscribe registers a payload replayed after every (re)connect.
func (c *Client) Subscribe(payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions = append(c.subscriptions, payload)
}

// Start dials the feed and begins the read loop.
func (c *Client) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if err := c.connect(runCtx); err != nil {
		cancel()
		return err
	}

	c.wg.Add(1)
	go c.readLoop(runCtx)
	return nil
}

// Stop closes the connection and the message channel.
func (c *Client) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}

	c.wg.Wait()
	close(c.messages)
	return err
}

// Messages returns the stream of raw frames from the feed.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// Send writes a JSON payload to the feed.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("feed not connected")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// IsConnected reports whether the client currently holds a live connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) connect(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.config.URL, err)
	}

	conn.SetReadLimit(c.config.MaxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	subs := make([]interface{}, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.mu.Unlock()

	c.logger.Info("Feed connected", zap.String("url", c.config.URL))

	for _, payload := range subs {
		if err := c.Send(payload); err != nil {
			c.logger.Error("Failed to replay subscription", zap.Error(err))
		}
	}

	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}

			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()

			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		select {
		case c.messages <- data:
		case <-ctx.Done():
			return
		default:
			c.logger.Warn("Message buffer full, dropping frame")
		}
	}
}

// reconnect retries with exponential backoff until it succeeds, the attempt
// budget is spent, or the context ends.
func (c *Client) reconnect(ctx context.Context) bool {
	for attempt := 1; attempt <= c.backoff.MaxAttempts(); attempt++ {
		delay := c.backoff.NextDelay(attempt)
		c.logger.Info("Reconnecting to feed",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Warn("Reconnect attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return true
	}

	c.logger.Error("Max reconnection attempts reached",
		zap.Int("max_attempts", c.backoff.MaxAttempts()))
	return false
}
