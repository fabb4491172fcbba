// Package feed streams intraday quote frames from a DSE quote gateway
// over WebSocket.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dsex-insights/internal/domain"
	"dsex-insights/internal/observability"
)

// ClientConfig configures WebSocket client behavior.
type ClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// Symbols limits the stream to the given trading codes.
	// Empty means every listed instrument.
	Symbols []string
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Client implements a quote stream client using gorilla/websocket.
// Quotes are delivered on a single buffered channel; sends block rather
// than drop frames, so a stalled consumer stalls the reader.
type Client struct {
	endpoint string
	config   ClientConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	quotes chan domain.PriceRow

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewClient creates a new quote stream client, connects to the endpoint
// and subscribes to the configured symbols.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig) (*Client, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		quotes:   make(chan domain.PriceRow, 1024),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	if err := c.subscribe(); err != nil {
		c.connMu.Lock()
		c.conn.Close()
		c.connMu.Unlock()
		return nil, err
	}

	// Start reader goroutine
	c.wg.Add(1)
	go c.readLoop()

	// Start ping goroutine
	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Quotes returns the stream of decoded quote frames. The channel closes
// when the client is closed.
func (c *Client) Quotes() <-chan domain.PriceRow {
	return c.quotes
}

// connect establishes WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// subscribe sends the subscription frame for the configured symbols.
// Called on connect and again after every reconnect.
func (c *Client) subscribe() error {
	req := subscribeRequest{
		Action:  "subscribe",
		Channel: "quotes",
		Symbols: c.config.Symbols,
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the WebSocket connection and the quote channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.quotes)
	return nil
}

// readLoop reads messages from WebSocket and dispatches quote frames.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			// Increase delay for next reconnect (exponential backoff)
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	observability.RecordFeedReconnect()

	// Wait before reconnecting
	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	// Close existing connection
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	// Attempt reconnect
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	if err := c.subscribe(); err != nil {
		log.Printf("[feed] resubscribe failed: %v", err)
	}
}

// handleMessage processes incoming WebSocket message.
func (c *Client) handleMessage(message []byte) {
	var frame quoteFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		observability.RecordFeedDecodeError()
		log.Printf("[feed] decode frame: %v", err)
		return
	}

	switch frame.Type {
	case "quote":
		var row domain.PriceRow
		if err := json.Unmarshal(frame.Data, &row); err != nil {
			observability.RecordFeedDecodeError()
			log.Printf("[feed] decode quote: %v", err)
			return
		}
		observability.RecordFeedQuote()

		// Block until we can send - never drop quotes
		select {
		case c.quotes <- row:
		case <-c.done:
		}
	case "error":
		log.Printf("[feed] gateway error: %s", string(frame.Data))
	default:
		// Heartbeats and acks carry no payload worth dispatching.
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// Wire frame types

type subscribeRequest struct {
	Action  string   `json:"action"`
	Channel string   `json:"channel"`
	Symbols []string `json:"symbols,omitempty"`
}

type quoteFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
