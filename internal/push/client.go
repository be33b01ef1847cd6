// Package push keeps a websocket subscription to PaissaDB's event stream
// and dispatches the pushed plot events. The client reconnects on unclean
// closes with linearly growing jittered delays, and stops trying after five
// consecutive failures rather than hammering a struggling server.
package push

import (
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"paissa.dev/internal/protocol"
)

// Handler receives decoded push events. Implementations must not block;
// calls arrive on the read-loop goroutine.
type Handler interface {
	OnPlotOpen(protocol.OpenPlotDetail)
	OnPlotUpdate(protocol.PlotUpdate)
	OnPlotSold(protocol.SoldPlotDetail)
}

// ConnState is the connection lifecycle state.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateOpen
	StateReconnecting
)

const (
	maxReconnectAttempts = 5

	reconnectBaseMinMS = 5_000
	reconnectBaseMaxMS = 15_000

	// the server sends 1012 when it restarts; that is an invitation to
	// come back, not a goodbye
	closeServiceRestart = 1012
)

// Config configures a Client.
type Config struct {
	// URL is the full websocket route, including any ?jwt= auth.
	URL string
	// TokenSource, when set, returns a fresh auth token appended to the
	// URL as ?jwt= on every (re)connect.
	TokenSource func() string

	Handler Handler
	Logger  *log.Logger

	// Dial overrides the websocket dialer. Test hook.
	Dial func(url string) (*websocket.Conn, error)
	// ReconnectDelay returns the wait before reconnect attempt n (1-based).
	// Test hook; the default is U(5s, 15s) · n.
	ReconnectDelay func(attempt int) time.Duration
}

// Client owns one websocket. Construction starts the first connect in the
// background; Close tears everything down with a graceful 1000.
type Client struct {
	cfg Config

	mu       sync.Mutex
	state    ConnState
	conn     *websocket.Conn
	attempts int
	retry    *time.Timer
	disposed bool

	wg sync.WaitGroup
}

// New builds the client and starts connecting. It does not block.
func New(cfg Config) *Client {
	if cfg.Dial == nil {
		cfg.Dial = func(url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			return conn, err
		}
	}
	if cfg.ReconnectDelay == nil {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	c := &Client{cfg: cfg}
	c.connectAsync()
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) connectAsync() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connect()
	}()
}

func (c *Client) connect() {
	url := c.cfg.URL
	if c.cfg.TokenSource != nil {
		url += "?jwt=" + c.cfg.TokenSource()
	}
	conn, err := c.cfg.Dial(url)
	if err != nil {
		c.printf("websocket dial failed: %v", err)
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.mu.Unlock()

	c.printf("websocket connected")
	c.readLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			disposed := c.disposed
			c.conn = nil
			c.mu.Unlock()
			if disposed {
				return
			}
			// clean goodbyes end the session; 1012 and everything
			// unclean trigger a reconnect
			if ce, ok := err.(*websocket.CloseError); ok &&
				(ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway) {
				c.printf("websocket closed (%d)", ce.Code)
				c.setState(StateDisconnected)
				return
			}
			c.printf("websocket closed unexpectedly: %v", err)
			c.scheduleReconnect()
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	msg, err := protocol.DecodeBase(data)
	if err != nil {
		c.printf("dropping unparseable frame: %v", err)
		return
	}
	if err := protocol.ValidatePayload(msg.Type, msg.Data); err != nil {
		c.printf("dropping invalid %s frame: %v", msg.Type, err)
		return
	}
	switch msg.Type {
	case protocol.TypePlotOpen:
		var d protocol.OpenPlotDetail
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			c.printf("dropping plot_open frame: %v", err)
			return
		}
		c.cfg.Handler.OnPlotOpen(d)
	case protocol.TypePlotUpdate:
		var d protocol.PlotUpdate
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			c.printf("dropping plot_update frame: %v", err)
			return
		}
		c.cfg.Handler.OnPlotUpdate(d)
	case protocol.TypePlotSold:
		var d protocol.SoldPlotDetail
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			c.printf("dropping plot_sold frame: %v", err)
			return
		}
		c.cfg.Handler.OnPlotSold(d)
	case protocol.TypePing:
		// liveness only
	default:
		c.printf("got unknown push message type %q", msg.Type)
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.attempts++
	if c.attempts > maxReconnectAttempts {
		c.state = StateDisconnected
		c.printf("websocket gave up after %d reconnect attempts", maxReconnectAttempts)
		return
	}
	c.state = StateReconnecting
	delay := c.cfg.ReconnectDelay(c.attempts)
	c.printf("websocket reconnect attempt %d in %v", c.attempts, delay)
	if c.retry != nil {
		c.retry.Stop()
	}
	c.retry = time.AfterFunc(delay, c.connectAsync)
}

// defaultReconnectDelay grows linearly with the attempt number, with
// enough jitter that a restarting server is not hit by every client at
// once.
func defaultReconnectDelay(attempt int) time.Duration {
	ms := reconnectBaseMinMS + rand.Intn(reconnectBaseMaxMS-reconnectBaseMinMS)
	return time.Duration(ms*attempt) * time.Millisecond
}

// Close sends a graceful close, cancels any pending reconnect and waits for
// the read loop to exit. Safe to call once.
func (c *Client) Close() {
	c.mu.Lock()
	c.disposed = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), deadline)
		_ = conn.Close()
	}
	c.wg.Wait()
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) printf(format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}
