// Package ingest delivers housing observations to PaissaDB in debounced
// batches. Records queue up while the user flips through wards; 1.2 s after
// the last submission the whole queue goes out as one JSON array. Requests
// authenticate with the session token handed out by /hello and retry with
// exponential backoff before giving up and telling the user once.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"

	"paissa.dev/internal/protocol"
)

// Sink receives the rare user-visible failure line.
type Sink interface {
	PrintError(message string)
}

var (
	// ErrMissingToken means an authenticated call ran without a session
	// token; /hello has to succeed first.
	ErrMissingToken = errors.New("ingest: no session token")
	// ErrRejected means the server refused the session token.
	ErrRejected = errors.New("ingest: session token rejected")
)

const (
	defaultDebounce    = 1200 * time.Millisecond
	defaultHTTPTimeout = 10 * time.Second
	defaultRetries     = 5

	connectErrorLine = "There was an error connecting to PaissaDB."
)

// Config configures a Client. Zero values take the documented defaults.
type Config struct {
	BaseURL string
	Sink    Sink
	Logger  *log.Logger

	HTTPTimeout time.Duration
	Debounce    time.Duration
	Retries     int

	// DisableGzip turns off the gzip Content-Encoding on batch bodies.
	DisableGzip bool

	// Jitter returns a random backoff component in [lo, hi) ms. Test hook.
	Jitter func(lo, hi int) int
	// Sleep waits for d or until ctx is done. Test hook.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client is the batched ingest pipeline. Submit never blocks; all I/O runs
// on background goroutines, and at most one drain is in flight at a time.
type Client struct {
	cfg  Config
	http *http.Client

	mu       sync.Mutex
	queue    []any
	timer    *time.Timer
	draining bool

	token      atomic.Value // string
	needsHello atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New builds a Client. The base URL must point at the PaissaDB API root.
func New(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ingest: empty base url")
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Jitter == nil {
		cfg.Jitter = func(lo, hi int) int { return lo + rand.Intn(hi-lo) }
	}
	if cfg.Sleep == nil {
		cfg.Sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		ctx:    ctx,
		cancel: cancel,
	}
	c.token.Store("")
	c.needsHello.Store(true)
	return c, nil
}

// NeedsHello reports whether a /hello handshake is pending.
func (c *Client) NeedsHello() bool { return c.needsHello.Load() }

// SetNeedsHello arms the handshake latch; the coordinator calls this on
// login-state changes.
func (c *Client) SetNeedsHello() { c.needsHello.Store(true) }

// SessionToken returns the current session token, empty before /hello.
func (c *Client) SessionToken() string { return c.token.Load().(string) }

// Hello registers the player with the server and stores the returned
// session token. Safe to call repeatedly.
func (c *Client) Hello(ctx context.Context, player protocol.HelloRequest) error {
	body, err := json.Marshal(player)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/hello", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest: POST /hello returned %s", resp.Status)
	}
	var hr protocol.HelloResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return fmt.Errorf("ingest: bad /hello response: %w", err)
	}
	if hr.SessionToken == "" {
		return fmt.Errorf("ingest: /hello returned no session token")
	}
	c.token.Store(hr.SessionToken)
	c.needsHello.Store(false)
	c.printf("hello ok, session established")
	return nil
}

// Submit queues one record and (re)arms the trailing debounce timer. It
// never blocks. While a drain is in flight the timer stays unarmed; the
// drain re-arms it if more records arrived meanwhile.
func (c *Client) Submit(record any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, record)
	if c.draining {
		return
	}
	c.armTimerLocked()
}

// armTimerLocked cancels and reschedules the single debounce timer cell.
func (c *Client) armTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, c.fire)
}

func (c *Client) fire() {
	c.mu.Lock()
	if c.draining || len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.queue
	c.queue = nil
	c.draining = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.drain(batch)
	}()
}

func (c *Client) drain(batch []any) {
	if err := c.postBatch(c.ctx, batch); err != nil {
		c.printf("ingest batch of %d dropped: %v", len(batch), err)
		if c.cfg.Sink != nil && !errors.Is(err, context.Canceled) {
			c.cfg.Sink.PrintError(connectErrorLine)
		}
	}

	c.mu.Lock()
	c.draining = false
	if len(c.queue) > 0 {
		c.armTimerLocked()
	}
	c.mu.Unlock()
}

// postBatch sends one JSON array to /ingest, retrying with backoff. On
// final failure the batch is gone; nothing is persisted.
func (c *Client) postBatch(ctx context.Context, batch []any) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	encoded, gzipped, err := c.encodeBody(body)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.Retries; attempt++ {
		if attempt > 0 {
			// exponential backoff: 2s, 4s, ... plus 0.5-1.5s of jitter
			delay := time.Duration(2000*attempt+c.cfg.Jitter(500, 1500)) * time.Millisecond
			c.printf("ingest attempt %d failed, waiting %v before retry", attempt, delay)
			if err := c.cfg.Sleep(ctx, delay); err != nil {
				return err
			}
		}
		lastErr = c.postOnce(ctx, encoded, gzipped)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) postOnce(ctx context.Context, body []byte, gzipped bool) error {
	token := c.SessionToken()
	if token == "" {
		c.needsHello.Store(true)
		return ErrMissingToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if gzipped {
		req.Header.Set("Content-Encoding", "gzip")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		// stale session; next observation cycle will re-hello
		c.token.Store("")
		c.needsHello.Store(true)
		return ErrRejected
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest: POST /ingest returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func (c *Client) encodeBody(body []byte) ([]byte, bool, error) {
	if c.cfg.DisableGzip {
		return body, false, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, false, err
	}
	if err := zw.Close(); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

// GetDistrict fetches the open-plot detail for one district. No retries;
// errors propagate to the caller.
func (c *Client) GetDistrict(ctx context.Context, worldID uint32, districtID uint16) (protocol.DistrictDetail, error) {
	var detail protocol.DistrictDetail
	url := fmt.Sprintf("%s/worlds/%d/%d", c.cfg.BaseURL, worldID, districtID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return detail, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return detail, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return detail, fmt.Errorf("ingest: GET %s returned %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return detail, fmt.Errorf("ingest: bad district detail: %w", err)
	}
	return detail, nil
}

// Close flushes whatever is still queued with a single best-effort POST,
// then aborts any in-flight retry loop.
func (c *Client) Close(ctx context.Context) {
	c.once.Do(func() {
		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()

		if len(batch) > 0 {
			if body, err := json.Marshal(batch); err == nil {
				if encoded, gzipped, err := c.encodeBody(body); err == nil {
					if err := c.postOnce(ctx, encoded, gzipped); err != nil {
						c.printf("final flush of %d records failed: %v", len(batch), err)
					}
				}
			}
		}

		c.cancel()
		c.wg.Wait()
	})
}

func (c *Client) printf(format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}
