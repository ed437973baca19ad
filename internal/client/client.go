// ABOUTME: Client for the HTTP control API of a running player
// ABOUTME: Fetches status, requests a stop and follows the WebSocket status feed
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config holds client configuration
type Config struct {
	// Addr is "host:port" or a base URL such as "http://host:port"
	Addr    string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to one player
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client for the player at config.Addr
func NewClient(config Config) (*Client, error) {
	addr := strings.TrimSpace(config.Addr)
	if addr == "" {
		return nil, fmt.Errorf("no player address")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid player address %q: %w", config.Addr, err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/status")

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		logger: logger.Named("client"),
	}, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

// Status fetches the current session status
func (c *Client) Status(ctx context.Context) (binaural.Status, error) {
	var st binaural.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/status"), nil)
	if err != nil {
		return st, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return st, fmt.Errorf("get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("get status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// Stop asks the player to end its session
func (c *Client) Stop(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/stop"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("stop: %s", resp.Status)
	}
	return nil
}

// Watch follows the status feed, calling fn for every update, until the
// session reaches a terminal state, the connection drops or ctx is done.
func (c *Client) Watch(ctx context.Context, fn func(binaural.Status)) error {
	u := *c.base
	u.Scheme = "ws"
	if c.base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"

	c.logger.Debug("connecting", zap.String("url", u.String()))
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var st binaural.Status
		if err := conn.ReadJSON(&st); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read status: %w", err)
		}
		fn(st)
		if st.State == binaural.StateDone.String() || st.State == binaural.StateFailed.String() {
			return nil
		}
	}
}
