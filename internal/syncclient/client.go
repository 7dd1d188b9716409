package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lunch-order/internal/domain"
)

const (
	DefaultPollInterval = 30 * time.Second
	defaultPollLimit    = 50
)

type Config struct {
	BaseURL      string
	AccessToken  string
	PollInterval time.Duration
	PollLimit    int
	// OnUpdate, if set, receives the full view after every change.
	OnUpdate func(items []domain.Notification)
}

// Client keeps a View in sync with the server. It prefers the event stream
// and falls back to polling while the stream is unavailable.
type Client struct {
	cfg        Config
	view       *View
	httpClient *http.Client
	// streamClient has no timeout; the stream stays open indefinitely.
	streamClient *http.Client
	logger       *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollLimit <= 0 {
		cfg.PollLimit = defaultPollLimit
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:  cfg,
		view: NewView(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
		logger:       logger.With("component", "syncclient"),
	}
}

func (c *Client) View() *View {
	return c.view
}

// Run streams until ctx ends. Whenever the stream drops it polls once,
// waits one poll interval and then tries the stream again.
func (c *Client) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		err := c.Stream(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("notification stream unavailable, polling", "error", err)

		if err := c.Poll(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("notification poll failed", "error", err)
		}

		timer.Reset(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Poll fetches the latest list and replaces the view with it.
func (c *Client) Poll(ctx context.Context) error {
	var body struct {
		Data []domain.Notification `json:"data"`
	}
	path := "/api/v1/notifications?limit=" + strconv.Itoa(c.cfg.PollLimit)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return err
	}

	c.view.Replace(body.Data)
	c.publish()
	return nil
}

// Stream opens the event stream and merges every frame into the view. It
// returns when the stream ends, fails or ctx is cancelled.
func (c *Client) Stream(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/notifications/stream")
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	err = readEvents(resp.Body, func(data []byte) error {
		var frame domain.StreamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("skipping malformed stream frame", "error", err)
			return nil
		}
		c.view.Merge(frame.Notifications)
		c.publish()
		return nil
	})
	if errors.Is(err, io.EOF) {
		return errors.New("stream closed by server")
	}
	return err
}

func (c *Client) publish() {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(c.view.Items())
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
