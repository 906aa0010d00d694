// Package cartapi is the HTTP client for the remote cart service, the
// authoritative owner of cart line existence and identity.
package cartapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/remote"
)

// maxBodyBytes caps response body reads; the item list of a single cart is
// far below this.
const maxBodyBytes = 1 << 20

// Config holds the cart service client configuration.
type Config struct {
	// BaseURL is the cart service root, e.g. https://api.example.com.
	BaseURL string
	// Timeout bounds a single round trip. Zero means 15s.
	Timeout time.Duration
	// Transport overrides the underlying RoundTripper. Nil means the
	// default transport wrapped with otelhttp instrumentation.
	Transport http.RoundTripper
}

// Client talks to the remote cart service.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a cart service client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("cart service base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// Fetch returns the current server-side item list. A 404 is reported as
// remote.ErrNotFound so callers can treat a missing cart as empty.
func (c *Client) Fetch(ctx context.Context) ([]cart.ServerItem, error) {
	body, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return decodeItemList(body)
}

// AddItem submits a new cart line built from the draft and returns the full
// updated item list.
func (c *Client) AddItem(ctx context.Context, draft cart.Draft) ([]cart.ServerItem, error) {
	payload := encodeAddItem(draft)
	body, err := c.do(ctx, http.MethodPost, "/cart/items", payload)
	if err != nil {
		return nil, err
	}
	return decodeItemList(body)
}

// RemoveItem deletes the line with the given server identifier and returns
// the full updated item list. An empty or no-content response means the
// cart is now empty.
func (c *Client) RemoveItem(ctx context.Context, serverID string) ([]cart.ServerItem, error) {
	body, err := c.do(ctx, http.MethodDelete, "/cart/items/"+serverID, nil)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	return decodeItemList(body)
}

// Clear deletes the whole cart.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/cart", nil)
	return err
}

// do runs one round trip and maps the outcome: 2xx returns the body,
// 404 returns remote.ErrNotFound, other statuses become a RejectionError
// carrying the server message, and transport failures become a
// TransportError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &remote.TransportError{Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &remote.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &remote.TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, remote.ErrNotFound
	default:
		return nil, &remote.RejectionError{
			Status:  resp.StatusCode,
			Message: remote.ErrorMessage(body, resp.Status),
		}
	}
}
