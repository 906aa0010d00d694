// Package couponapi is the HTTP client for the remote coupon validation
// service. The service owns all eligibility rules (minimum purchase, expiry,
// usage limits); this client only round-trips the code and the subtotal.
package couponapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/scentcart/internal/domain/coupon"
	"github.com/xenking/scentcart/internal/remote"
)

const maxBodyBytes = 1 << 20

// Config holds the coupon service client configuration.
type Config struct {
	// BaseURL is the coupon service root.
	BaseURL string
	// Timeout bounds a single round trip. Zero means 10s.
	Timeout time.Duration
	// Transport overrides the underlying RoundTripper. Nil means the
	// default transport wrapped with otelhttp instrumentation.
	Transport http.RoundTripper
}

// Client talks to the remote coupon service.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a coupon service client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("coupon service base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
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

// Validate round-trips the code and the current cart subtotal. A rejection
// (invalid code, below minimum purchase, expired) comes back as a
// *remote.RejectionError carrying the server's reason.
func (c *Client) Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (coupon.Coupon, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Str(code)
	e.FieldStart("cartTotal")
	e.RawStr(cartTotal.String())
	e.ObjEnd()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/coupons/validate", bytes.NewReader(e.Bytes()))
	if err != nil {
		return coupon.Coupon{}, &remote.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return coupon.Coupon{}, &remote.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return coupon.Coupon{}, &remote.TransportError{Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		out, err := decodeCoupon(body)
		if err != nil {
			return coupon.Coupon{}, &remote.TransportError{Err: err}
		}
		return out, nil
	case resp.StatusCode == http.StatusNotFound:
		return coupon.Coupon{}, remote.ErrNotFound
	default:
		return coupon.Coupon{}, &remote.RejectionError{
			Status:  resp.StatusCode,
			Message: remote.ErrorMessage(body, resp.Status),
		}
	}
}

func decodeCoupon(body []byte) (coupon.Coupon, error) {
	var out coupon.Coupon
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			out.ID = v
			return err
		case "code":
			v, err := d.Str()
			out.Code = coupon.NormalizeCode(v)
			return err
		case "discountType":
			v, err := d.Str()
			out.Type = coupon.DiscountType(v)
			return err
		case "value":
			v, err := remote.DecodeDecimal(d)
			out.Value = v
			return err
		case "description":
			v, err := d.Str()
			out.Description = v
			return err
		case "minPurchaseAmount":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := remote.DecodeDecimal(d)
			out.MinPurchaseAmount = v
			return err
		case "expiryDate":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return errors.Wrap(err, "parse expiry date")
			}
			out.ExpiresAt = &ts
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return coupon.Coupon{}, errors.Wrap(err, "decode coupon")
	}
	if out.ID == "" || out.Code == "" || out.Type == "" {
		return coupon.Coupon{}, errors.New("coupon payload missing required fields")
	}
	return out, nil
}
