package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	apperrors "github.com/kbukum/longscribe/errors"
)

// Client sends requests to one service.
type Client struct {
	http *http.Client
	cfg  Config
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		cfg: cfg,
	}, nil
}

func (c *Client) Name() string    { return c.cfg.Name }
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Close releases idle keep-alive connections.
func (c *Client) Close(_ context.Context) error {
	c.http.CloseIdleConnections()
	return nil
}

// Do sends req and reads the whole body. A non-2xx answer returns both the
// Response and a *StatusError. A request that gets no answer fails with
// CONNECTION_FAILED, or with the context error when ctx ended.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.cfg.Name, ctxErr)
		}
		return nil, apperrors.ConnectionFailed(c.cfg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, apperrors.ConnectionFailed(c.cfg.Name, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.cfg.MaxResponseBytes {
		return nil, apperrors.ExternalServiceError(c.cfg.Name,
			fmt.Errorf("response body exceeds %d bytes", c.cfg.MaxResponseBytes))
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if !out.IsSuccess() {
		return out, &StatusError{Service: c.cfg.Name, StatusCode: resp.StatusCode, Body: body}
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("%s: encode body: %w", c.cfg.Name, err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, apperrors.InvalidInput("url", err.Error())
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if c.cfg.Token != "" && !req.Anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

func (c *Client) resolve(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
