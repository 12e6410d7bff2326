package rest

import (
	"context"
	"net/http"

	"github.com/kbukum/longscribe/httpclient"
)

// Client sends JSON requests and decodes JSON answers.
type Client struct {
	*httpclient.Client
}

// New creates a Client that asks for JSON on every request.
func New(cfg httpclient.Config) (*Client, error) {
	headers := map[string]string{"Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// Option adjusts one request.
type Option func(*httpclient.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(r *httpclient.Request) {
		if r.Header == nil {
			r.Header = make(map[string]string)
		}
		r.Header[key] = value
	}
}

// WithQuery sets a query parameter.
func WithQuery(key, value string) Option {
	return func(r *httpclient.Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// Response is a decoded answer.
type Response[T any] struct {
	StatusCode int
	Data       T
}

// Get sends a GET and decodes the answer into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...Option) (*Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil, opts)
}

// Post sends body as JSON and decodes the answer into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...Option) (*Response[T], error) {
	return do[T](ctx, c, http.MethodPost, path, body, opts)
}

// do decodes error answers too when they are valid JSON, returning them
// with the *httpclient.StatusError.
func do[T any](ctx context.Context, c *Client, method, path string, body any, opts []Option) (*Response[T], error) {
	req := httpclient.Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if resp == nil {
		return nil, err
	}
	out := &Response[T]{StatusCode: resp.StatusCode}
	if len(resp.Body) == 0 {
		return out, err
	}
	if decodeErr := resp.JSON(&out.Data); decodeErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, httpclient.ServiceError(c.Name(), decodeErr)
	}
	return out, err
}
