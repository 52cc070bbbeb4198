package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// RequestOptions describes a single request against the primary backend.
type RequestOptions struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	// Body is JSON-encoded when non-nil and RawBody is nil.
	Body any
	// RawBody is sent as-is (e.g. multipart form data). ContentType must
	// be set by the caller; the client does not force application/json
	// so the transport keeps its own boundary.
	RawBody     io.Reader
	ContentType string
	// Timeout overrides the client default for this request.
	Timeout time.Duration
}

// Response is a successful (2xx) response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// IsJSON reports whether the response content type indicated JSON.
	IsJSON bool
}

// Decode unmarshals a JSON response body into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON {
		return fmt.Errorf("response is not JSON (content-type %q)", r.Header.Get("Content-Type"))
	}
	return json.Unmarshal(r.Body, v)
}

// Client is a generic HTTP client for the primary backend: URL building,
// timeout-driven cancellation, interceptor chains, and a typed error
// taxonomy. It carries no retry policy; retries are the caller's concern.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// New returns a Client for the given base URL. A zero timeout falls back
// to the default of 30s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) buildURL(path string, query map[string]string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) == 0 {
		return u
	}
	values := url.Values{}
	for key, value := range query {
		if value == "" {
			continue
		}
		values.Set(key, value)
	}
	if encoded := values.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// Do runs the interceptor chain, sends the request, and maps failures to
// *APIError, *NetworkError, or *TimeoutError.
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if err := c.runRequestInterceptors(&opts); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	contentType := ""
	switch {
	case opts.RawBody != nil:
		body = opts.RawBody
		contentType = opts.ContentType
	case opts.Body != nil:
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, c.buildURL(opts.Path, opts.Query), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return nil, &NetworkError{Err: err}
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(data, isJSON),
			Body:    data,
		}
	}

	response := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
		IsJSON: isJSON,
	}
	if err := c.runResponseInterceptors(response); err != nil {
		return nil, err
	}
	return response, nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte, isJSON bool) string {
	if isJSON {
		var parsed struct {
			Message string `json:"message"`
			Error   *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			if parsed.Message != "" {
				return parsed.Message
			}
			if parsed.Error != nil && parsed.Error.Message != "" {
				return parsed.Error.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// Get issues a GET and decodes the JSON response into out (unless out is nil).
func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.Do(ctx, RequestOptions{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Post issues a POST with a JSON body and decodes the response into out (unless nil).
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	resp, err := c.Do(ctx, RequestOptions{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// Put issues a PUT with a JSON body and decodes the response into out (unless nil).
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	resp, err := c.Do(ctx, RequestOptions{Method: http.MethodPut, Path: path, Body: body})
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, RequestOptions{Method: http.MethodDelete, Path: path})
	return err
}
