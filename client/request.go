package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowgrid/flowgrid-go/pkg/logger"
)

type requestOptions struct {
	query      map[string]any
	headers    http.Header
	timeout    time.Duration
	skipAuth   bool
	skipCache  bool
	retries    int
	retriesSet bool
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithQuery serializes the map into the query string. Nil values are
// skipped; everything else is rendered with fmt.Sprint.
func WithQuery(query map[string]any) RequestOption {
	return func(o *requestOptions) { o.query = query }
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// WithTimeout overrides the configured per-request timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// SkipAuth marks the request as unauthenticated: no bearer token is
// attached and a 401 response does not clear stored credentials.
func SkipAuth() RequestOption {
	return func(o *requestOptions) { o.skipAuth = true }
}

// SkipCache bypasses the GET cache for this request.
func SkipCache() RequestOption {
	return func(o *requestOptions) { o.skipCache = true }
}

// WithRetries overrides the configured retry count for this request.
func WithRetries(retries int) RequestOption {
	return func(o *requestOptions) {
		if retries >= 0 {
			o.retries = retries
			o.retriesSet = true
		}
	}
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, opts...)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, opts...)
}

// Do issues a request with a JSON-serialized body and decodes the response
// into out. Endpoint may be a path joined onto the base URL or an absolute
// URL passed through untouched.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...RequestOption) error {
	ro := requestOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	var payload []byte
	contentType := ""
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("client: marshal request body: %w", err)
		}
		contentType = "application/json"
	}

	return c.do(ctx, method, endpoint, payload, contentType, out, ro)
}

// Upload issues a multipart POST with a file part and optional form fields.
// The multipart writer supplies the Content-Type with its boundary.
func (c *Client) Upload(ctx context.Context, endpoint, field, filename string, content io.Reader, fields map[string]string, out any, opts ...RequestOption) error {
	ro := requestOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("client: create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("client: copy file content: %w", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("client: write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("client: finalize multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, endpoint, buf.Bytes(), writer.FormDataContentType(), out, ro)
}

// Health describes the platform health endpoint response.
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// Health queries the health endpoint with a short timeout and one retry.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	err := c.Get(ctx, c.cfg.HealthPath, &h,
		WithTimeout(c.cfg.HealthTimeout),
		WithRetries(1),
		SkipAuth(),
		SkipCache(),
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// HealthCheck reports whether the API is reachable, swallowing any error.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.Health(ctx)
	return err == nil
}

// do runs the full pipeline: cache lookup, retry loop, decode, cache fill.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, contentType string, out any, ro requestOptions) error {
	fullURL, err := c.buildURL(endpoint, ro.query)
	if err != nil {
		return err
	}

	info := RequestInfo{Method: method, URL: fullURL, SkipAuth: ro.skipAuth}

	cacheable := method == http.MethodGet && !ro.skipAuth && !ro.skipCache
	cacheKey := method + ":" + fullURL + ":" + string(payload)

	if cacheable {
		if cached, ok := c.cache.Get(cacheKey); ok {
			c.log.DebugContext(ctx, "api cache hit", "method", method, "url", fullURL)
			return decodeBody(cached, out)
		}
	}

	retries := c.cfg.Retries
	if ro.retriesSet {
		retries = ro.retries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.strategy.NextInterval(attempt)
			c.log.DebugContext(ctx, "retrying request",
				"method", method, "url", fullURL, "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.attempt(ctx, info, payload, contentType, ro)
		if err == nil {
			if cacheable {
				c.cache.Put(cacheKey, result)
			}
			return decodeBody(result, out)
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}

	c.log.DebugContext(ctx, "request failed",
		"method", method, "url", fullURL, logger.Error(lastErr))
	return lastErr
}

// attempt performs a single HTTP exchange including interceptor chains.
func (c *Client) attempt(ctx context.Context, info RequestInfo, payload []byte, contentType string, ro requestOptions) (cachedResponse, error) {
	timeout := c.cfg.Timeout
	if ro.timeout > 0 {
		timeout = ro.timeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, info.Method, info.URL, bodyReader)
	if err != nil {
		return cachedResponse{}, fmt.Errorf("client: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range ro.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	for _, ic := range c.reqInterceptors {
		if ic.OnRequest == nil {
			continue
		}
		if err := ic.OnRequest(reqCtx, info, req); err != nil {
			if ic.OnError != nil {
				err = ic.OnError(reqCtx, info, err)
			}
			return cachedResponse{}, err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return cachedResponse{}, c.runResponseErrorChain(reqCtx, info, err)
	}
	defer resp.Body.Close()

	for _, ic := range c.respInterceptors {
		if ic.OnResponse == nil {
			continue
		}
		if err := ic.OnResponse(reqCtx, info, resp); err != nil {
			return cachedResponse{}, c.runResponseErrorChain(reqCtx, info, err)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cachedResponse{}, c.runResponseErrorChain(reqCtx, info, fmt.Errorf("client: read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseErrorBody(resp, body)
		return cachedResponse{}, c.runResponseErrorChain(reqCtx, info, apiErr)
	}

	return cachedResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

func (c *Client) runResponseErrorChain(ctx context.Context, info RequestInfo, err error) error {
	for _, ic := range c.respInterceptors {
		if ic.OnError != nil {
			err = ic.OnError(ctx, info, err)
		}
	}
	return err
}

// buildURL resolves the final URL: absolute endpoints pass through, paths
// join onto the base URL, and query params append to whatever is present.
func (c *Client) buildURL(endpoint string, query map[string]any) (string, error) {
	full := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		full = strings.TrimSuffix(c.cfg.BaseURL, "/") + endpoint
	}

	if len(query) == 0 {
		return full, nil
	}

	values := url.Values{}
	for key, value := range query {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}

	if encoded := values.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + encoded
	}

	return full, nil
}

// parseErrorBody extracts the typed error shape from a non-2xx body,
// accepting both {message,code,details} and {error} forms as well as
// non-JSON bodies, falling back to the HTTP status text.
func parseErrorBody(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
	}

	var parsed struct {
		Message string         `json:"message"`
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = parsed.Error
		}
		apiErr.Code = parsed.Code
		apiErr.Details = parsed.Details
	}

	if apiErr.Message == "" {
		apiErr.Message = apiErr.StatusText
	}

	return apiErr
}

// decodeBody decodes a response according to its content type. JSON bodies
// carrying a {data} envelope are unwrapped; text requires *string; anything
// else requires *[]byte.
func decodeBody(result cachedResponse, out any) error {
	if out == nil {
		return nil
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = append([]byte(nil), result.body...)
		return nil
	}

	mediaType := result.contentType
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.TrimSpace(mediaType)

	switch {
	case mediaType == "" || mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(result.body, &envelope); err == nil && len(envelope.Data) > 0 {
			return json.Unmarshal(envelope.Data, out)
		}
		if err := json.Unmarshal(result.body, out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
		return nil

	case strings.HasPrefix(mediaType, "text/"):
		s, ok := out.(*string)
		if !ok {
			return fmt.Errorf("client: text response requires *string target, got %T", out)
		}
		*s = string(result.body)
		return nil

	default:
		return fmt.Errorf("client: binary response requires *[]byte target, got %T", out)
	}
}
