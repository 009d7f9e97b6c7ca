package audience

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client calls the audience HTTP API. Safe for concurrent use.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("audience: invalid base url %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: u, apiKey: cfg.apiKey, http: hc, obs: obs}, nil
}

// Recommend ranks profiles against req.Query.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (_ *Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if req.TopK < 0 {
		return nil, ErrInvalidTopK
	}

	var rec Recommendation
	hdr, err := c.do(ctx, http.MethodPost, "/v1/recommendations", req, &rec)
	if err != nil {
		return nil, err
	}
	rec.EmbeddingTokens = -1
	if v := hdr.Get("X-Embedding-Tokens"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			rec.EmbeddingTokens = n
		}
	}
	return &rec, nil
}

// Criteria returns the constraints the server extracts from query.
func (c *Client) Criteria(ctx context.Context, query string) (_ Criteria, err error) {
	start := time.Now()
	defer func() { c.obs.observe("criteria", start, err) }()

	var out Criteria
	_, err = c.do(ctx, http.MethodPost, "/v1/criteria", map[string]string{"query": query}, &out)
	return out, err
}

// Health returns the server health report. A degraded server answers 503
// with a report body; that is returned without error.
func (c *Client) Health(ctx context.Context) (_ Health, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var out Health
	_, err = c.do(ctx, http.MethodGet, "/health", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && out.Status != "" {
		return out, nil
	}
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (http.Header, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("audience: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("audience: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audience: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("audience: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Code, apiErr.Message = e.Code, e.Message
		}
		// Health reports come with 503 and a regular body.
		if out != nil && resp.StatusCode == http.StatusServiceUnavailable {
			_ = json.Unmarshal(data, out)
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("audience: decode response: %w", err)
		}
	}
	return resp.Header, nil
}
