package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentFetcher is implemented by *Client and can be faked in tests.
type PaymentFetcher interface {
	FetchPayment(ctx context.Context, id string) (Payment, error)
	Ping(ctx context.Context) error
}

var _ PaymentFetcher = (*Client)(nil)

// Client talks to the ledger admin HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
}

const (
	defaultBaseURL        = "http://127.0.0.1:8080"
	defaultUserAgent      = "ledgerview/0.1"
	defaultRequestTimeout = 10 * time.Second
	maxErrorBody          = 512
)

// Options tune a Client.
type Options struct {
	Token   string
	Timeout time.Duration
}

// NewClient builds a Client for the API at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		token:     strings.TrimSpace(opts.Token),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchPayment retrieves a single payment record.
func (c *Client) FetchPayment(ctx context.Context, id string) (Payment, error) {
	if c == nil {
		return Payment{}, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Payment{}, fmt.Errorf("payment id required")
	}
	rel := &url.URL{
		Path:    "/api/payments/" + id,
		RawPath: "/api/payments/" + url.PathEscape(id),
	}
	var payload Payment
	if err := c.do(ctx, http.MethodGet, rel, &payload); err != nil {
		return Payment{}, err
	}
	return payload, nil
}

// Ping checks the API health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodGet, &url.URL{Path: "/api/health"}, nil)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Path:    rel.Path,
			Code:    resp.StatusCode,
			Message: apiMessage(body),
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiMessage extracts {"error": "..."} bodies, falling back to raw text.
func apiMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
