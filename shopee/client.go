// Package shopee is a client for the Shopee Affiliate GraphQL API.
package shopee

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultEndpoint = "https://open-api.affiliate.shopee.com.br/graphql"
	maxErrorBody    = 4096
)

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// APIError is returned when the API answers with GraphQL errors.
type APIError struct {
	Errors []GraphQLError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return "shopee graphql error"
	}
	msg := "shopee graphql error: " + e.Errors[0].Message
	if len(e.Errors) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Errors)-1)
	}
	return msg
}

// Client provides signed access to the affiliate API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	appID      string
	secret     string
	limiter    *rate.Limiter
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets a custom GraphQL endpoint (for testing).
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit paces requests to rps per second with the given burst.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client for the given affiliate credentials.
func NewClient(appID, secret string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   defaultEndpoint,
		appID:      appID,
		secret:     secret,
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sign computes the request signature: hex(sha256(appID + timestamp + payload + secret)).
func Sign(appID, secret, payload string, timestamp int64) string {
	sum := sha256.Sum256([]byte(appID + strconv.FormatInt(timestamp, 10) + payload + secret))
	return hex.EncodeToString(sum[:])
}

// AuthorizationHeader builds the Authorization header value for payload.
func AuthorizationHeader(appID, secret, payload string, timestamp int64) string {
	return fmt.Sprintf("SHA256 Credential=%s, Timestamp=%d, Signature=%s",
		appID, timestamp, Sign(appID, secret, payload, timestamp))
}

// do posts query and decodes the "data" member into out.
func (c *Client) do(ctx context.Context, query string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", AuthorizationHeader(c.appID, c.secret, string(payload), c.now().Unix()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post graphql: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []GraphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &APIError{Errors: envelope.Errors}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
