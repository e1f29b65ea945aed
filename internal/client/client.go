// Package client provides a typed Go client for the bakery API,
// used by the production summary board and by external tooling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/production"
)

const defaultTimeout = 15 * time.Second

// Client talks to a running bakery API instance
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a client against the given base URL, e.g.
// "https://api.hornosanmarino.ec"
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and stores the returned token on the client
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// Summary fetches the aggregated production board. With no buckets the
// server returns all four; with buckets it returns only those.
func (c *Client) Summary(ctx context.Context, buckets ...production.Bucket) (*domain.SummaryResponse, error) {
	path := "/api/v1/production/summary"
	if len(buckets) > 0 {
		q := url.Values{}
		for _, b := range buckets {
			q.Add("bucket", string(b))
		}
		path += "?" + q.Encode()
	}

	var resp domain.SummaryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AllOrders fetches the raw per-order production view
func (c *Client) AllOrders(ctx context.Context) ([]domain.ProductionTaskDTO, error) {
	var tasks []domain.ProductionTaskDTO
	if err := c.do(ctx, http.MethodGet, "/api/v1/production/all-orders", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// RegisterProgress submits produced quantities for one or more products
func (c *Client) RegisterProgress(ctx context.Context, req *domain.RegisterProgressRequest) (*domain.RegisterProgressResponse, error) {
	var resp domain.RegisterProgressResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/production/progress", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VoidOrder cancels an order on the production board
func (c *Client) VoidOrder(ctx context.Context, orderID uuid.UUID) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/production/"+orderID.String()+"/void", nil, nil)
}

// UpdateTask patches a single order's stage or notes
func (c *Client) UpdateTask(ctx context.Context, orderID uuid.UUID, req *domain.UpdateTaskRequest) (*domain.ProductionTaskDTO, error) {
	var task domain.ProductionTaskDTO
	if err := c.do(ctx, http.MethodPatch, "/api/v1/production/"+orderID.String(), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr domain.APIError
		message := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			if apiErr.Detail != "" {
				message = apiErr.Detail
			} else if apiErr.Title != "" {
				message = apiErr.Title
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
