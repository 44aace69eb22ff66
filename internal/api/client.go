package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the typed boundary to the remote provisioning API. It holds no
// state beyond connection configuration; every lifecycle fact comes from the
// server on each call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientConfig holds connection settings for the provisioning API.
type ClientConfig struct {
	BaseURL string
	Token   string // optional bearer token
	Timeout time.Duration
}

// NewClient creates a provisioning API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("provisioning api URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      cfg.Token,
	}, nil
}

// List fetches every store the control plane tracks.
func (c *Client) List(ctx context.Context) ([]Store, error) {
	var stores []Store
	if err := c.doJSON(ctx, "list", http.MethodGet, "/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// Get fetches a single store by id. Returns ErrStoreNotFound (wrapped in an
// APIError) when the id is unknown or the store is already gone.
func (c *Client) Get(ctx context.Context, id string) (*Store, error) {
	var store Store
	if err := c.doJSON(ctx, "get", http.MethodGet, "/stores/"+id, nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// Create provisions a new store. The response carries the initial admin
// credentials; this is the only time the server ever discloses them, so the
// caller must hand them to the disclosure controller immediately.
func (c *Client) Create(ctx context.Context, name string, engine Engine) (*CreateResult, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	body := map[string]string{
		"name":   name,
		"engine": string(engine),
	}

	var result CreateResult
	if err := c.doJSON(ctx, "create", http.MethodPost, "/stores", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete requests teardown of a store. The server treats repeated deletes of
// an already-deleting or deleted id as a success.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete", http.MethodDelete, "/stores/"+id, nil, nil)
}

// AuditLog fetches the provisioning timeline for a store, server-ordered by
// ascending timestamp.
func (c *Client) AuditLog(ctx context.Context, id string) ([]AuditLogEntry, error) {
	var entries []AuditLogEntry
	if err := c.doJSON(ctx, "audit", http.MethodGet, "/stores/"+id+"/audit", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Ping probes the API root. Used by the doctor command.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "ping", http.MethodGet, "/stores", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, reqBody any, dst any) error {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(op, resp)
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &APIError{Op: op, Message: fmt.Sprintf("failed to decode response: %v", err), Err: err}
	}
	return nil
}

// apiError builds an APIError from a non-2xx response. The server reports
// rejections as JSON {"detail": "..."}; anything else falls back to the raw
// body or the status text.
func (c *Client) apiError(op string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	message := strings.TrimSpace(string(bodyBytes))
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(bodyBytes, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}
	if message == "" {
		message = resp.Status
	}

	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Message: message}
	if resp.StatusCode == http.StatusNotFound {
		apiErr.Err = ErrStoreNotFound
	}
	return apiErr
}
