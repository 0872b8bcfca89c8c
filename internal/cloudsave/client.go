// Package cloudsave is the client for the remote save service. It pushes and
// pulls whole snapshots keyed by device id; conflict resolution between a
// pulled snapshot and the local one happens in the save package, not here.
package cloudsave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/element-fusion/element-fusion-go/internal/save"
)

// Config holds configuration for the save service client.
type Config struct {
	// BaseURL is the service root, e.g. "https://fusion.example.com/api".
	// Required.
	BaseURL string

	// Credential is the API credential sent as a bearer token. Optional; the
	// service accepts anonymous saves.
	Credential string

	// MaxRetries is the maximum number of retry attempts for retryable
	// errors. Defaults to 3 if zero.
	MaxRetries int

	// BaseRetryDelay is the initial delay before the first retry.
	// Defaults to 2 seconds if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay.
	// Defaults to 10 seconds if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with 30s timeout.
	HTTPClient *http.Client
}

// Client talks to the remote save service.
type Client struct {
	config Config
	http   *http.Client
	mu     sync.RWMutex
}

// NewClient creates a save service client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 2 * time.Second
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// SetCredential updates the API credential (thread-safe).
func (c *Client) SetCredential(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Credential = credential
}

func (c *Client) credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Credential
}

type pushRequest struct {
	DeviceID   string         `json:"deviceId"`
	SaveData   *save.Snapshot `json:"saveData"`
	PlayerName string         `json:"playerName,omitempty"`
	Version    string         `json:"version"`
}

type pushResponse struct {
	Success bool   `json:"success"`
	SavedAt string `json:"savedAt"`
}

// Push uploads a snapshot, replacing any previous save for the device.
// Returns the server-side save time.
func (c *Client) Push(ctx context.Context, deviceID string, snap *save.Snapshot) (time.Time, error) {
	if deviceID == "" {
		return time.Time{}, fmt.Errorf("cloudsave: device id is required")
	}
	if snap == nil {
		return time.Time{}, fmt.Errorf("cloudsave: snapshot is required")
	}

	body := pushRequest{
		DeviceID:   deviceID,
		SaveData:   snap,
		PlayerName: snap.PlayerName,
		Version:    snap.Version,
	}
	raw, err := c.doWithRetry(ctx, http.MethodPost, "/save", body)
	if err != nil {
		return time.Time{}, err
	}

	var resp pushResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return time.Time{}, fmt.Errorf("cloudsave: decode push response: %w", err)
	}
	savedAt, err := time.Parse(time.RFC3339, resp.SavedAt)
	if err != nil {
		// Older service builds omit savedAt; the push still succeeded.
		return time.Time{}, nil
	}
	return savedAt, nil
}

type pullResponse struct {
	Success   bool            `json:"success"`
	SaveData  json.RawMessage `json:"saveData"`
	LastSaved string          `json:"lastSaved"`
}

// Pull downloads the device's snapshot. Returns (nil, zero, nil) when the
// device has no cloud save; that is an ordinary answer, not an error.
func (c *Client) Pull(ctx context.Context, deviceID string) (*save.Snapshot, time.Time, error) {
	if deviceID == "" {
		return nil, time.Time{}, fmt.Errorf("cloudsave: device id is required")
	}

	raw, err := c.doWithRetry(ctx, http.MethodGet, "/save?deviceId="+url.QueryEscape(deviceID), nil)
	if err != nil {
		return nil, time.Time{}, err
	}

	var resp pullResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, time.Time{}, fmt.Errorf("cloudsave: decode pull response: %w", err)
	}
	if len(resp.SaveData) == 0 || string(resp.SaveData) == "null" {
		return nil, time.Time{}, nil
	}

	snap, err := save.Decode(resp.SaveData)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("cloudsave: remote snapshot: %w", err)
	}
	lastSaved, _ := time.Parse(time.RFC3339, resp.LastSaved)
	return snap, lastSaved, nil
}

// Wipe deletes the device's cloud save. Wiping a device with no save
// succeeds.
func (c *Client) Wipe(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("cloudsave: device id is required")
	}
	_, err := c.doWithRetry(ctx, http.MethodDelete, "/save?deviceId="+url.QueryEscape(deviceID), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("cloudsave: marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("cloudsave: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred := c.credential(); cred != "" {
		req.Header.Set("Authorization", "Bearer "+cred)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudsave: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudsave: read response: %w", err)
	}

	if resp.StatusCode == 401 {
		return nil, &AuthError{StatusCode: 401, Message: "credential rejected"}
	}
	if resp.StatusCode != 200 {
		var svcErr ServiceError
		if json.Unmarshal(respBody, &svcErr) == nil && svcErr.Reason != "" {
			svcErr.StatusCode = resp.StatusCode
			return nil, &svcErr
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body any) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, err := c.do(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if httpErr, ok := err.(*HTTPError); ok && httpErr.IsRetryable() {
			continue
		}
		if svcErr, ok := err.(*ServiceError); ok && svcErr.IsRetryable() {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("cloudsave: retries exhausted: %w", lastErr)
}

func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.config.BaseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > c.config.MaxRetryDelay {
		delay = c.config.MaxRetryDelay
	}
	return delay
}
