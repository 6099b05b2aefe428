package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"family-ledger-sync-go/internal/models"
	"family-ledger-sync-go/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *Client must satisfy store.RemoteStore.
var _ store.RemoteStore = (*Client)(nil)

const defaultRequestTimeout = 15 * time.Second

// Client implements store.RemoteStore against the family backend's HTTP API.
// Transport-level failures and server errors are wrapped in
// store.ErrRemoteUnavailable so the orchestrator can fail open on them.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a remote store client.
func NewClient(cfg models.RemoteConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote config requires BaseURL")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) stateURL(ownerID string) string {
	return fmt.Sprintf("%s/v1/families/%s/state", c.baseURL, url.PathEscape(ownerID))
}

// LoadState fetches the remote snapshot. A 404 means no snapshot exists yet
// and returns (nil, nil) so the orchestrator runs its first-sync path.
func (c *Client) LoadState(ctx context.Context, ownerID string) (*models.State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.stateURL(ownerID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrRemoteUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: remote returned %d", store.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d loading state for %s", resp.StatusCode, ownerID)
	}

	var state models.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode remote state: %w", err)
	}
	state.Normalize()
	return &state, nil
}

// saveResponse is the body of a successful state write.
type saveResponse struct {
	IDMapping map[string]string `json:"idMapping"`
}

// SaveState writes the snapshot and returns the server's remapping of
// client-generated temporary IDs to permanent ones.
func (c *Client) SaveState(ctx context.Context, ownerID string, state *models.State) (store.IDRemapping, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.stateURL(ownerID), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrRemoteUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return store.IDRemapping{}, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: remote returned %d", store.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d saving state for %s", resp.StatusCode, ownerID)
	}

	var body saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// The write itself succeeded; a mangled mapping just means temp IDs
		// stay temporary until the next cycle.
		zap.L().Warn("Failed to decode ID remapping from save response", zap.Error(err))
		return store.IDRemapping{}, nil
	}
	return store.IDRemapping(body.IDMapping), nil
}
