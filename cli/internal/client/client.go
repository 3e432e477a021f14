// ABOUTME: HTTP client for the VM Placement Planner API
// ABOUTME: Wraps session lifecycle calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the API client for the placement planner backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status            string `json:"status"`
	Sessions          int    `json:"sessions"`
	VSphereConfigured bool   `json:"vsphere_configured"`
}

// SessionStatus represents a session status snapshot
type SessionStatus struct {
	SessionID     string `json:"session_id"`
	State         string `json:"state"`
	WorkloadCount int    `json:"workload_count"`
	PoolCount     int    `json:"pool_count"`
	PlacedCount   int    `json:"placed_count"`
	CanUndo       bool   `json:"can_undo"`
	CanRedo       bool   `json:"can_redo"`
}

// PlanSummary represents the outcome of an automatic placement run
type PlanSummary struct {
	TotalWorkloads int `json:"total_workloads"`
	Placed         int `json:"placed"`
	FallbackPlaced int `json:"fallback_placed"`
	Unplaced       int `json:"unplaced"`
	PoolsUsed      int `json:"pools_used"`
}

// ResourceVector mirrors the backend's per-resource figures
type ResourceVector struct {
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	Storage float64 `json:"storage"`
}

// PoolUtilization is one pool's derived capacity view
type PoolUtilization struct {
	PoolID         string         `json:"pool_id"`
	WorkloadCount  int            `json:"workload_count"`
	Used           ResourceVector `json:"used"`
	UtilizationPct ResourceVector `json:"utilization_pct"`
	Status         string         `json:"status"`
}

// Bottleneck is one actionable finding
type Bottleneck struct {
	PoolID         string  `json:"pool_id"`
	Resource       string  `json:"resource"`
	Severity       string  `json:"severity"`
	UtilizationPct float64 `json:"utilization_pct"`
	Message        string  `json:"message"`
	Recommendation string  `json:"recommendation"`
}

// Report represents the /report endpoint response
type Report struct {
	Pools           []PoolUtilization `json:"pools"`
	Unplaced        []string          `json:"unplaced"`
	Bottlenecks     []Bottleneck      `json:"bottlenecks"`
	Recommendations []string          `json:"recommendations"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// Health fetches backend health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/api/v1/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession creates a session seeded with the given inventory JSON.
// The inventory is passed through verbatim; the backend validates it.
func (c *Client) CreateSession(ctx context.Context, inventory json.RawMessage) (*SessionStatus, error) {
	var out SessionStatus
	if err := c.post(ctx, "/api/v1/sessions", inventory, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Plan runs automatic placement for a session
func (c *Client) Plan(ctx context.Context, sessionID string, force bool) (*PlanSummary, error) {
	path := "/api/v1/sessions/" + sessionID + "/plan"
	if force {
		path += "?force=true"
	}
	var out PlanSummary
	if err := c.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches the utilization report for a session
func (c *Client) Report(ctx context.Context, sessionID string) (*Report, error) {
	var out Report
	if err := c.get(ctx, "/api/v1/sessions/"+sessionID+"/report", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession tears a session down
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/sessions/"+sessionID, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach backend at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach backend at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// apiError turns a non-2xx response into a readable error
func (c *Client) apiError(resp *http.Response) error {
	var apiErr ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("API error: unexpected status %d", resp.StatusCode)
}
