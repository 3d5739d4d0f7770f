package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	routeOptimizationBaseURL = "https://routeoptimization.googleapis.com"
	cloudPlatformScope       = "https://www.googleapis.com/auth/cloud-platform"
)

// Solver solves one optimizeTours problem
type Solver interface {
	OptimizeTours(ctx context.Context, req *Request) (*Response, error)
}

// ErrSolverFailed is returned when the solver rejects a request or its
// response cannot be read. It is fatal to the route computation.
type ErrSolverFailed struct {
	Status int
	Reason string
}

func (e *ErrSolverFailed) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("route optimization API error (%d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("route optimization failed: %s", e.Reason)
}

// Client calls the Route Optimization REST endpoint for one project
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

// NewClient creates a client that authenticates every call with tokens from ts
func NewClient(projectID string, ts oauth2.TokenSource) *Client {
	return &Client{
		baseURL:   routeOptimizationBaseURL,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: &oauth2.Transport{Source: ts},
		},
	}
}

// NewDefaultClient resolves Application Default Credentials for the
// cloud-platform scope.
func NewDefaultClient(ctx context.Context, projectID string) (*Client, error) {
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain credentials for route optimization: %w", err)
	}
	return NewClient(projectID, ts), nil
}

func (c *Client) OptimizeTours(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode optimizeTours request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s:optimizeTours", c.baseURL, c.projectID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ErrSolverFailed{Reason: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("[OPTIMIZER] Request: shipments=%d vehicles=%d", len(req.Model.Shipments), len(req.Model.Vehicles))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[ERROR] Route optimization request failed: err=%v", err)
		return nil, &ErrSolverFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("[ERROR] Route optimization API error: status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, &ErrSolverFailed{Status: resp.StatusCode, Reason: string(respBody)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[ERROR] Failed to decode route optimization response: err=%v", err)
		return nil, &ErrSolverFailed{Reason: fmt.Sprintf("malformed response: %v", err)}
	}

	log.Printf("[OPTIMIZER] Response: routes=%d skipped=%d", len(out.Routes), len(out.SkippedShipments))
	return &out, nil
}
