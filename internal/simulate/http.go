package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// rankRequest mirrors the POST /rank body.
type rankRequest struct {
	Trajectory          any     `json:"trajectory"`
	Observations        any     `json:"observations"`
	BufferSizeKM        float64 `json:"buffer_size_km"`
	TimeIntervalMinutes float64 `json:"time_interval_minutes"`
	ProximityPolicy     string  `json:"proximity_policy,omitempty"`
}

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// submitScenario posts the scenario to /rank and decodes the ranking.
func submitScenario(ctx context.Context, config *Config, scenario Scenario) (RankResponse, error) {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Post(ctx, config.BaseURL+"/rank", rankRequest{
		Trajectory:          scenario.Trajectory,
		Observations:        scenario.Observations,
		BufferSizeKM:        config.BufferSizeKM,
		TimeIntervalMinutes: config.TimeIntervalMinutes,
		ProximityPolicy:     config.ProximityPolicy,
	})
	if err != nil {
		return RankResponse{}, fmt.Errorf("failed to submit scenario: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RankResponse{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RankResponse{}, fmt.Errorf("rank request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out RankResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return RankResponse{}, fmt.Errorf("failed to decode ranking: %w", err)
	}
	return out, nil
}
