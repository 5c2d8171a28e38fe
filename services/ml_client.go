package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"debatearena/models"
)

// DefaultMLTimeout bounds a single call to the ML scoring service.
const DefaultMLTimeout = 5 * time.Second

// MLClient calls the external machine-learning scoring service. A non-2xx
// response or transport failure is classified as unavailable, a deadline
// hit as timeout, and an unparseable body as invalid-response.
type MLClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewMLClient builds an ML tier client for the given service base URL.
func NewMLClient(baseURL string, timeout time.Duration) *MLClient {
	if timeout <= 0 {
		timeout = DefaultMLTimeout
	}
	return &MLClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *MLClient) Name() string { return models.SourceML }

// mlFinalizeRequest mirrors the scoring service's finalize endpoint input.
type mlFinalizeRequest struct {
	Arguments []ParticipantArgument `json:"arguments"`
}

// mlFinalizeResponse is the service's native output shape: per-username
// metric maps plus separate totals, not the canonical result shape.
type mlFinalizeResponse struct {
	Scores map[string]map[string]models.MetricScore `json:"scores"`
	Totals map[string]float64                       `json:"totals"`
	Winner string                                   `json:"winner"`
	Error  string                                   `json:"error,omitempty"`
}

func (c *MLClient) Analyze(ctx context.Context, _ string, arguments []ParticipantArgument) (*models.AnalysisResult, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("ml service not configured: %w", ErrTierUnavailable)
	}

	payload, err := json.Marshal(mlFinalizeRequest{Arguments: arguments})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ml request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/finalize-debate", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create ml request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("ml service: %w", ErrTierTimeout)
		}
		return nil, fmt.Errorf("ml service request failed: %v: %w", err, ErrTierUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ml response: %v: %w", err, ErrTierUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml service returned status %d: %w", resp.StatusCode, ErrTierUnavailable)
	}

	var mlResp mlFinalizeResponse
	if err := json.Unmarshal(body, &mlResp); err != nil {
		return nil, fmt.Errorf("failed to parse ml response: %v: %w", err, ErrTierInvalidResponse)
	}
	if mlResp.Error != "" {
		return nil, fmt.Errorf("ml service error: %s: %w", mlResp.Error, ErrTierUnavailable)
	}
	if len(mlResp.Scores) == 0 {
		return nil, fmt.Errorf("ml response contained no scores: %w", ErrTierInvalidResponse)
	}

	results := make(map[string]models.ParticipantResult, len(mlResp.Scores))
	for username, metrics := range mlResp.Scores {
		results[username] = models.ParticipantResult{
			Scores: metrics,
			Total:  mlResp.Totals[username],
		}
	}

	return &models.AnalysisResult{
		Results:     results,
		Winner:      mlResp.Winner,
		Source:      models.SourceML,
		FinalizedAt: time.Now(),
	}, nil
}
