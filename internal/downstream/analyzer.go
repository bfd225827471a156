package downstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AnalyzerClient calls the insight service with a compact summary of one
// collection run.
type AnalyzerClient struct {
	url    string
	client *http.Client
}

func NewAnalyzerClient(url string) *AnalyzerClient {
	return &AnalyzerClient{
		url: url,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *AnalyzerClient) UseDefaultClient() {
	c.client = http.DefaultClient
}

// Configured reports whether an endpoint was set at all.
func (c *AnalyzerClient) Configured() bool {
	return c.url != ""
}

type AnalyzeRequest struct {
	BusinessUnitID int         `json:"business_unit_id"`
	ScanData       interface{} `json:"scan_data"`
	Context        string      `json:"context"`
}

type AnalyzeResponse struct {
	Success  bool `json:"success"`
	Analysis struct {
		SummaryText string `json:"summary_text"`
	} `json:"analysis"`
}

// Analyze submits the run summary for analysis.
func (c *AnalyzerClient) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	body, err := postJSON(ctx, c.client, c.url, req)
	if err != nil {
		return nil, err
	}

	var out AnalyzeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("bad analyzer response: %w", err)
	}

	return &out, nil
}
