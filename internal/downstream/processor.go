package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProcessorClient calls the service that turns staged raw payloads into
// normalized rows. Only the request/response contract lives here.
type ProcessorClient struct {
	url    string
	client *http.Client
}

func NewProcessorClient(url string) *ProcessorClient {
	return &ProcessorClient{
		url: url,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *ProcessorClient) UseDefaultClient() {
	c.client = http.DefaultClient
}

// Configured reports whether an endpoint was set at all.
func (c *ProcessorClient) Configured() bool {
	return c.url != ""
}

type ProcessRequest struct {
	ReportDate     string   `json:"report_date"`
	BusinessUnitID int      `json:"business_unit_id"`
	ReportTypes    []string `json:"report_types"`
}

type ProcessResponse struct {
	Summary string `json:"summary"`
	Details struct {
		Processed []string `json:"processed"`
	} `json:"details"`
}

// Process asks the downstream processor to pick up the freshly staged
// report types.
func (c *ProcessorClient) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	body, err := postJSON(ctx, c.client, c.url, req)
	if err != nil {
		return nil, err
	}

	var out ProcessResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("bad processor response: %w", err)
	}

	return &out, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("downstream error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
