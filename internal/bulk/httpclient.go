package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient posts SummaryQuery as JSON to a remote summary endpoint. One
// attempt per call.
type HTTPClient struct {
	URL    string
	Client *http.Client
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) GetSellableItemsSummary(ctx context.Context, q SummaryQuery) (*SummaryResponse, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("post %s: status %d: %s", c.URL, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	var out SummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode summary response: %w", err)
	}
	return &out, nil
}
