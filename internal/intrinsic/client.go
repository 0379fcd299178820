// Package intrinsic is the HTTP client for the platform's intrinsic
// state endpoints. The engine treats these as opaque network calls; in
// preview mode they are skipped entirely by the caller.
package intrinsic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/courseforge/adaptivity/internal/ctxlog"
)

// Result is the server's acknowledgement of a state write.
type Result struct {
	Type string `json:"type"`
}

// Client talks to the intrinsic state API of one course section host.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given host, e.g.
// "https://lms.example.edu".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WritePartAttemptState persists one part attempt's response. When
// finalize is set the attempt is also submitted for evaluation.
func (c *Client) WritePartAttemptState(
	ctx context.Context,
	sectionSlug, attemptGuid, partAttemptGuid string,
	response any,
	finalize bool,
) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	url := fmt.Sprintf("%s/state/course/%s/activity_attempt/%s/part_attempt/%s",
		c.baseURL, sectionSlug, attemptGuid, partAttemptGuid)

	body, err := json.Marshal(map[string]any{
		"response": response,
		"finalize": finalize,
	})
	if err != nil {
		return nil, fmt.Errorf("encode part attempt state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Writing part attempt state.", "section", sectionSlug, "partAttempt", partAttemptGuid, "finalize", finalize)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("write part attempt state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("write part attempt state: server returned %s", resp.Status)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode part attempt state response: %w", err)
	}
	return &result, nil
}
