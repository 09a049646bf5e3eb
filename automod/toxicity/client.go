// Package toxicity implements a client for an external text-scoring service
// that rates message content across abuse categories (toxicity, insult,
// threat, and so on). Scores are probabilities in [0, 1].
package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// requests per second sent to the scoring API, per client
const defaultRateLimit = 10

type Client struct {
	Client   *http.Client
	ApiToken string
	Host     string

	logger  *slog.Logger
	limiter *rate.Limiter
}

func NewClient(host, token string, logger *slog.Logger) *Client {
	return &Client{
		Client:   robustHTTPClient(),
		ApiToken: token,
		Host:     host,
		logger:   logger.With("subsystem", "toxicity"),
		limiter:  rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
	}
}

// robustHTTPClient wraps a retrying client for calls to the scoring API.
// Transient failures and 5xx responses are retried with backoff.
func robustHTTPClient() *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = time.Second
	retryClient.RetryWaitMax = time.Second * 10
	retryClient.Logger = nil
	client := retryClient.StandardClient()
	client.Timeout = time.Second * 30
	return client
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Classify submits text to the scoring API and returns per-category
// probabilities. Calls are rate limited client-side; callers should treat
// errors as "no score" rather than as violations.
func (c *Client) Classify(ctx context.Context, text string) (map[string]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ApiToken)
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading scoring response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring request failed, status=%d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("parsing scoring response: %w", err)
	}
	c.logger.Debug("scored content", "duration", time.Since(start), "categories", len(out.Scores))
	return out.Scores, nil
}
