// Package datasetapi provides the client side of the dataset fetch contract: sealed
// query payloads in, sealed result tables out.
package datasetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/rs/zerolog"
)

// QueryPath is the dataset service endpoint.
const QueryPath = "/api/datasets/query"

// maxResponseBytes caps the size of a response body.
const maxResponseBytes = 32 << 20

// Result is the outcome of a fetch. Data is nil whenever Error is true.
type Result struct {
	Error bool           `json:"error"`
	Data  *dataset.Table `json:"data"`
}

// Envelope is the JSON body exchanged with the dataset service in both directions.
type Envelope struct {
	Payload string `json:"payload"`
}

// Client talks to the dataset service. It never retries.
type Client struct {
	baseURL string
	client  *http.Client
	codec   *Codec
	log     zerolog.Logger
}

// NewClient creates a dataset service client.
func NewClient(baseURL string, codec *Codec, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		codec:   codec,
		log:     log.With().Str("client", "dataset").Logger(),
	}
}

// Fetch posts a sealed query payload and opens the sealed table in the response.
// Transport failures, non-200 statuses and undecryptable responses all resolve to
// Result{Error: true}; nothing is returned as an error or panic.
func (c *Client) Fetch(ctx context.Context, payload, sessionToken string) Result {
	table, err := c.fetch(ctx, payload, sessionToken)
	if err != nil {
		c.log.Warn().Err(err).Msg("Dataset fetch failed")
		return Result{Error: true}
	}
	return Result{Data: table}
}

func (c *Client) fetch(ctx context.Context, payload, sessionToken string) (*dataset.Table, error) {
	body, err := json.Marshal(Envelope{Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+QueryPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("dataset service returned status %d", resp.StatusCode)
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	table, err := c.codec.DecodeTable(env.Payload)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Int("rows", len(table.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Dataset fetched")
	return table, nil
}

// FetchQuery seals a wire query and fetches it. Failures are reported as
// *domain.DatasetFetchError.
func (c *Client) FetchQuery(ctx context.Context, q *dataset.Query, sessionToken string) (*dataset.Table, error) {
	payload, err := c.codec.EncodeQuery(q)
	if err != nil {
		return nil, &domain.DatasetFetchError{Cause: err}
	}
	res := c.Fetch(ctx, payload, sessionToken)
	if res.Error {
		cause := ctx.Err()
		if cause == nil {
			cause = fmt.Errorf("dataset service fetch for %s failed", q.DatasetType)
		}
		return nil, &domain.DatasetFetchError{Cause: cause}
	}
	return res.Data, nil
}
