// Package vectorstore is a REST client for Qdrant. It persists
// (vector, payload) points and supports idempotent collection management,
// batched upserts, filtered similarity search, and payload scrolling.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/retailops/asset-helpdesk/pkg/config"
	"github.com/retailops/asset-helpdesk/pkg/resilience"
)

// Payload is the chunk metadata stored alongside each vector. Field names
// match the collection's payload schema.
type Payload struct {
	Text          string `json:"text"`
	Filename      string `json:"filename"`
	FileHash      string `json:"file_hash"`
	ChunkID       int    `json:"chunk_id"`
	StartChar     int    `json:"start_char"`
	EndChar       int    `json:"end_char"`
	AssetCategory string `json:"asset_category"`
	DocType       string `json:"doc_type"`
}

// Point is one indexed vector with its payload. IDs are opaque unique
// tokens; re-ingestion creates new points rather than updating old ones.
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// SearchHit is a payload with its similarity score.
type SearchHit struct {
	Payload Payload
	Score   float64
}

// Filter restricts search to payloads matching every non-empty field
// exactly.
type Filter struct {
	Filename      string
	AssetCategory string
}

// Client talks to a Qdrant instance over its REST API.
type Client struct {
	url        string
	apiKey     string
	collection string
	batchSize  int
	client     *http.Client
	logger     *slog.Logger
}

// New creates a Client from config. It does not touch the network; call
// Ping or EnsureCollection to verify connectivity.
func New(cfg config.QdrantConfig) *Client {
	batch := cfg.UpsertBatch
	if batch <= 0 {
		batch = 100
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		batchSize:  batch,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default().With("component", "vectorstore", "collection", cfg.Collection),
	}
}

// Collection returns the collection name.
func (c *Client) Collection() string {
	return c.collection
}

// Ping verifies the Qdrant API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.url+"/collections", nil, nil)
}

// EnsureCollection creates the collection with the given dimension and
// cosine distance if it does not already exist. A collection that is already
// present is left untouched.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}

	err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, nil)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("checking collection: %w", err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := c.do(ctx, http.MethodPut, c.collectionURL(), body, nil); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	c.logger.Info("collection created", "dimension", dimension)
	return nil
}

// Upsert writes points in batches. Each batch is sent with wait=true so the
// write is visible before the next batch goes out. Retried batches make the
// write at-least-once: a retry after a partial failure can leave duplicate
// points, which search tolerates.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	for i := 0; i < len(points); i += c.batchSize {
		end := i + c.batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := map[string]any{"points": points[i:end]}
		err := resilience.Retry(ctx, "qdrant-upsert", resilience.RetryConfig{}, func() error {
			return c.do(ctx, http.MethodPut, c.collectionURL()+"/points?wait=true", batch, nil)
		})
		if err != nil {
			return fmt.Errorf("upserting points %d..%d: %w", i, end, err)
		}
	}
	return nil
}

// Search returns up to limit hits ranked by cosine similarity, restricted by
// the filter's exact-match conjunction.
func (c *Client) Search(ctx context.Context, vector []float32, limit int, filter Filter) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if conditions := filterConditions(filter); len(conditions) > 0 {
		req["filter"] = map[string]any{"must": conditions}
	}

	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload Payload `json:"payload"`
		} `json:"result"`
	}
	err := resilience.Retry(ctx, "qdrant-search", resilience.RetryConfig{}, func() error {
		return c.do(ctx, http.MethodPost, c.collectionURL()+"/points/search", req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	hits := make([]SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, SearchHit{Payload: r.Payload, Score: r.Score})
	}
	return hits, nil
}

// ScrollPayloads streams every payload in the collection page by page,
// projecting only the requested fields, and calls fn for each. An empty
// collection yields no calls and no error.
func (c *Client) ScrollPayloads(ctx context.Context, fields []string, fn func(Payload) error) error {
	var withPayload any = true
	if len(fields) > 0 {
		withPayload = fields
	}

	var offset any
	for {
		req := map[string]any{
			"limit":        100,
			"with_payload": withPayload,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload Payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := c.do(ctx, http.MethodPost, c.collectionURL()+"/points/scroll", req, &resp); err != nil {
			return fmt.Errorf("scrolling payloads: %w", err)
		}
		for _, p := range resp.Result.Points {
			if err := fn(p.Payload); err != nil {
				return err
			}
		}
		if resp.Result.NextPageOffset == nil {
			return nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Count returns the number of points in the collection.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, &resp); err != nil {
		return 0, fmt.Errorf("fetching collection info: %w", err)
	}
	return resp.Result.PointsCount, nil
}

// DeleteCollection drops the collection. Pairing it with EnsureCollection is
// the only way points are ever removed; there is no per-document delete.
func (c *Client) DeleteCollection(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, c.collectionURL(), nil, nil); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	c.logger.Info("collection deleted")
	return nil
}

func (c *Client) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", c.url, c.collection)
}

func filterConditions(filter Filter) []map[string]any {
	var conditions []map[string]any
	if filter.Filename != "" {
		conditions = append(conditions, map[string]any{
			"key":   "filename",
			"match": map[string]any{"value": filter.Filename},
		})
	}
	if filter.AssetCategory != "" {
		conditions = append(conditions, map[string]any{
			"key":   "asset_category",
			"match": map[string]any{"value": filter.AssetCategory},
		})
	}
	return conditions
}

// statusError carries the HTTP status of a failed Qdrant call.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant request %s failed with status %d", e.url, e.status)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

// do issues one JSON request. A non-2xx response becomes a statusError; when
// out is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling qdrant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, url: url}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
