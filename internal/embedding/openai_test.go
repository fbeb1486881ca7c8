package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retailops/asset-helpdesk/pkg/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(config.EmbeddingConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Model:     "text-embedding-3-small",
		Dimension: 3,
		Timeout:   2 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(config.EmbeddingConfig{Model: "m"}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestEmbedBatchRestoresInputOrder(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 {
			t.Fatalf("got %d inputs", len(req.Input))
		}
		if req.Dimensions != 3 {
			t.Errorf("dimensions = %d, want 3", req.Dimensions)
		}

		// Answer out of order; the client must restore input order.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{4, 5, 6}},
				{"index": 0, "embedding": []float32{1, 2, 3}},
			},
		})
	}))

	vectors, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if vectors[0][0] != 1 || vectors[1][0] != 4 {
		t.Errorf("order not restored: %v", vectors)
	}
}

func TestEmbedBatchSurfacesProviderError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit"},
		})
	}))

	if _, err := client.EmbedBatch(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error from provider")
	}
}

func TestEmbedBatchRejectsCountMismatch(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2, 3}}},
		})
	}))

	if _, err := client.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty input should not hit the provider")
	}))
	vectors, err := client.EmbedBatch(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Errorf("got %v, %v", vectors, err)
	}
}

func TestPing(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}
