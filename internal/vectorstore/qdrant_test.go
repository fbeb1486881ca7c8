package vectorstore

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
	return New(config.QdrantConfig{
		URL:         srv.URL,
		Collection:  "test_docs",
		Timeout:     2 * time.Second,
		UpsertBatch: 2,
	})
}

func TestEnsureCollectionCreatesWhenMissing(t *testing.T) {
	var created bool
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/test_docs":
			if created {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"result":{}}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/test_docs":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			vectors := body["vectors"].(map[string]any)
			if vectors["size"].(float64) != 1536 {
				t.Errorf("create size = %v, want 1536", vectors["size"])
			}
			if vectors["distance"] != "Cosine" {
				t.Errorf("create distance = %v", vectors["distance"])
			}
			created = true
			w.Write([]byte(`{"result":true}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	if err := client.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("collection was not created")
	}
	// Second call finds it and does not recreate.
	if err := client.EnsureCollection(context.Background(), 1536); err != nil {
		t.Fatal(err)
	}
}

func TestUpsertBatches(t *testing.T) {
	var batches [][]Point
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/test_docs/points" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("upsert should set wait=true")
		}
		var body struct {
			Points []Point `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		batches = append(batches, body.Points)
		w.Write([]byte(`{"result":true}`))
	}))

	points := []Point{
		{ID: "1", Vector: []float32{1}},
		{ID: "2", Vector: []float32{2}},
		{ID: "3", Vector: []float32{3}},
	}
	if err := client.Upsert(context.Background(), points); err != nil {
		t.Fatal(err)
	}

	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2 (batch size 2)", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Errorf("batch sizes = %d, %d; want 2, 1", len(batches[0]), len(batches[1]))
	}
	if batches[1][0].ID != "3" {
		t.Errorf("last batch point = %q", batches[1][0].ID)
	}
}

func TestSearchBuildsFilterConditions(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		filter, ok := body["filter"].(map[string]any)
		if !ok {
			t.Fatal("request carries no filter")
		}
		must := filter["must"].([]any)
		if len(must) != 2 {
			t.Fatalf("got %d conditions, want 2", len(must))
		}
		if body["limit"].(float64) != 3 {
			t.Errorf("limit = %v", body["limit"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.91, "payload": Payload{Text: "descale weekly", Filename: "cm.pdf"}},
			},
		})
	}))

	hits, err := client.Search(context.Background(), []float32{0.1, 0.2}, 3, Filter{
		Filename:      "cm.pdf",
		AssetCategory: "coffee_machine",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].Score != 0.91 || hits[0].Payload.Filename != "cm.pdf" {
		t.Errorf("hit = %+v", hits[0])
	}
}

func TestSearchOmitsEmptyFilter(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["filter"]; ok {
			t.Error("empty filter should be omitted from the request")
		}
		w.Write([]byte(`{"result":[]}`))
	}))

	if _, err := client.Search(context.Background(), []float32{0.1}, 5, Filter{}); err != nil {
		t.Fatal(err)
	}
}

func TestScrollPayloadsPaginates(t *testing.T) {
	var calls int
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/test_docs/points/scroll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls++
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		switch calls {
		case 1:
			if _, ok := body["offset"]; ok {
				t.Error("first page should carry no offset")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points":           []map[string]any{{"payload": Payload{Filename: "a.pdf"}}},
					"next_page_offset": "page-2",
				},
			})
		case 2:
			if body["offset"] != "page-2" {
				t.Errorf("offset = %v, want page-2", body["offset"])
			}
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points":           []map[string]any{{"payload": Payload{Filename: "b.pdf"}}},
					"next_page_offset": nil,
				},
			})
		default:
			t.Error("scroll should stop after the last page")
		}
	}))

	var seen []string
	err := client.ScrollPayloads(context.Background(), []string{"filename"}, func(p Payload) error {
		seen = append(seen, p.Filename)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("scroll made %d calls, want 2", calls)
	}
	if len(seen) != 2 || seen[0] != "a.pdf" || seen[1] != "b.pdf" {
		t.Errorf("seen = %v", seen)
	}
}

func TestCount(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"points_count":42}}`))
	}))
	n, err := client.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

func TestDoSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("api-key header = %q", r.Header.Get("api-key"))
		}
		w.Write([]byte(`{"result":{}}`))
	}))
	defer srv.Close()

	client := New(config.QdrantConfig{
		URL:        srv.URL,
		APIKey:     "secret",
		Collection: "test_docs",
		Timeout:    2 * time.Second,
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}
