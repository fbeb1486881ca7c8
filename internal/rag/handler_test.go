package rag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/retailops/asset-helpdesk/internal/vectorstore"
)

func TestHandlerUnavailableWithoutService(t *testing.T) {
	h := NewHandler(nil)

	endpoints := []struct {
		method string
		path   string
		fn     http.HandlerFunc
	}{
		{http.MethodPost, "/api/v1/ingest", h.Ingest},
		{http.MethodGet, "/api/v1/ingest/status", h.IngestStatus},
		{http.MethodPost, "/api/v1/query", h.Query},
		{http.MethodPost, "/api/v1/search", h.Search},
		{http.MethodGet, "/api/v1/stats", h.Stats},
		{http.MethodDelete, "/api/v1/collection", h.ResetCollection},
		{http.MethodPost, "/api/v1/summarize", h.Summarize},
	}
	for _, ep := range endpoints {
		t.Run(ep.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ep.fn(rec, httptest.NewRequest(ep.method, ep.path, nil))
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", rec.Code)
			}
		})
	}
}

func TestHandlerQuery(t *testing.T) {
	index := &fakeIndex{hits: []vectorstore.SearchHit{
		{Payload: vectorstore.Payload{Text: "hold the reset button", Filename: "pos.pdf", DocType: "manual"}, Score: 0.8},
	}}
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{answer: "Hold the reset button for 5 seconds."}, index)
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"question":"how do I reboot the register?"}`))
	h.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp QueryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "Hold the reset button for 5 seconds." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Filename != "pos.pdf" {
		t.Errorf("sources = %v", resp.Sources)
	}
}

func TestHandlerQueryRejectsBadJSON(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Query(rec, httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerQueryMapsValidationErrors(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Query(rec, httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"question":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] == "" {
		t.Error("error body missing")
	}
}

func TestHandlerSearch(t *testing.T) {
	index := &fakeIndex{hits: []vectorstore.SearchHit{
		{Payload: vectorstore.Payload{Text: "chunk one", Filename: "a.pdf", AssetCategory: "oven"}, Score: 0.9},
		{Payload: vectorstore.Payload{Text: "chunk two", Filename: "b.pdf", AssetCategory: "oven"}, Score: 0.5},
	}}
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, index)
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query":"bake settings","limit":2}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	// The response body is a bare JSON array of results.
	var results []SearchResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Score != 0.9 || results[0].Filename != "a.pdf" {
		t.Errorf("results[0] = %+v", results[0])
	}
}

func TestHandlerSearchEmptyResultIsArray(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query":"nothing indexed"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty search body = %q, want []", body)
	}
}

func TestHandlerIngestRunsWithoutStore(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.IngestRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ingest/runs", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when run history is disabled", rec.Code)
	}
}

func TestHandlerIngestRunsRejectsBadLimit(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.IngestRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ingest/runs?limit=-3", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerResetCollection(t *testing.T) {
	svc, _ := newTestService(t, t.TempDir(), &fakeEmbedder{}, &fakeSynthesizer{}, &fakeIndex{})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.ResetCollection(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/collection", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["message"] != "Collection deleted and recreated" {
		t.Errorf("message = %q", body["message"])
	}
}
