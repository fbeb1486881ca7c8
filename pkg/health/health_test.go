package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func upCheck(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusUp}
}

func downCheck(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDown, Message: "connection refused"}
}

func degradedCheck(ctx context.Context) ComponentHealth {
	return ComponentHealth{Status: StatusDegraded}
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("qdrant", upCheck)
	c.Register("redis", upCheck)
	report := c.Run(context.Background())
	if report.Status != StatusUp {
		t.Errorf("all up: status = %q", report.Status)
	}

	c.Register("redis", degradedCheck)
	if report := c.Run(context.Background()); report.Status != StatusDegraded {
		t.Errorf("one degraded: status = %q", report.Status)
	}

	c.Register("postgres", downCheck)
	report = c.Run(context.Background())
	if report.Status != StatusDown {
		t.Errorf("one down: status = %q", report.Status)
	}
	if report.Components["postgres"].Message != "connection refused" {
		t.Errorf("component message = %q", report.Components["postgres"].Message)
	}
}

func TestReadyHandlerReturns503WhenDown(t *testing.T) {
	c := NewChecker()
	c.Register("qdrant", downCheck)

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDown {
		t.Errorf("report status = %q", report.Status)
	}
}

func TestLiveHandlerAlwaysOK(t *testing.T) {
	c := NewChecker()
	c.Register("qdrant", downCheck)

	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
