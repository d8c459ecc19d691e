package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeAudit struct {
	stats    *domain.Stats
	statsErr error
}

func (f *fakeAudit) Append(ctx context.Context, entry domain.AuditEntry) error { return nil }
func (f *fakeAudit) Stats(ctx context.Context) (*domain.Stats, error) {
	return f.stats, f.statsErr
}

func newTestApp(db Pinger, audit domain.AuditStore) *App {
	logger := zerolog.Nop()
	return NewApp(db, audit, &logger)
}

func TestHealthOK(t *testing.T) {
	app := newTestApp(fakePinger{}, &fakeAudit{})

	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestHealthDegradedOnDBFailure(t *testing.T) {
	app := newTestApp(fakePinger{err: errors.New("pool closed")}, &fakeAudit{})

	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStatsSummary(t *testing.T) {
	app := newTestApp(fakePinger{}, &fakeAudit{stats: &domain.Stats{
		TotalUsers:       3,
		TotalBanned:      1,
		TotalGenerations: 120,
		Generations24h:   7,
		ActiveUsers7d:    2,
	}})

	rec := httptest.NewRecorder()
	app.StatsSummary(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["total_generations"] != 120 || body["generations_24h"] != 7 {
		t.Fatalf("body = %v, want generation counters", body)
	}
}

func TestStatsSummaryError(t *testing.T) {
	app := newTestApp(fakePinger{}, &fakeAudit{statsErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	app.StatsSummary(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
