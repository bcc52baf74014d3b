package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/outstocked/outstocked-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	records map[string]string
	setKeys []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return f.records[key], nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.setKeys = append(f.setKeys, key)
	if _, exists := f.records[key]; exists {
		return false, nil
	}
	f.records[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "ost:idem:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.records, key)
	}
	return nil
}

func idempotencyHandler(store *fakeIdempotencyStore, calls *int) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test"})
	return Idempotency(store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
}

func TestIdempotencyIgnoresUnlistedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))

	if calls != 1 {
		t.Fatalf("expected pass-through, calls=%d", calls)
	}
	if len(store.setKeys) != 0 {
		t.Fatalf("expected no records, got %d", len(store.setKeys))
	}
}

func TestIdempotencyRequiresKeyOnGuardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("expected handler skipped, calls=%d", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	body := `{"quantity":3}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "abc-123")
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "abc-123")
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)

	if calls != 1 {
		t.Fatalf("expected one real execution, calls=%d", calls)
	}
	if secondRec.Code != http.StatusCreated {
		t.Fatalf("replay status %d, want 201", secondRec.Code)
	}
	if secondRec.Body.String() != `{"ok":true}` {
		t.Fatalf("replay body %q", secondRec.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(`{"quantity":3}`))
	first.Header.Set("Idempotency-Key", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(`{"quantity":9}`))
	second.Header.Set("Idempotency-Key", "abc-123")
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)

	if calls != 1 {
		t.Fatalf("expected one real execution, calls=%d", calls)
	}
	if secondRec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", secondRec.Code)
	}
}

func TestRouteTTLDistinguishesCriticalRoutes(t *testing.T) {
	ttl, ok := routeTTL(http.MethodPost, "/api/v1/items/{itemId}/adjustments")
	if !ok || ttl != criticalIdempotencyTTL {
		t.Fatalf("adjustments ttl=%v ok=%v", ttl, ok)
	}
	ttl, ok = routeTTL(http.MethodPost, "/api/v1/requests")
	if !ok || ttl != defaultIdempotencyTTL {
		t.Fatalf("requests ttl=%v ok=%v", ttl, ok)
	}
	if _, ok := routeTTL(http.MethodGet, "/api/v1/items"); ok {
		t.Fatal("GET should not be guarded")
	}
}
