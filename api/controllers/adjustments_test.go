package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/api/middleware"
	ledgersvc "github.com/outstocked/outstocked-backend/internal/ledger"
	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

type testLedgerService struct {
	applyFn func(ctx context.Context, input ledgersvc.ApplyAdjustmentInput) (*ledgersvc.AdjustmentResult, error)
	listFn  func(ctx context.Context, input ledgersvc.ListHistoryInput) (*ledgersvc.HistoryPage, error)
}

func (s *testLedgerService) ApplyAdjustment(ctx context.Context, input ledgersvc.ApplyAdjustmentInput) (*ledgersvc.AdjustmentResult, error) {
	if s.applyFn != nil {
		return s.applyFn(ctx, input)
	}
	return nil, nil
}

func (s *testLedgerService) ListHistory(ctx context.Context, input ledgersvc.ListHistoryInput) (*ledgersvc.HistoryPage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, input)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target, body string, userID, orgID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	req = req.WithContext(middleware.WithOrgID(req.Context(), orgID.String()))
	return req
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestApplyAdjustmentSuccess(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	itemID := uuid.New()

	var got ledgersvc.ApplyAdjustmentInput
	svc := &testLedgerService{
		applyFn: func(ctx context.Context, input ledgersvc.ApplyAdjustmentInput) (*ledgersvc.AdjustmentResult, error) {
			got = input
			return &ledgersvc.AdjustmentResult{
				Item:  &models.InventoryItem{ID: itemID, Quantity: 7},
				Entry: &models.LedgerEntry{ItemID: itemID, QuantityAfter: 7},
			}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/adjustments",
		`{"action":"sale","quantity":3,"notes":"front counter"}`, userID, orgID)
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "itemId", itemID.String())

	resp := httptest.NewRecorder()
	ApplyAdjustment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %s", resp.Code, resp.Body.String())
	}
	if got.Action != enums.StockActionSale || got.Quantity != 3 {
		t.Fatalf("service got %+v", got)
	}
	if got.ActorID != userID || got.OrganizationID != orgID || got.ItemID != itemID {
		t.Fatalf("actor context not forwarded: %+v", got)
	}

	var envelope struct {
		Data ledgersvc.AdjustmentResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Item == nil || envelope.Data.Item.Quantity != 7 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestApplyAdjustmentRejectsUnknownAction(t *testing.T) {
	svc := &testLedgerService{
		applyFn: func(ctx context.Context, input ledgersvc.ApplyAdjustmentInput) (*ledgersvc.AdjustmentResult, error) {
			t.Fatal("service should not run")
			return nil, nil
		},
	}

	itemID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/adjustments",
		`{"action":"shrinkage","quantity":3}`, uuid.New(), uuid.New())
	req = withRouteParam(req, "itemId", itemID.String())

	resp := httptest.NewRecorder()
	ApplyAdjustment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.Code)
	}
}

func TestApplyAdjustmentRequiresActor(t *testing.T) {
	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+itemID.String()+"/adjustments",
		strings.NewReader(`{"action":"sale","quantity":1}`))
	req = withRouteParam(req, "itemId", itemID.String())

	resp := httptest.NewRecorder()
	ApplyAdjustment(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.Code)
	}
}

func TestListHistoryForwardsCursor(t *testing.T) {
	itemID := uuid.New()
	var got ledgersvc.ListHistoryInput
	svc := &testLedgerService{
		listFn: func(ctx context.Context, input ledgersvc.ListHistoryInput) (*ledgersvc.HistoryPage, error) {
			got = input
			return &ledgersvc.HistoryPage{}, nil
		},
	}

	req := authedRequest(http.MethodGet,
		"/api/v1/items/"+itemID.String()+"/history?limit=10&cursor=abc", "", uuid.New(), uuid.New())
	req = withRouteParam(req, "itemId", itemID.String())

	resp := httptest.NewRecorder()
	ListHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", resp.Code, resp.Body.String())
	}
	if got.Pagination.Limit != 10 || got.Pagination.Cursor != "abc" {
		t.Fatalf("pagination not forwarded: %+v", got.Pagination)
	}
	if got.ItemID != itemID {
		t.Fatalf("item %s, want %s", got.ItemID, itemID)
	}
}
