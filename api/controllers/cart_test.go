package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/storefront-backend/api/middleware"
	"github.com/pawmart/storefront-backend/internal/auth"
	cartsvc "github.com/pawmart/storefront-backend/internal/cart"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
)

type stubCartSession struct {
	lines      []cartsvc.Line
	orders     []cartsvc.Order
	syncs      int
	added      []cartsvc.Line
	updates    map[string]int
	removed    []string
	cleared    int
	placeCode  string
	placeErr   error
	placedArgs []cartsvc.Line
}

func (s *stubCartSession) Sync(context.Context) { s.syncs++ }

func (s *stubCartSession) Lines() []cartsvc.Line { return s.lines }

func (s *stubCartSession) Add(_ context.Context, line cartsvc.Line) error {
	s.added = append(s.added, line)
	return nil
}

func (s *stubCartSession) UpdateQuantity(_ context.Context, productID string, quantity int) error {
	if s.updates == nil {
		s.updates = map[string]int{}
	}
	s.updates[productID] = quantity
	return nil
}

func (s *stubCartSession) Remove(_ context.Context, productID string) error {
	s.removed = append(s.removed, productID)
	return nil
}

func (s *stubCartSession) Clear(context.Context) error {
	s.cleared++
	return nil
}

func (s *stubCartSession) PlaceOrder(_ context.Context, items []cartsvc.Line, _, _, _ string) (string, error) {
	if s.placeErr != nil {
		return "", s.placeErr
	}
	s.placedArgs = items
	return s.placeCode, nil
}

func (s *stubCartSession) OrderHistory(context.Context) []cartsvc.Order { return s.orders }

func stubFactory(session *stubCartSession, gotScope *string) CartFactory {
	return func(scope, _ string) (CartSession, error) {
		if gotScope != nil {
			*gotScope = scope
		}
		return session, nil
	}
}

func authedRequest(req *http.Request, email string) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), auth.Identity{Email: email}, "token")
	return req.WithContext(ctx)
}

func TestCartFetchGuestScope(t *testing.T) {
	session := &stubCartSession{lines: []cartsvc.Line{{ProductID: "p1", Quantity: 2}}}
	var scope string
	handler := CartFetch(stubFactory(session, &scope), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if scope != cartsvc.GuestScope {
		t.Fatalf("expected guest scope, got %q", scope)
	}
	if session.syncs != 1 {
		t.Fatalf("fetch must reconcile first, got %d syncs", session.syncs)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected items %v", envelope.Data.Items)
	}
}

func TestCartFetchUsesIdentityScope(t *testing.T) {
	var scope string
	handler := CartFetch(stubFactory(&stubCartSession{}, &scope), nil)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "an@example.com")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if scope != "an@example.com" {
		t.Fatalf("expected identity scope, got %q", scope)
	}
}

func TestCartAddSyncsBeforeMutating(t *testing.T) {
	session := &stubCartSession{}
	handler := CartAdd(stubFactory(session, nil), nil)

	body := `{"productId":"p1","title":"Food A","price":150,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if session.syncs != 1 {
		t.Fatalf("add must reconcile first")
	}
	if len(session.added) != 1 || session.added[0].ProductID != "p1" || session.added[0].Quantity != 2 {
		t.Fatalf("unexpected add %v", session.added)
	}
}

func TestCartAddRejectsBadBody(t *testing.T) {
	handler := CartAdd(stubFactory(&stubCartSession{}, nil), nil)

	for name, body := range map[string]string{
		"missing product": `{"quantity":1}`,
		"zero quantity":   `{"productId":"p1","quantity":0}`,
		"unknown field":   `{"productId":"p1","quantity":1,"bogus":true}`,
		"not json":        `<html>`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	session := &stubCartSession{}
	handler := CartUpdateQuantity(stubFactory(session, nil), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(`{"productId":"p1","quantity":7}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if session.updates["p1"] != 7 {
		t.Fatalf("unexpected updates %v", session.updates)
	}
}

func TestCartRemove(t *testing.T) {
	session := &stubCartSession{}
	handler := CartRemove(stubFactory(session, nil), nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/p1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", "p1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(session.removed) != 1 || session.removed[0] != "p1" {
		t.Fatalf("unexpected removals %v", session.removed)
	}
}

func TestCartClearSkipsSync(t *testing.T) {
	session := &stubCartSession{}
	handler := CartClear(stubFactory(session, nil), nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if session.cleared != 1 || session.syncs != 0 {
		t.Fatalf("clear must not reconcile, cleared=%d syncs=%d", session.cleared, session.syncs)
	}
}

func TestCheckoutSuccess(t *testing.T) {
	session := &stubCartSession{placeCode: "OC-9"}
	handler := Checkout(stubFactory(session, nil), nil)

	body := `{"items":[{"productId":"p1","price":150,"quantity":2}],"address":"12 Le Loi","phone":"0901","email":"an@example.com"}`
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), "an@example.com")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderCode != "OC-9" {
		t.Fatalf("unexpected order code %q", envelope.Data.OrderCode)
	}
	if len(session.placedArgs) != 1 {
		t.Fatalf("expected checkout items forwarded, got %v", session.placedArgs)
	}
}

func TestCheckoutGuestRejected(t *testing.T) {
	session := &stubCartSession{placeErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "đăng nhập để đặt hàng")}
	handler := Checkout(stubFactory(session, nil), nil)

	body := `{"items":[{"productId":"p1","price":150,"quantity":1}],"address":"a","phone":"p","email":"an@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutRejectsIncompletePayload(t *testing.T) {
	handler := Checkout(stubFactory(&stubCartSession{}, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items":[],"address":"a","phone":"p","email":"an@example.com"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderHistory(t *testing.T) {
	session := &stubCartSession{orders: []cartsvc.Order{{OrderCode: "OC-1", TotalPrice: 150}}}
	handler := OrderHistory(stubFactory(session, nil), nil)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), "an@example.com")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data orderHistoryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].OrderCode != "OC-1" {
		t.Fatalf("unexpected orders %v", envelope.Data.Orders)
	}
}
