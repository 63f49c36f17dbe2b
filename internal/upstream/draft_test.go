package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pawmart/storefront-backend/pkg/config"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.UpstreamConfig{
		BaseURL:       srv.URL,
		SessionCookie: "session",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return client
}

func TestGetDraftOK(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "tok" {
			t.Errorf("expected session cookie, got %v", r.Cookies())
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"products":[{"id":"p1","name":"Cat Food","price":100,"quantity":2}]}`)
	}))

	res := client.GetDraft(context.Background(), "tok")
	if res.Status != DraftOK {
		t.Fatalf("unexpected status %v (err=%v)", res.Status, res.Err)
	}
	if len(res.Products) != 1 || res.Products[0].ID != "p1" || res.Products[0].Quantity != 2 {
		t.Fatalf("unexpected products: %+v", res.Products)
	}
}

func TestGetDraftAuthRequired(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	if res := client.GetDraft(context.Background(), "expired"); res.Status != DraftAuthRequired {
		t.Fatalf("expected auth required, got %v", res.Status)
	}
}

func TestGetDraftNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if res := client.GetDraft(context.Background(), "tok"); res.Status != DraftNotFound {
		t.Fatalf("expected not found, got %v", res.Status)
	}
}

func TestGetDraftNonJSONBodyIsMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html>maintenance</html>")
	}))

	res := client.GetDraft(context.Background(), "tok")
	if res.Status != DraftMalformed {
		t.Fatalf("expected malformed, got %v", res.Status)
	}
	if res.Err == nil {
		t.Fatal("expected error describing the malformed body")
	}
}

func TestGetDraftTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(config.UpstreamConfig{
		BaseURL:       srv.URL,
		SessionCookie: "session",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	srv.Close()

	if res := client.GetDraft(context.Background(), "tok"); res.Status != DraftTransportError {
		t.Fatalf("expected transport error, got %v", res.Status)
	}
}

func TestReplaceDraftSendsFullLineList(t *testing.T) {
	t.Parallel()

	var received string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))

	err := client.ReplaceDraft(context.Background(), "tok", []DraftItem{
		{ProductID: "p1", Title: "Cat Food", Brand: "Acme", Image: "/a.jpg", Price: 100, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"products":[{"productId":"p1","title":"Cat Food","brand":"Acme","image":"/a.jpg","price":100,"quantity":2}]}`
	if received != want {
		t.Fatalf("unexpected body:\n got %s\nwant %s", received, want)
	}
}
