package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pawmart/storefront-backend/internal/upstream"
	"github.com/pawmart/storefront-backend/pkg/logger"
	pkgredis "github.com/pawmart/storefront-backend/pkg/redis"
)

type stubAPI struct {
	mu          sync.Mutex
	products    []upstream.CatalogProduct
	detail      json.RawMessage
	detailErr   error
	detailCalls int
}

func (a *stubAPI) ListProducts(context.Context, upstream.ListProductsQuery) ([]upstream.CatalogProduct, error) {
	return a.products, nil
}

func (a *stubAPI) LookupProducts(context.Context, []string) ([]upstream.CatalogProduct, error) {
	return a.products, nil
}

func (a *stubAPI) GetProduct(context.Context, string) (json.RawMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detailCalls++
	return a.detail, a.detailErr
}

func (a *stubAPI) ListReviews(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"reviews":[]}`), nil
}

func (a *stubAPI) CreateReview(_ context.Context, _ string, payload json.RawMessage) (json.RawMessage, error) {
	return payload, nil
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	fail bool
}

func (f *fakeRedis) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := goredis.NewStatusCmd(ctx)
	if f.fail {
		cmd.SetErr(errors.New("redis down"))
		return cmd
	}
	f.data[key] = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := goredis.NewStringCmd(ctx)
	if f.fail {
		cmd.SetErr(errors.New("redis down"))
		return cmd
	}
	if value, ok := f.data[key]; ok {
		cmd.SetVal(value)
	} else {
		cmd.SetErr(goredis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := goredis.NewIntCmd(ctx)
	for _, key := range keys {
		delete(f.data, key)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func newTestService(api *stubAPI, cache *fakeRedis) *Service {
	var client *pkgredis.Client
	if cache != nil {
		client = pkgredis.NewWithStore(cache)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(api, client, time.Minute, logg)
}

func TestGetCachesDetail(t *testing.T) {
	t.Parallel()

	api := &stubAPI{detail: json.RawMessage(`{"_id":"p1","title":"Food A"}`)}
	svc := newTestService(api, &fakeRedis{data: map[string]string{}})
	ctx := context.Background()

	first, err := svc.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := svc.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("cache served a different document")
	}
	if api.detailCalls != 1 {
		t.Fatalf("expected one upstream read, got %d", api.detailCalls)
	}
}

func TestGetSurvivesCacheOutage(t *testing.T) {
	t.Parallel()

	api := &stubAPI{detail: json.RawMessage(`{"_id":"p1"}`)}
	svc := newTestService(api, &fakeRedis{data: map[string]string{}, fail: true})

	doc, err := svc.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get must not depend on redis: %v", err)
	}
	if string(doc) != `{"_id":"p1"}` {
		t.Fatalf("unexpected document %s", doc)
	}
}

func TestGetWithoutCacheClient(t *testing.T) {
	t.Parallel()

	api := &stubAPI{detail: json.RawMessage(`{"_id":"p1"}`)}
	svc := newTestService(api, nil)

	if _, err := svc.Get(context.Background(), "p1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if api.detailCalls != 1 {
		t.Fatalf("expected upstream read, got %d", api.detailCalls)
	}
}

func TestGetPropagatesUpstreamError(t *testing.T) {
	t.Parallel()

	api := &stubAPI{detailErr: errors.New("status 500")}
	svc := newTestService(api, &fakeRedis{data: map[string]string{}})

	if _, err := svc.Get(context.Background(), "p1"); err == nil {
		t.Fatalf("expected upstream error to surface")
	}
}
