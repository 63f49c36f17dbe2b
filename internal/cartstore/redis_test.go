package cartstore

import (
	"context"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pawmart/storefront-backend/internal/cart"
	pkgredis "github.com/pawmart/storefront-backend/pkg/redis"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
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
	f.data[key] = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := goredis.NewStringCmd(ctx)
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
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(pkgredis.NewWithStore(newFakeRedis()))
	ctx := context.Background()

	lines := []cart.Line{
		{ProductID: "p1", Title: "Food A", Brand: "PetCo", Image: "/a.jpg", Price: 150, Quantity: 2},
	}
	if err := store.Save(ctx, "an@example.com", lines); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load(ctx, "an@example.com")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry present")
	}
	if len(got) != 1 || got[0] != lines[0] {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestRedisStoreAbsentScope(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(pkgredis.NewWithStore(newFakeRedis()))
	_, ok, err := store.Load(context.Background(), "guest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatalf("missing key must report absent, not error")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(pkgredis.NewWithStore(newFakeRedis()))
	ctx := context.Background()
	if err := store.Save(ctx, "guest", []cart.Line{{ProductID: "p1", Quantity: 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "guest"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "guest"); ok {
		t.Fatalf("entry must be gone after delete")
	}
}

func TestRedisStoreScopesAreIsolated(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(pkgredis.NewWithStore(newFakeRedis()))
	ctx := context.Background()
	if err := store.Save(ctx, "guest", []cart.Line{{ProductID: "p1", Quantity: 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "an@example.com", []cart.Line{{ProductID: "p2", Quantity: 3}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	guest, _, _ := store.Load(ctx, "guest")
	user, _, _ := store.Load(ctx, "an@example.com")
	if guest[0].ProductID != "p1" || user[0].ProductID != "p2" {
		t.Fatalf("scopes bled into each other: guest=%v user=%v", guest, user)
	}
}
