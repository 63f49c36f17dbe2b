package cartstore

import (
	"context"
	"encoding/json"

	"github.com/pawmart/storefront-backend/internal/cart"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/redis"
)

// RedisStore keeps one JSON document per identity scope. Entries have no
// TTL; carts survive until an explicit clear or a successful checkout.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, scope string) ([]cart.Line, bool, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(scope))
	if redis.IsMissing(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading cart entry")
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart entry")
	}
	return lines, true, nil
}

func (s *RedisStore) Save(ctx context.Context, scope string, lines []cart.Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart entry")
	}
	if err := s.client.Set(ctx, s.client.CartKey(scope), string(payload), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing cart entry")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, s.client.CartKey(scope)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart entry")
	}
	return nil
}
