package cartstore

import (
	"fmt"

	"github.com/pawmart/storefront-backend/internal/cart"
	"github.com/pawmart/storefront-backend/pkg/config"
	"github.com/pawmart/storefront-backend/pkg/db"
	"github.com/pawmart/storefront-backend/pkg/redis"
)

// New selects the durable cart backend the configuration names.
func New(cfg config.CartConfig, redisClient *redis.Client, dbClient *db.Client) (cart.Store, error) {
	switch cfg.Backend {
	case config.CartBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis cart backend selected but no redis client configured")
		}
		return NewRedisStore(redisClient), nil
	case config.CartBackendDatabase:
		if dbClient == nil {
			return nil, fmt.Errorf("database cart backend selected but no database configured")
		}
		return NewDBStore(dbClient), nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", cfg.Backend)
	}
}
