package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pawmart/storefront-backend/internal/upstream"
	"github.com/pawmart/storefront-backend/pkg/logger"
	"github.com/pawmart/storefront-backend/pkg/redis"
)

// API is the catalog surface of the commerce backend the service relays.
type API interface {
	ListProducts(ctx context.Context, q upstream.ListProductsQuery) ([]upstream.CatalogProduct, error)
	LookupProducts(ctx context.Context, ids []string) ([]upstream.CatalogProduct, error)
	GetProduct(ctx context.Context, id string) (json.RawMessage, error)
	ListReviews(ctx context.Context, productID string) (json.RawMessage, error)
	CreateReview(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error)
}

// Service fronts the catalog with a read-through Redis cache on product
// detail reads. Listings and reviews pass through uncached; they change too
// often to be worth the staleness.
type Service struct {
	api      API
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewService(api API, cache *redis.Client, cacheTTL time.Duration, logg *logger.Logger) *Service {
	return &Service{api: api, cache: cache, cacheTTL: cacheTTL, logger: logg}
}

// List relays the browse/search listing.
func (s *Service) List(ctx context.Context, q upstream.ListProductsQuery) ([]upstream.CatalogProduct, error) {
	return s.api.ListProducts(ctx, q)
}

// Lookup batch-reads catalog records by id.
func (s *Service) Lookup(ctx context.Context, ids []string) ([]upstream.CatalogProduct, error) {
	return s.api.LookupProducts(ctx, ids)
}

// Get serves a product detail document, from cache when possible. Cache
// failures degrade to the upstream read; a serving path never depends on
// Redis being up.
func (s *Service) Get(ctx context.Context, id string) (json.RawMessage, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		cached, err := s.cache.Get(ctx, s.cache.CatalogCacheKey(id))
		if err == nil {
			return json.RawMessage(cached), nil
		}
		if !redis.IsMissing(err) {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "catalog.cache_read_failed")
		}
	}

	doc, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, s.cache.CatalogCacheKey(id), string(doc), s.cacheTTL); err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "catalog.cache_write_failed")
		}
	}
	return doc, nil
}

// Reviews relays the review list for a product.
func (s *Service) Reviews(ctx context.Context, productID string) (json.RawMessage, error) {
	return s.api.ListReviews(ctx, productID)
}

// SubmitReview relays a review submission for the authenticated user.
func (s *Service) SubmitReview(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	return s.api.CreateReview(ctx, token, payload)
}
