package cart

import (
	"context"
	"regexp"

	"github.com/pawmart/storefront-backend/internal/upstream"
	"github.com/shopspring/decimal"
)

var nonNumericRe = regexp.MustCompile(`[^0-9.-]+`)

// dedupeLines groups candidates by product id, summing quantities and
// keeping first-seen metadata with display fallbacks applied. It returns the
// merged lines in insertion order plus the ids whose pre-fallback metadata
// was incomplete and needs a catalog backfill.
func dedupeLines(candidates []Line) ([]Line, []string) {
	index := make(map[string]int, len(candidates))
	merged := make([]Line, 0, len(candidates))
	incompleteSet := make(map[string]struct{})
	var incomplete []string

	for _, candidate := range candidates {
		if candidate.Image == "" || candidate.Brand == "" || candidate.Title == "" || candidate.Price == 0 {
			if _, seen := incompleteSet[candidate.ProductID]; !seen {
				incompleteSet[candidate.ProductID] = struct{}{}
				incomplete = append(incomplete, candidate.ProductID)
			}
		}

		if at, ok := index[candidate.ProductID]; ok {
			merged[at].Quantity += candidate.Quantity
			continue
		}

		line := candidate
		if line.Image == "" {
			line.Image = FallbackImage
		}
		if line.Brand == "" {
			line.Brand = FallbackBrand
		}
		if line.Title == "" {
			line.Title = FallbackTitle
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged, incomplete
}

// parseDisplayPrice extracts the numeric value out of a catalog display
// price such as "150.000₫".
func parseDisplayPrice(raw string) (float64, bool) {
	stripped := nonNumericRe.ReplaceAllString(raw, "")
	if stripped == "" {
		return 0, false
	}
	value, err := decimal.NewFromString(stripped)
	if err != nil {
		return 0, false
	}
	result, _ := value.Float64()
	return result, true
}

// mergeLines runs the full merge procedure: dedupe with fallbacks, then a
// single batch catalog lookup for the incomplete ids. Lookup failures are
// swallowed; the partially-filled result is still valid.
func (r *Reconciler) mergeLines(ctx context.Context, candidates []Line) []Line {
	merged, incomplete := dedupeLines(candidates)
	if len(incomplete) == 0 {
		return merged
	}

	products, err := r.catalog.LookupProducts(ctx, incomplete)
	if err != nil {
		r.logger.Warn(r.logger.WithField(ctx, "error", err.Error()), "cart.catalog_backfill_skipped")
		return merged
	}

	byID := make(map[string]upstream.CatalogProduct, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	for i := range merged {
		product, ok := byID[merged[i].ProductID]
		if !ok {
			continue
		}
		if product.Image != "" {
			merged[i].Image = product.Image
		}
		if product.Brand != "" {
			merged[i].Brand = product.Brand
		}
		if product.Title != "" {
			merged[i].Title = product.Title
		}
		if price, ok := parseDisplayPrice(product.OriginalPrice); ok {
			merged[i].Price = price
		}
	}

	return merged
}
