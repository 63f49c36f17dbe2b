package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// CatalogProduct is the product shape of the catalog lookup endpoint.
// OriginalPrice is a display string ("150.000₫") and needs numeric
// extraction before it can be used as a price.
type CatalogProduct struct {
	ID            string `json:"_id"`
	Image         string `json:"image"`
	Brand         string `json:"brand"`
	Title         string `json:"title"`
	OriginalPrice string `json:"originalPrice"`
	Category      string `json:"category,omitempty"`
}

// ListProductsQuery narrows a catalog listing.
type ListProductsQuery struct {
	Category string
	Search   string
}

// LookupProducts batch-reads catalog records for the given ids.
func (c *Client) LookupProducts(ctx context.Context, ids []string) ([]CatalogProduct, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))

	req, err := c.newRequest(ctx, http.MethodGet, "/api/products?"+query.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "products")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "catalog lookup")
	}

	var body struct {
		Products []CatalogProduct `json:"products"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

// ListProducts proxies the catalog listing used by the browse and search views.
func (c *Client) ListProducts(ctx context.Context, q ListProductsQuery) ([]CatalogProduct, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}

	path := "/api/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "products")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "catalog list")
	}

	var body struct {
		Products []CatalogProduct `json:"products"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

// GetProduct relays a single product detail document unmodified; the backend
// owns that shape and the storefront has no reason to re-model it.
func (c *Client) GetProduct(ctx context.Context, id string) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "product_detail")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "product detail")
	}

	var body json.RawMessage
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListReviews relays the review list for a product.
func (c *Client) ListReviews(ctx context.Context, productID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("productId", productID)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/reviews?"+query.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "reviews")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "review list")
	}

	var body json.RawMessage
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// CreateReview relays a review submission for the authenticated user.
func (c *Client) CreateReview(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/reviews", token, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "reviews")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "review create")
	}

	var body json.RawMessage
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body, nil
}
