package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// DraftStatus names the outcome variants of an order-draft read. The caller
// pattern-matches the variant to its recovery behavior instead of sniffing
// strings.
type DraftStatus int

const (
	DraftOK DraftStatus = iota
	DraftAuthRequired
	DraftNotFound
	DraftMalformed
	DraftTransportError
)

// DraftProduct is a line item as the order-draft endpoint returns it. Display
// metadata is not part of this shape; the cart backfills it from the catalog.
type DraftProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// DraftItem is a full cart line as the order-draft write endpoints accept it.
type DraftItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Brand     string  `json:"brand"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// DraftReadResult carries the outcome of GetDraft. Products is only
// meaningful when Status is DraftOK.
type DraftReadResult struct {
	Status   DraftStatus
	Products []DraftProduct
	Err      error
}

// GetDraft reads the authenticated user's remote cart draft.
func (c *Client) GetDraft(ctx context.Context, token string) DraftReadResult {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/order_products", token, nil)
	if err != nil {
		return DraftReadResult{Status: DraftTransportError, Err: err}
	}

	resp, err := c.do(req, "order_products")
	if err != nil {
		return DraftReadResult{Status: DraftTransportError, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp)
		return DraftReadResult{Status: DraftAuthRequired}
	case resp.StatusCode == http.StatusNotFound:
		drain(resp)
		return DraftReadResult{Status: DraftNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err := statusError(resp, "order draft read")
		drain(resp)
		return DraftReadResult{Status: DraftTransportError, Err: err}
	}

	var payload struct {
		Products []DraftProduct `json:"products"`
	}
	if err := readJSONBody(resp, &payload); err != nil {
		return DraftReadResult{Status: DraftMalformed, Err: err}
	}
	return DraftReadResult{Status: DraftOK, Products: payload.Products}
}

// ReplaceDraft overwrites the remote draft with the full line list. The
// acknowledgement body is ignored.
func (c *Client) ReplaceDraft(ctx context.Context, token string, items []DraftItem) error {
	body := struct {
		Products []DraftItem `json:"products"`
	}{Products: items}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/order_products", token, body)
	if err != nil {
		return err
	}
	resp, err := c.do(req, "order_products")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, "order draft replace")
	}
	return nil
}

// UpdateDraftItem adjusts the quantity of a single remote line.
func (c *Client) UpdateDraftItem(ctx context.Context, token, productID string, quantity int) error {
	body := struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	req, err := c.newRequest(ctx, http.MethodPut, "/api/order_products", token, body)
	if err != nil {
		return err
	}
	resp, err := c.do(req, "order_products")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, "order draft update")
	}
	return nil
}

// DeleteDraftItem removes a single line from the remote draft.
func (c *Client) DeleteDraftItem(ctx context.Context, token, productID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/order_products/"+url.PathEscape(productID), token, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req, "order_products")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, "order draft delete")
	}
	return nil
}
