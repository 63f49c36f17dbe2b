package upstream

import (
	"context"
	"net/http"
)

// PlaceOrderRequest is the full checkout payload the backend expects.
type PlaceOrderRequest struct {
	UserID     string      `json:"userId"`
	Items      []DraftItem `json:"items"`
	Address    string      `json:"address"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email"`
	TotalPrice float64     `json:"totalPrice"`
	Date       string      `json:"date"`
}

// OrderUser carries the contact snapshot stored on a server-side order record.
type OrderUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// OrderRecord is one server-side order row; several rows may share an
// order_code and are collapsed by the cart layer on read.
type OrderRecord struct {
	OrderCode string      `json:"order_code"`
	Total     float64     `json:"total"`
	CreatedAt string      `json:"created_at"`
	User      OrderUser   `json:"user"`
	Products  []DraftItem `json:"products"`
}

// PlaceOrder submits the checkout payload and returns the server-assigned
// order code. Unlike the read paths, every failure here surfaces to the
// caller; no local state may be committed on error.
func (c *Client) PlaceOrder(ctx context.Context, token string, payload PlaceOrderRequest) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/order_products/place", token, payload)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req, "place_order")
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return "", statusError(resp, "place order")
	}

	var body struct {
		Order struct {
			OrderCode string `json:"order_code"`
		} `json:"order"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return "", err
	}
	return body.Order.OrderCode, nil
}

// OrderHistory lists the raw order records for the authenticated user.
func (c *Client) OrderHistory(ctx context.Context, token string) ([]OrderRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/order_products/history", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "order_history")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "order history")
	}

	var body struct {
		Orders []OrderRecord `json:"orders"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body.Orders, nil
}
