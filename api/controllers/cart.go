package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/storefront-backend/api/middleware"
	"github.com/pawmart/storefront-backend/api/responses"
	"github.com/pawmart/storefront-backend/api/validators"
	cartsvc "github.com/pawmart/storefront-backend/internal/cart"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

// CartSession is the per-request cart surface the handlers drive. The
// reconciler satisfies it; tests substitute stubs.
type CartSession interface {
	Sync(ctx context.Context)
	Lines() []cartsvc.Line
	Add(ctx context.Context, line cartsvc.Line) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	PlaceOrder(ctx context.Context, items []cartsvc.Line, address, phone, email string) (string, error)
	OrderHistory(ctx context.Context) []cartsvc.Order
}

// CartFactory builds the cart session for one identity scope. Each request
// gets its own; carts share no state between requests beyond the store.
type CartFactory func(scope, token string) (CartSession, error)

func cartForRequest(r *http.Request, factory CartFactory) (CartSession, error) {
	scope := cartsvc.GuestScope
	token := ""
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		scope = identity.Email
		token = middleware.TokenFromContext(r.Context())
	}
	session, err := factory(scope, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cart session")
	}
	return session, nil
}

type cartResponse struct {
	Items []cartsvc.Line `json:"items"`
}

// CartFetch reconciles and returns the cart for the current identity.
func CartFetch(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session.Sync(r.Context())
		responses.WriteSuccess(w, cartResponse{Items: session.Lines()})
	}
}

type addLineRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Title     string  `json:"title"`
	Brand     string  `json:"brand"`
	Image     string  `json:"image"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
}

// CartAdd reconciles, then inserts or increments a line.
func CartAdd(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.Sync(r.Context())
		err = session.Add(r.Context(), cartsvc.Line{
			ProductID: payload.ProductID,
			Title:     payload.Title,
			Brand:     payload.Brand,
			Image:     payload.Image,
			Price:     payload.Price,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{Items: session.Lines()})
	}
}

type updateQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CartUpdateQuantity sets a line's quantity; values below one clamp to one.
func CartUpdateQuantity(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.Sync(r.Context())
		if err := session.UpdateQuantity(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{Items: session.Lines()})
	}
}

// CartRemove drops one line by product id.
func CartRemove(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}

		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.Sync(r.Context())
		if err := session.Remove(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{Items: session.Lines()})
	}
}

// CartClear empties the cart locally; the remote draft is left alone.
func CartClear(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := session.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{Items: []cartsvc.Line{}})
	}
}

type checkoutRequest struct {
	Items   []addLineRequest `json:"items" validate:"required,min=1,dive"`
	Address string           `json:"address" validate:"required"`
	Phone   string           `json:"phone" validate:"required"`
	Email   string           `json:"email" validate:"required,email"`
}

type checkoutResponse struct {
	OrderCode string `json:"orderCode"`
}

// Checkout places the order and, on success, returns the assigned code.
func Checkout(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cartsvc.Line, len(payload.Items))
		for i, item := range payload.Items {
			items[i] = cartsvc.Line{
				ProductID: item.ProductID,
				Title:     item.Title,
				Brand:     item.Brand,
				Image:     item.Image,
				Price:     item.Price,
				Quantity:  item.Quantity,
			}
		}

		session.Sync(r.Context())
		code, err := session.PlaceOrder(r.Context(), items, payload.Address, payload.Phone, payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{OrderCode: code})
	}
}

type orderHistoryResponse struct {
	Orders []cartsvc.Order `json:"orders"`
}

// OrderHistory lists the current user's collapsed orders. Guests get an
// empty list, not an error.
func OrderHistory(factory CartFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cartForRequest(r, factory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderHistoryResponse{Orders: session.OrderHistory(r.Context())})
	}
}
