package controllers

import (
	"context"
	"net/http"

	"github.com/pawmart/storefront-backend/api/middleware"
	"github.com/pawmart/storefront-backend/api/responses"
	"github.com/pawmart/storefront-backend/api/validators"
	"github.com/pawmart/storefront-backend/internal/upstream"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

// SessionAPI is the auth surface of the commerce backend.
type SessionAPI interface {
	Login(ctx context.Context, payload upstream.LoginRequest) (*upstream.SessionUser, []*http.Cookie, error)
	Session(ctx context.Context, token string) (*upstream.SessionUser, error)
	Logout(ctx context.Context, token string) error
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin relays credentials to the auth service and forwards its session
// cookies to the browser.
func AuthLogin(api SessionAPI, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, cookies, err := api.Login(r.Context(), upstream.LoginRequest{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		for _, cookie := range cookies {
			http.SetCookie(w, cookie)
		}
		responses.WriteSuccess(w, sessionResponse{User: user})
	}
}

type sessionResponse struct {
	User *upstream.SessionUser `json:"user"`
}

// AuthSession reports the profile behind the session cookie, or a null user
// for guests. The profile comes from the upstream auth service, not from
// the locally verified claims, so revoked sessions read as guest.
func AuthSession(api SessionAPI, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromContext(r.Context())
		if token == "" {
			responses.WriteSuccess(w, sessionResponse{User: nil})
			return
		}

		user, err := api.Session(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionResponse{User: user})
	}
}

// AuthLogout revokes the session upstream and expires the local cookie.
func AuthLogout(api SessionAPI, cookieName string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromContext(r.Context())
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no session to revoke"))
			return
		}

		if err := api.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
