package upstream

import (
	"context"
	"net/http"

	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
)

// SessionUser is the profile the auth service reports for a live session.
type SessionUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// LoginRequest carries the credentials relayed to the auth service.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login relays credentials and returns the profile plus the session cookies
// the auth service issued; the storefront forwards those to the browser
// unchanged so the cookie stays the auth service's to mint and revoke.
func (c *Client) Login(ctx context.Context, payload LoginRequest) (*SessionUser, []*http.Cookie, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", "", payload)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.do(req, "auth_login")
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email hoặc mật khẩu không đúng")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, nil, statusError(resp, "login")
	}

	cookies := resp.Cookies()
	var body struct {
		User *SessionUser `json:"user"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return nil, nil, err
	}
	return body.User, cookies, nil
}

// Session resolves the session cookie against the auth service. A 401 maps
// to a nil user without error; the storefront treats that as guest.
func (c *Client) Session(ctx context.Context, token string) (*SessionUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/session", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, "auth_session")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drain(resp)
		return nil, statusError(resp, "auth session")
	}

	var body struct {
		User *SessionUser `json:"user"`
	}
	if err := readJSONBody(resp, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

// Logout revokes the session on the auth service.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no session to revoke")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/logout", token, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req, "auth_logout")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, "logout")
	}
	return nil
}
