package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pawmart/storefront-backend/pkg/config"
	pkgerrors "github.com/pawmart/storefront-backend/pkg/errors"
)

// Identity is the verified subject of a session cookie. Email doubles as the
// cart scope for authenticated users.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	jwt.RegisteredClaims
}

// Verifier decodes session cookies locally against the shared signing
// secret, so identity resolution does not cost an upstream round trip.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}, nil
}

// Verify parses and validates a session token. Any failure, from a bad
// signature to a missing email claim, yields an unauthorized error; callers
// treat that as a guest session rather than a request failure.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no session token")
	}

	var claims sessionClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}
	if !parsed.Valid {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session token")
	}

	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	if email == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session token carries no identity")
	}

	return Identity{
		Email:   email,
		Name:    claims.Name,
		Address: claims.Address,
		Phone:   claims.Phone,
	}, nil
}
