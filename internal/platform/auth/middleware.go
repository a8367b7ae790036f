package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/platform/httperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller attached to the request context.
type Identity struct {
	AccountID uuid.UUID
	Name      string
	Email     string
	Role      string
}

// AccountResolver looks up the account referenced by a verified token. It
// returns httperr.NotFound when the account no longer exists.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, id uuid.UUID) (*Identity, error)
}

// Middleware validates the bearer credential, resolves it to a live account,
// and attaches the identity to the request context. A token whose account has
// been deleted is rejected: the credential no longer refers to anyone.
func Middleware(issuer *TokenIssuer, resolver AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return httperr.ToHTTP(httperr.Unauthenticatedf("missing authorization header"))
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return httperr.ToHTTP(httperr.Unauthenticatedf("invalid authorization format"))
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return httperr.ToHTTP(err)
			}

			accountID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return httperr.ToHTTP(httperr.Unauthenticatedf("invalid token"))
			}

			ident, err := resolver.ResolveAccount(c.Request().Context(), accountID)
			if err != nil {
				if httperr.KindOf(err) == httperr.NotFound {
					return httperr.ToHTTP(httperr.Unauthenticatedf("account no longer exists"))
				}
				return httperr.ToHTTP(err)
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, ident)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// IdentityFromContext returns the resolved caller, or nil outside a request.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

// WithIdentity returns a context carrying the given identity. Intended for tests.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}
