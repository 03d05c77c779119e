package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/token"
	"github.com/dentallab/backend/pkg/response"
)

// IdentityKey is the gin context key the authenticated identity is stored under.
const IdentityKey = "identity"

// Authenticate extracts the bearer token and, when valid, attaches the
// caller's identity to the request context. Requests without a token or
// with a bad token are rejected with a code that distinguishes the three
// failure modes for clients.
func Authenticate(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, 401, "NO_TOKEN", "Authorization header required")
			return
		}

		// A malformed header carries no usable token, so it reports the
		// same way as an absent one.
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.AbortError(c, 401, "NO_TOKEN", "Authorization header must be 'Bearer <token>'")
			return
		}

		identity, err := issuer.VerifyAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				response.AbortError(c, 401, "TOKEN_EXPIRED", "Access token expired")
				return
			}
			response.AbortError(c, 401, "INVALID_TOKEN", "Invalid access token")
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireAuth rejects requests that carry no authenticated identity.
// It runs after Authenticate on routes that must not be anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			response.AbortError(c, 401, "UNAUTHORIZED", "Authentication required")
			return
		}
		c.Next()
	}
}

// RequireRole rejects authenticated callers holding none of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			response.AbortError(c, 401, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !identity.HasAnyRole(roles...) {
			response.AbortError(c, 403, "FORBIDDEN", "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated identity attached by Authenticate.
func GetIdentity(c *gin.Context) (*domain.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok
}
