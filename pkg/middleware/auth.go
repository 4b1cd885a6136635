package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/catatan/catatan/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey   = "claims"
	IdentityKey = "identity"
	TokenKey    = "token"
)

// Token is a verified token that can expose its claims.
type Token interface {
	Claims(v interface{}) error
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// RevocationChecker reports whether a token was revoked (e.g. by logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// Identity is the authenticated caller. ID is the owner of every page the
// caller touches.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	if !ok || id.ID == "" {
		return Identity{}, false
	}
	return id, true
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// AuthMiddleware verifies the bearer token with ver, rejects revoked tokens
// when revoked is non-nil, and stores the caller's claims and Identity.
func AuthMiddleware(ver Verifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		raw, ok := bearerToken(auth)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), raw)
			if err != nil {
				// fail open
				logger.Warnf("token revocation check failed: %v", err)
			} else if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			logger.Debugf("token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}
		id := claimString(claims, "sub")
		if id == "" {
			id = claimString(claims, "id")
		}
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(IdentityKey, Identity{ID: id, Email: claimString(claims, "email"), Name: claimString(claims, "name")})
		c.Set(TokenKey, raw)
		c.Next()
	}
}

var errNoVerifier = errors.New("no token verifier configured")

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []Verifier

func (cv ChainVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	var lastErr error
	for _, v := range cv {
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoVerifier
	}
	return nil, lastErr
}
