package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts a fixed set of raw tokens.
type fakeVerifier map[string]map[string]interface{}

func (f fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if claims, ok := f[raw]; ok {
		return &fakeToken{data: claims}, nil
	}
	return nil, errors.New("invalid token")
}

var testVerifier = fakeVerifier{
	"goodtoken":  {"sub": "user1", "email": "test@example.com", "name": "Test"},
	"legacy":     {"id": "user2", "email": "legacy@example.com"},
	"no-subject": {"email": "anon@example.com"},
}

type fakeRevocations map[string]bool

func (f fakeRevocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if raw == "explode" {
		return false, errors.New("redis down")
	}
	return f[raw], nil
}

func authEngine(revoked RevocationChecker) *gin.Engine {
	g := gin.New()
	g.GET("/", AuthMiddleware(testVerifier, revoked), func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, id)
	})
	return g
}

func doAuth(g *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, doAuth(authEngine(nil), "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := authEngine(nil)
	for _, h := range []string{"BadHeader", "Basic abc", "Bearer ", "Bearer a b"} {
		require.Equal(t, http.StatusUnauthorized, doAuth(g, h).Code, h)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rw := doAuth(authEngine(nil), "Bearer forged")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.NotContains(t, rw.Body.String(), "user1")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := doAuth(authEngine(nil), "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got Identity
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, Identity{ID: "user1", Email: "test@example.com", Name: "Test"}, got)
}

func TestAuthMiddleware_IDClaimFallback(t *testing.T) {
	rw := doAuth(authEngine(nil), "Bearer legacy")
	require.Equal(t, http.StatusOK, rw.Code)
	var got Identity
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user2", got.ID)
}

func TestAuthMiddleware_RequiresSubject(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, doAuth(authEngine(nil), "Bearer no-subject").Code)
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	g := authEngine(fakeRevocations{"goodtoken": true})
	require.Equal(t, http.StatusUnauthorized, doAuth(g, "Bearer goodtoken").Code)
}

func TestAuthMiddleware_RevocationErrorFailsOpen(t *testing.T) {
	ver := fakeVerifier{"explode": {"sub": "user1"}}
	g := gin.New()
	g.GET("/", AuthMiddleware(ver, fakeRevocations{}), func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusOK, doAuth(g, "Bearer explode").Code)
}

func TestChainVerifier(t *testing.T) {
	chain := ChainVerifier{fakeVerifier{"a": {"sub": "from-a"}}, fakeVerifier{"b": {"sub": "from-b"}}}

	tok, err := chain.Verify(context.Background(), "b")
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "from-b", claims["sub"])

	_, err = chain.Verify(context.Background(), "c")
	require.Error(t, err)

	_, err = ChainVerifier{}.Verify(context.Background(), "a")
	require.Error(t, err)
}
