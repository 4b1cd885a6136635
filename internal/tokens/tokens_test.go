package tokens

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/catatan/catatan/internal/config"
	"github.com/catatan/catatan/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var seg = base64.RawURLEncoding

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	return cfg
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	u := &models.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}

	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	require.NoError(t, err)

	tok, err := NewVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-123", claims["sub"])
	require.Equal(t, "Test User", claims["name"])
	require.Equal(t, "test@example.com", claims["email"])

	left := ExpiresIn(claims, time.Now())
	require.True(t, left > time.Minute && left <= 2*time.Minute, left)
}

func TestGenerateAccessToken_RequiresSecret(t *testing.T) {
	_, err := GenerateAccessToken(testConfig(""), &models.User{ID: "u"}, time.Minute)
	require.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	cfg := testConfig("another-secret-32-bytes-longgggg")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{ID: "u2"}, -time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier(cfg.JWT.Secret).Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestVerify_WrongSecretFails(t *testing.T) {
	cfg := testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{ID: "u3"}, 2*time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewVerifier("x").Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

func TestVerify_AlgNoneRejected(t *testing.T) {
	headerEnc := seg.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := seg.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`))
	_, err := NewVerifier("x").Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

func TestVerify_MissingExpRejected(t *testing.T) {
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "forever"})
	raw, err := jt.SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewVerifier("k").Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerify_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tokenStr, err := GenerateAccessToken(cfg, &models.User{ID: "user-t"}, 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := seg.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = seg.EncodeToString([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))

	_, err = NewVerifier(cfg.JWT.Secret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestVerify_EmptySecretRejects(t *testing.T) {
	// HS256 signature computed with an empty key, as anyone could forge it.
	signing := seg.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		seg.EncodeToString([]byte(`{"sub":"victim-user","exp":9999999999}`))
	mac := hmac.New(sha256.New, []byte(""))
	mac.Write([]byte(signing))
	raw := signing + "." + seg.EncodeToString(mac.Sum(nil))

	tok, err := NewVerifier("").Verify(context.Background(), raw)
	require.ErrorIs(t, err, errNoSecret)
	require.Nil(t, tok)
}
