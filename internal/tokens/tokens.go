package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/catatan/catatan/internal/config"
	"github.com/catatan/catatan/internal/models"
	"github.com/catatan/catatan/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken creates a signed HS256 access token for the user.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	if cfg.JWT.Secret == "" {
		return "", errors.New("JWT secret is not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Name,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// ExpiresIn returns how long a token issued by this package stays valid.
// Used to size blacklist entries on logout.
func ExpiresIn(claims map[string]interface{}, now time.Time) time.Duration {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return 0
	}
	return time.Unix(int64(exp), 0).Sub(now)
}

type claimsToken jwt.MapClaims

func (t claimsToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return errors.New("unsupported claims target")
	}
	*m = map[string]interface{}(t)
	return nil
}

var errNoSecret = errors.New("tokens: no signing secret configured")

// Verifier checks tokens produced by GenerateAccessToken. Without a secret it
// rejects every token.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if len(v.secret) == 0 {
			return nil, errNoSecret
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claimsToken(claims), nil
}
