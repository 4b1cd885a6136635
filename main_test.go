package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/catatan/catatan/internal/config"
	"github.com/catatan/catatan/internal/models"
	"github.com/catatan/catatan/internal/tokens"
	"github.com/stretchr/testify/require"
)

func forgedToken(key []byte) string {
	seg := base64.RawURLEncoding
	signing := seg.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		seg.EncodeToString([]byte(`{"sub":"victim-user","exp":9999999999}`))
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(signing))
	return signing + "." + seg.EncodeToString(mac.Sum(nil))
}

func TestBuildVerifier_NoSecretAcceptsNothing(t *testing.T) {
	cfg := &config.Config{}

	_, err := buildVerifier(context.Background(), cfg).Verify(context.Background(), forgedToken(nil))
	require.Error(t, err)
}

func TestBuildVerifier_LocalTokens(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "main-test-secret-32-bytes-xxxxxxxx"
	ver := buildVerifier(context.Background(), cfg)

	raw, err := tokens.GenerateAccessToken(cfg, &models.User{ID: "u-1"}, time.Minute)
	require.NoError(t, err)
	_, err = ver.Verify(context.Background(), raw)
	require.NoError(t, err)

	_, err = ver.Verify(context.Background(), forgedToken(nil))
	require.Error(t, err)
}
