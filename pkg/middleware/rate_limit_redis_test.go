package middleware

import (
	"net/http"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/catatan/catatan/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	// one request per minute-long window
	r.Use(RedisRateLimitMiddleware(client, 0, 1, time.Minute))
	r.GET("/r", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	rejected := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis"))
	require.Equal(t, http.StatusOK, serve(r, "/r"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/r"))
	require.Equal(t, rejected+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis")))

	// bucket keys expire shortly after their window
	m.FastForward(2 * time.Minute)
	require.Empty(t, m.Keys())
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	m.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 10, 10, time.Second))
	r.GET("/r", func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusInternalServerError, serve(r, "/r"))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.5, 1, time.Second))
	r.GET("/r", func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusOK, serve(r, "/r"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/r"))
}
