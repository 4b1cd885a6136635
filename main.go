package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catatan/catatan/handlers"
	"github.com/catatan/catatan/internal/config"
	"github.com/catatan/catatan/internal/database"
	"github.com/catatan/catatan/internal/oidc"
	"github.com/catatan/catatan/internal/page/handler"
	"github.com/catatan/catatan/internal/page/service"
	"github.com/catatan/catatan/internal/sessions"
	"github.com/catatan/catatan/internal/tokens"
	"github.com/catatan/catatan/internal/users"
	"github.com/catatan/catatan/pkg/logger"
	"github.com/catatan/catatan/pkg/metrics"
	"github.com/catatan/catatan/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// stores bundles the page and user services over the configured backend.
type stores struct {
	pages   service.Service
	users   *users.Service
	closeFn func(context.Context) error
}

func main() {
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s redis=%v oidc=%v", cfg.Store.Driver, cfg.Redis.Enabled(), cfg.OIDC.Issuer != "")
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; login and locally issued tokens are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() { _ = st.closeFn(context.Background()) }()

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s unreachable, logout revocation and shared rate limits disabled: %v", cfg.Redis.Addr(), err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
			logger.Infof("connected to redis %s", cfg.Redis.Addr())
		}
	}
	blacklist := sessions.NewBlacklist(rdb)

	requireAuth := middleware.AuthMiddleware(buildVerifier(ctx, cfg), blacklist)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(cfg, st, rdb, blacklist, requireAuth),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("catatan listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

func newRouter(cfg *config.Config, st *stores, rdb *redis.Client, blacklist *sessions.Blacklist, requireAuth gin.HandlerFunc) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{"store": true}
		status := http.StatusOK
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := st.pages.Ping(pingCtx); err != nil {
			logger.Warnf("readiness: %v", err)
			deps["store"] = false
			status = http.StatusServiceUnavailable
		}
		if cfg.Redis.Enabled() {
			deps["redis"] = rdb != nil && rdb.Ping(pingCtx).Err() == nil
		}
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg, st.users, blacklist).Register(api, requireAuth)

	protected := []gin.HandlerFunc{requireAuth}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			protected = append(protected, middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			protected = append(protected, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handler.RegisterPageRoutes(api.Group("", protected...), st.pages)
	return r
}

// cors is a permissive policy for browser clients on other origins.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// buildVerifier chains the local JWT verifier (only with a secret) and the
// optional OIDC and insecure verifiers. An empty chain rejects every token.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	var chain middleware.ChainVerifier
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewVerifier(cfg.JWT.Secret))
	}
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.OIDC.AllowInsecure {
		logger.Warnf("accepting unsigned tokens (ALLOW_INSECURE_TOKEN=true)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	return chain
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := connectMongoWithRetry(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		pages, err := service.NewMongoService(ctx, db.Collection("pages"))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		userRepo, err := users.NewMongoUserRepository(ctx, db.Collection("users"))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{pages: pages, users: users.NewService(userRepo), closeFn: client.Disconnect}, nil

	case config.DriverPostgres, config.DriverSQLite:
		dialect, err := database.ParseDialect(cfg.Store.Driver)
		if err != nil {
			return nil, err
		}
		pool := database.Pool{
			MaxOpenConns:    cfg.SQL.MaxOpenConns,
			MaxIdleConns:    cfg.SQL.MaxIdleConns,
			ConnMaxLifetime: cfg.SQL.ConnMaxLifetime,
		}
		db, err := database.OpenSQL(ctx, dialect, cfg.SQL.DSN, pool, 10*time.Second)
		if err != nil {
			return nil, err
		}
		pages, err := service.NewSQLService(ctx, db, dialect)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		userRepo, err := users.NewSQLUserRepository(ctx, db, dialect)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			pages:   pages,
			users:   users.NewService(userRepo),
			closeFn: func(context.Context) error { return db.Close() },
		}, nil
	}
	logger.Warnf("using in-memory store; pages are lost on restart")
	return &stores{
		pages:   service.NewMemoryService(),
		users:   users.NewService(users.NewMemoryUserRepository()),
		closeFn: noop,
	}, nil
}

// connectMongoWithRetry tolerates a database that starts after the API.
func connectMongoWithRetry(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}
