package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/datanav/velruse/internal/adapter/cache"
	"github.com/datanav/velruse/internal/config"
	httptransport "github.com/datanav/velruse/internal/http"
	"github.com/datanav/velruse/internal/http/handler"
	apimiddleware "github.com/datanav/velruse/internal/middleware"
	"github.com/datanav/velruse/internal/openid"
	"github.com/datanav/velruse/internal/server"
	"github.com/datanav/velruse/internal/session"
	"github.com/datanav/velruse/internal/telemetry"
	"github.com/datanav/velruse/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newRedisClient,
			newAttemptStore,
			newResultStore,
			newSessionStore,
			newTokenExchange,
			newRelyingParty,
			newHooks,
			newConsumer,
			newRateLimiter,
			newAuthHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// Named store types keep the three key namespaces apart in the fx graph.
type (
	attemptStore struct{ *cache.RedisStore }
	resultStore  struct{ *cache.RedisStore }
)

func newAttemptStore(client redis.UniversalClient) attemptStore {
	return attemptStore{cache.NewRedisStore(client, "openid:attempt:")}
}

func newResultStore(client redis.UniversalClient) resultStore {
	return resultStore{cache.NewRedisStore(client, "openid:result:")}
}

func newSessionStore(client redis.UniversalClient, cfg config.Config) *session.Store {
	return session.NewStore(cache.NewRedisStore(client, "session:"), cfg.SessionTTL)
}

func newTokenExchange(store resultStore, cfg config.Config) *token.Exchange {
	return token.NewExchange(store, cfg.ResultTTL)
}

func newRelyingParty() openid.RelyingParty {
	return openid.NewRelyingParty()
}

func newHooks(cfg config.Config) openid.Hooks {
	switch cfg.Provider {
	case "google":
		return &openid.GoogleHooks{
			ConsumerKey: cfg.GoogleConsumerKey,
			Scope:       cfg.GoogleOAuthScope,
		}
	case "yahoo":
		return openid.YahooHooks{}
	default:
		return openid.BaseHooks{}
	}
}

func newConsumer(
	rp openid.RelyingParty,
	hooks openid.Hooks,
	attempts attemptStore,
	sessions *session.Store,
	tokens *token.Exchange,
	cfg config.Config,
	logger *zap.Logger,
) openid.Consumer {
	return openid.NewConsumer(rp, hooks, attempts, sessions, tokens, openid.Config{
		Realm:         cfg.Realm,
		EndpointRegex: cfg.EndpointRegex,
		AttemptTTL:    cfg.AttemptTTL,
	}, logger)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newAuthHandler(consumer openid.Consumer, tokens *token.Exchange, cfg config.Config, logger *zap.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(consumer, tokens, session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cfg.SessionTTL,
	}, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
