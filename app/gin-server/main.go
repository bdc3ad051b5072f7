package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/buuzzer/config"
	"github.com/yoockh/buuzzer/internal/api/handlers"
	"github.com/yoockh/buuzzer/internal/api/middleware"
	"github.com/yoockh/buuzzer/internal/api/routes"
	"github.com/yoockh/buuzzer/internal/cache"
	"github.com/yoockh/buuzzer/internal/credentials"
	"github.com/yoockh/buuzzer/internal/logger"
	"github.com/yoockh/buuzzer/internal/models"
	"github.com/yoockh/buuzzer/internal/providers/stt"
	pgrepo "github.com/yoockh/buuzzer/internal/repositories/postgres"
	"github.com/yoockh/buuzzer/internal/services"
	"github.com/yoockh/buuzzer/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("config load")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	db, err := config.InitPostgres(cfg.PostgresURI)
	if err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")

	// Redis backs the preferences cache and the long-lived credential store
	var (
		prefCache  cache.Cache
		persistent credentials.Store
	)
	if target := cfg.RedisTarget(); target != "" {
		rdb, err := config.InitRedis(target)
		if err != nil {
			log.WithError(err).Fatal("Redis init error")
		}
		defer rdb.Close()
		prefCache = cache.NewRedisCache(rdb, "buuzzer:")
		persistent = credentials.NewRedisStore(rdb, cfg.CredentialPrefix, cfg.CredentialTTL)
		log.Info("Redis connected")
	} else {
		log.Warn("REDIS_ADDR/REDIS_URL not set; running without cache")
	}

	prefSvc := services.NewPreferencesService(pgrepo.NewPreferencesRepo(db), prefCache, cfg.PreferencesCacheTTL)

	// the caller's JWT is forwarded; a stored service token is the fallback
	tokens := credentials.ContextSource{Fallback: credentials.NewResolver(credentials.NewMemoryStore(), persistent, credentials.WithResolverLogger(log))}
	streams := stream.New(cfg.APIBase, tokens, stream.WithLogger(log))

	var speech stt.Provider
	if cfg.STTEnabled {
		g, err := stt.NewGoogleSpeech(ctx, stt.GoogleSpeechConfig{
			Encoding:     cfg.STTEncoding,
			SampleRateHz: cfg.STTSampleRate,
			Model:        cfg.STTModel,
		})
		if err != nil {
			log.WithError(err).Fatal("Google Speech init error")
		}
		defer g.Close()
		speech = g
	}

	defaultProvider, ok := models.ParseProvider(cfg.DefaultProvider)
	if !ok {
		log.WithField("provider", cfg.DefaultProvider).Warn("unknown DEFAULT_PROVIDER, using openai")
		defaultProvider = models.ProviderOpenAI
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth: middleware.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		Preferences: handlers.NewPreferencesHandler(prefSvc),
		Copilot: handlers.NewCopilotWSHandler(handlers.CopilotDeps{
			Streams:         streams,
			Preferences:     prefSvc,
			STT:             speech,
			STTLanguage:     cfg.STTLanguage,
			DefaultProvider: defaultProvider,
			HistoryCapacity: cfg.HistoryCapacity,
			Logger:          log,
		}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}
