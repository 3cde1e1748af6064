package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/aio-strategy/internal/application"
	appanalysis "github.com/bryanwahyu/aio-strategy/internal/application/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/config"
	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/infra/ai/gemini"
	"github.com/bryanwahyu/aio-strategy/internal/infra/ai/openai"
	"github.com/bryanwahyu/aio-strategy/internal/infra/auth"
	"github.com/bryanwahyu/aio-strategy/internal/infra/auth/firebase"
	"github.com/bryanwahyu/aio-strategy/internal/infra/auth/jwt"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/firestore"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/aio-strategy/internal/infra/db/mysql"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/postgres"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/sqlite"
	"github.com/bryanwahyu/aio-strategy/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/aio-strategy/internal/infra/storage"
	"github.com/bryanwahyu/aio-strategy/internal/logger"
	"github.com/bryanwahyu/aio-strategy/internal/middleware"
)

// store is a repository that can also report its health.
type store interface {
	domain.Repository
	middleware.HealthChecker
}

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Log.Fatalf("config load error: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("logger init error: %v", err)
	}
	log := logger.Log

	ctx := context.Background()

	repo, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	metrics := middleware.NewMetrics()
	svc := &appanalysis.Service{
		Store:      repo,
		Completion: newCompletion(cfg),
		Verifier:   newVerifier(cfg, log),
		Clock:      application.SystemClock{},
		Log:        log,
		Metrics:    metrics,
		Timeout:    time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
	}
	if cfg.Completion.APIKey == "" {
		log.Warnf("no %s API key configured: analyze requests will fail", cfg.Completion.Provider)
	}

	handler := httpserver.NewRouter(httpserver.Options{
		Service: svc,
		Metrics: metrics,
		Checkers: map[string]middleware.HealthChecker{
			"store": repo,
			"completion": middleware.ConfiguredChecker{
				Ok:     cfg.Completion.APIKey != "",
				Reason: "completion API key is not set",
			},
		},
		Ready:          repo,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// completion may take the full request timeout, plus the best-effort save
		WriteTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second + appanalysis.DefaultPersistTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":     addr,
			"store":    cfg.Store.Driver,
			"provider": cfg.Completion.Provider,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

func newCompletion(cfg *config.Config) domain.CompletionService {
	c := cfg.Completion
	if c.Provider == "openai" {
		return openai.NewClient(c.APIKey, c.BaseURL, c.Model, c.Temperature, c.MaxOutputTokens)
	}
	return gemini.NewClient(c.APIKey, c.Model, c.Temperature, int32(c.MaxOutputTokens))
}

// newVerifier prefers Firebase, then a shared JWT secret. With neither,
// every authenticated request is rejected.
func newVerifier(cfg *config.Config, log logrus.FieldLogger) domain.IdentityVerifier {
	a := cfg.Auth
	switch {
	case a.FirebaseProjectID != "":
		log.WithField("project", a.FirebaseProjectID).Info("auth: firebase")
		return firebase.NewVerifier(a.FirebaseProjectID, a.FirebaseServiceAccountPath, log)
	case a.JWTSecret != "":
		log.Info("auth: shared-secret jwt")
		return jwt.NewVerifier(a.JWTSecret, a.JWTIssuer, log)
	default:
		log.Warn("auth: no identity provider configured, authenticated endpoints will reject")
		return auth.Disabled{}
	}
}

// openStore opens the configured backend. On failure it logs and
// continues with the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store, func()) {
	s, closeFn, err := dialStore(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Store.Driver).
			Error("store unavailable, running with in-memory store")
		return memory.NewAnalysisRepository(), func() {}
	}
	log.WithField("driver", cfg.Store.Driver).Info("store ready")
	return s, closeFn
}

func dialStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case "memory":
		return memory.NewAnalysisRepository(), noop, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo := sqlite.NewAnalysisRepository(db)
		return withSchema(ctx, db, repo, repo.EnsureSchema)
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := mysqlp.NewAnalysisRepository(db)
		return withSchema(ctx, db, repo, repo.EnsureSchema)
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewAnalysisRepository(db)
		return withSchema(ctx, db, repo, repo.EnsureSchema)
	case "firestore":
		repo := firestore.NewAnalysisRepository(cfg.Auth.FirebaseProjectID, cfg.Auth.FirebaseServiceAccountPath)
		if cfg.Store.FirestoreCollection != "" {
			repo.Collection = cfg.Store.FirestoreCollection
		}
		if err := repo.Check(ctx); err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case "minio":
		m := cfg.Minio
		s, err := minioStore.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func withSchema(ctx context.Context, db *sql.DB, s store, ensure func(context.Context) error) (store, func(), error) {
	if err := ensure(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, func() { db.Close() }, nil
}
