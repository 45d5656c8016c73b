package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/mail"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, pkgdb.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		SlowQuery:       cfg.DBSlowQuery,
	}, logger)
	if err == nil {
		err = pkgdb.Migrate(ctx, db)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	issuer, err := session.NewIssuer(session.SigningKey(cfg.SessionSecret), cfg.SessionTTL,
		session.WithSecureCookie(cfg.CookieSecure))
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	var events service.EventPublisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer, err = mykafka.NewProducer(brokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = producer
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS not set; events and mail are dropped")
	}

	gateway, err := payment.NewStripeClient(cfg.StripeURL, cfg.StripeSecretKey, cfg.StripeTimeout)
	if err != nil {
		log.Fatalf("payment: %v", err)
	}

	store := repo.New(db)
	catalog := &service.CatalogService{Items: store, Events: events}

	if cfg.SearchEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		es, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		cancel()
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		catalog.Index = search.NewItemIndex(es, cfg.ESIndex)
	}

	if cfg.StorageEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		images, err := storage.NewImageStore(ctx, storage.Config{
			BaseEndpoint:  cfg.S3BaseEndpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		cancel()
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		catalog.Images = images
	}

	auth := &service.AuthService{
		Users:       store,
		Sessions:    issuer,
		Mailer:      mail.NewDispatcher(events, cfg.MailFrom),
		Events:      events,
		FrontendURL: cfg.FrontendURL,
	}

	deps := &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: auth, Cookies: issuer},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Items: store, Cart: store, Events: events}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Cart: store, Orders: store, Gateway: gateway, Currency: cfg.Currency, Events: events,
		}},
		Session: middleware.NewSessionMiddleware(issuer, store),
		Ready: func(c echo.Context) error {
			return pkgdb.Ping(c.Request().Context(), db)
		},
	}

	opts := httpserver.Options{Logger: logger, AllowOrigins: []string{cfg.FrontendURL}}
	if cfg.CSRFEnabled {
		opts.CSRF = &csrf.Config{
			Secure:            cfg.CookieSecure,
			EnforceSameOrigin: true,
			TrustedOrigins:    []string{cfg.FrontendURL},
			SkipPaths:         []string{"/health/live", "/health/ready"},
		}
	}
	e := httpserver.New(deps, opts)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
