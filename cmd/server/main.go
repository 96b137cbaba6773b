package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	adminhandler "sangham/internal/admin/handler"
	adminservice "sangham/internal/admin/service"
	adminstore "sangham/internal/admin/store"
	"sangham/internal/audit"
	audithandler "sangham/internal/audit/handler"
	httpapi "sangham/internal/http"
	"sangham/internal/platform/config"
	"sangham/internal/platform/httpserver"
	"sangham/internal/platform/kafka"
	"sangham/internal/platform/logger"
	"sangham/internal/platform/metrics"
	"sangham/internal/platform/postgres"
	platformredis "sangham/internal/platform/redis"
	submissionhandler "sangham/internal/submission/handler"
	submissionmetrics "sangham/internal/submission/metrics"
	submissionservice "sangham/internal/submission/service"
	submissionstore "sangham/internal/submission/store"
)

const auditRingSize = 1000

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checks := map[string]httpapi.HealthCheck{}

	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	subStore, auditStore, err := buildStores(ctx, db, log)
	if err != nil {
		return err
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var sessions adminservice.SessionStore
	if redisClient != nil {
		defer redisClient.Close()
		sessions = adminstore.NewRedis(redisClient)
		checks["sessions"] = redisClient.Health
	} else {
		log.Info("REDIS_URL not set, admin sessions are kept in process memory")
		sessions = adminstore.NewInMemory()
	}

	kafkaClient, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	publisherOpts := []audit.PublisherOption{audit.WithPublisherLogger(log)}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		publisherOpts = append(publisherOpts, audit.WithOutbox(cfg.Kafka.OutboxSize))
		checks["kafka"] = kafkaClient.Ping
		log.Info("forwarding audit events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(auditStore, publisherOpts...)

	subs, err := submissionservice.New(subStore,
		submissionservice.WithLogger(log),
		submissionservice.WithAuditPublisher(publisher),
		submissionservice.WithMetrics(submissionmetrics.New(reg)),
		submissionservice.WithDefaultCommunity(cfg.Registration.DefaultCommunity),
	)
	if err != nil {
		return err
	}
	checks["submissions"] = subs.Ping

	admins, err := adminservice.New(sessions, cfg.Admin,
		adminservice.WithLogger(log),
		adminservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		log.Warn("no admin password configured, admin login is disabled")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
		Sessions:       admins,
		Submissions:    submissionhandler.New(subs, log),
		Admin:          adminhandler.New(admins, log),
		Audit:          audithandler.New(publisher, log),
		HealthChecks:   checks,
	})
	srv := httpserver.New(cfg, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting sangham", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		publisher.Close()
		return err
	})
	if kafkaClient != nil {
		g.Go(func() error {
			return forwardAudit(gctx, kafkaClient, cfg.Kafka.AuditTopic, publisher, log)
		})
	}

	err = g.Wait()
	log.Info("server stopped", "audit_events_dropped", publisher.Dropped())
	return err
}

// buildStores picks Postgres when a database is configured and in-memory
// stores otherwise.
func buildStores(ctx context.Context, db *sql.DB, log *slog.Logger) (submissionservice.Store, audit.Store, error) {
	if db == nil {
		log.Info("DATABASE_URL not set, submissions are kept in memory")
		return submissionstore.NewInMemory(), audit.NewInMemoryStore(auditRingSize), nil
	}
	if err := submissionstore.Migrate(ctx, db); err != nil {
		return nil, nil, err
	}
	if err := audit.Migrate(ctx, db); err != nil {
		return nil, nil, err
	}
	return submissionstore.NewPostgres(db), audit.NewPostgresStore(db), nil
}

// forwardAudit drains the publisher outbox to Kafka until shutdown.
func forwardAudit(ctx context.Context, client *kgo.Client, topic string, publisher *audit.Publisher, log *slog.Logger) error {
	worker := audit.NewWorker(audit.NewKafkaSink(client, topic), publisher.Outbox(), log)
	return worker.Run(ctx)
}
