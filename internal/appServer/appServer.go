package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/college-events/config"
	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/database/memory"
	repository "github.com/ds124wfegd/college-events/internal/database/postgres"
	reportcache "github.com/ds124wfegd/college-events/internal/database/redis"
	"github.com/ds124wfegd/college-events/internal/service"
	"github.com/ds124wfegd/college-events/internal/transport"
	"github.com/ds124wfegd/college-events/internal/transport/middleware"

	"github.com/ds124wfegd/college-events/pkg/broker"
	"github.com/ds124wfegd/college-events/pkg/postgres"
	"github.com/ds124wfegd/college-events/pkg/redis"
	"github.com/ds124wfegd/college-events/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// closers are released in reverse order on shutdown.
type closers []func() error

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logrus.WithError(err).Warn("Failed to release resource")
		}
	}
}

func setupLogger(cfg *config.LogConfig) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func openStore(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
	if cfg.Driver == config.DriverMemory {
		logrus.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return repository.NewStore(db), nil
}

// setupPublishers connects the optional side channels. A channel that cannot
// start is logged and skipped; the engine works without any of them.
func setupPublishers(ctx context.Context, cfg *config.Config, release *closers) (service.MultiPublisher, service.ReportCache) {
	var (
		publishers service.MultiPublisher
		cache      service.ReportCache
	)

	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.WithError(err).Error("Redis unavailable, reports are not cached")
		} else {
			rc := reportcache.NewReportCache(client, cfg.Redis.CacheTTL, service.ReportGenerationKey)
			release.add("redis", rc.Close)
			publishers = append(publishers, rc)
			cache = rc
			logrus.Info("Report cache initialized")
		}
	}

	switch cfg.Broker.Driver {
	case config.BrokerRabbitMQ:
		rmq, err := broker.NewRabbitMQ(broker.RabbitMQConfig{
			URL:          cfg.Broker.URL,
			ExchangeName: cfg.Broker.Exchange,
			QueueName:    cfg.Broker.Queue,
		})
		if err != nil {
			logrus.WithError(err).Error("RabbitMQ unavailable, notifications are not published")
		} else {
			release.add("rabbitmq", rmq.Close)
			publishers = append(publishers, rmq)
		}
	case config.BrokerKafka:
		k, err := broker.NewKafka(cfg.Broker.Brokers, cfg.Broker.Topic)
		if err != nil {
			logrus.WithError(err).Error("Kafka unavailable, notifications are not published")
		} else {
			release.add("kafka", k.Close)
			publishers = append(publishers, k)
		}
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.BotToken == "" {
			logrus.Warn("Telegram bot token not provided, notifications disabled")
		} else if bot, err := telegram.NewBot(cfg.Telegram.BotToken); err != nil {
			logrus.WithError(err).Error("Telegram bot unavailable")
		} else if notifier, err := telegram.NewNotifier(bot, cfg.Telegram.ChatID); err != nil {
			logrus.WithError(err).Error("Telegram notifier disabled")
		} else {
			release.add("telegram", func() error { notifier.Wait(); return nil })
			publishers = append(publishers, notifier)
			logrus.WithField("bot", bot.UserName()).Info("Telegram bot initialized")
		}
	}

	return publishers, cache
}

func NewServer(cfg *config.Config) {
	setupLogger(&cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var release closers
	defer release.closeAll()

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	release.add("store", store.Close)

	publishers, cache := setupPublishers(ctx, cfg, &release)

	services := service.NewServices(store, publishers, cache, service.Options{
		PopularityWeights: cfg.Report.Popularity,
		RequireAttendance: cfg.Feedback.RequireAttendance,
	})

	// Setup HTTP server
	if cfg.IsProduction() || cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.Auth.Enabled && cfg.IsProduction() {
		logrus.Warn("Authentication is disabled in production, every request runs as admin")
	}

	router := transport.InitRoutes(transport.NewHandlers(services), transport.RouterConfig{
		Auth: middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			Secret:  cfg.Auth.Secret,
			Issuer:  cfg.Auth.Issuer,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        cfg.Server.AppVersion,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":    cfg.GetServerAddress(),
		"driver":  cfg.Database.Driver,
		"broker":  cfg.Broker.Driver,
		"version": cfg.Server.AppVersion,
	}).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
