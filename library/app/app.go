package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/biblioteca-service/library/config"
	"github.com/Astemirdum/biblioteca-service/library/internal/events"
	"github.com/Astemirdum/biblioteca-service/library/internal/handler"
	"github.com/Astemirdum/biblioteca-service/library/internal/repository"
	"github.com/Astemirdum/biblioteca-service/library/internal/server"
	"github.com/Astemirdum/biblioteca-service/library/internal/service"
	"github.com/Astemirdum/biblioteca-service/library/migrations"
	"github.com/Astemirdum/biblioteca-service/pkg/circuit_breaker"
	"github.com/Astemirdum/biblioteca-service/pkg/kafka"
	"github.com/Astemirdum/biblioteca-service/pkg/logger"
	"github.com/Astemirdum/biblioteca-service/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "biblioteca")
	defer log.Sync() //nolint:errcheck

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo: %w", err)
	}

	var opts []service.Option
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka.NewProducer: %w", err)
		}
		publisher := events.NewPublisher(producer, cfg.Kafka.LoanTopicName(), circuit_breaker.NewFromConfig(cfg.Breaker), log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("publisher.Close", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(publisher))
	} else {
		log.Warn("kafka brokers are not configured, loan events are not published")
	}

	svc := service.NewService(repo, log, opts...)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case termSig := <-sig:
		log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("server run: %w", err)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// Migrate applies the embedded schema and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "migrate")
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close()

	if err = postgres.Migrate(db, migrations.MigrationFiles); err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("db", cfg.Database.NameDB))
	return nil
}
