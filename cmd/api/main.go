package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/fitcity-account-service/internal/config"
	"github.com/njprem/fitcity-account-service/internal/logging"
	"github.com/njprem/fitcity-account-service/internal/repository/postgres"
	"github.com/njprem/fitcity-account-service/internal/service"
	transport "github.com/njprem/fitcity-account-service/internal/transport/http"
	"github.com/njprem/fitcity-account-service/internal/transport/mail"
	"github.com/njprem/fitcity-account-service/internal/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogs, err := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Development:  cfg.IsDevelopment(),
		LogstashAddr: cfg.LogstashTCPAddr,
		Service:      "fitcity-account-service",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLogs()

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", zap.Error(err))
		closeLogs()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if cfg.EnvFile != "" {
		logger.Info("loaded environment file", zap.String("path", cfg.EnvFile))
	}

	hasher, err := util.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := util.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		return err
	}

	opts := postgres.Options{ConnectTimeout: cfg.DBConnectTimeout, MaxOpenConns: cfg.DBMaxOpenConns}
	primary, err := postgres.New(endpoint(cfg, cfg.DBPrimaryHost).DSN(), opts)
	if err != nil {
		return fmt.Errorf("primary database: %w", err)
	}
	defer primary.Close()
	replica, err := postgres.New(endpoint(cfg, cfg.DBReplicaHost).DSN(), opts)
	if err != nil {
		return fmt.Errorf("replica database: %w", err)
	}
	defer replica.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := postgres.Migrate(migrateCtx, primary.DB)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrations applied")
	}

	store := postgres.NewAccountStore(primary, replica, cfg.DBConnectTimeout, logger.Named("store"))

	var mailer service.PasswordResetSender
	if cfg.SMTPConfigured() {
		mailer = mail.NewPasswordResetMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.PasswordResetURL())
	} else {
		logger.Warn("SMTP not configured, password reset emails will only be logged")
		mailer = mail.NewLogMailer(logger.Named("mail"))
	}

	auth := service.NewAuthService(store, hasher, tokens, mailer, logger.Named("auth"))

	e := transport.NewRouter(cfg.AllowedOrigin, logger.Named("http"))
	transport.RegisterAuth(e, auth, cfg.IsDevelopment())
	transport.RegisterSwagger(e)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

func endpoint(cfg config.Config, host string) postgres.Endpoint {
	return postgres.Endpoint{
		Host:     host,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}
