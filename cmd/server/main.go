package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/lbocquet/tombola/internal/config"
	"github.com/lbocquet/tombola/internal/logging"
	"github.com/lbocquet/tombola/internal/mail"
	"github.com/lbocquet/tombola/internal/store"
	"github.com/lbocquet/tombola/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"article", cfg.Import.Article,
		"prod_mail", cfg.Mail.Prod,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		slog.Error("failed to configure mail delivery", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(st, notifier, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildNotifier selects Gmail delivery when credentials are configured and
// falls back to the log sink otherwise, so local development needs no OAuth
// setup.
func buildNotifier(cfg *config.Config) (mail.Notifier, error) {
	mailCfg := mail.Config{
		Sender:        cfg.Mail.Sender,
		Prod:          cfg.Mail.Prod,
		TestRecipient: cfg.Mail.TestRecipient,
	}

	if cfg.Mail.CredentialsJSON == "" {
		slog.Info("no Gmail credentials configured, emails will be logged only")
		return &mail.LogNotifier{Config: mailCfg}, nil
	}

	n, err := mail.NewGmailNotifier([]byte(cfg.Mail.CredentialsJSON), mailCfg, mail.NewMemoryTokenStore())
	if err != nil {
		return nil, err
	}
	slog.Info("Gmail delivery configured", "sender", cfg.Mail.Sender, "prod", cfg.Mail.Prod)
	return n, nil
}
