// Package server wires configuration, storage, services and the HTTP API
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/config"
	"github.com/StormRens/Fake-Twitter/internal/server/httpapi"
	"github.com/StormRens/Fake-Twitter/internal/server/notify"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/memory"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/repomanager"
	"github.com/StormRens/Fake-Twitter/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	mailbox io.Closer
	server  *httpapi.HTTPServer
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		tx     dbx.Transactor
		rm     repomanager.RepositoryManager
		db     *sql.DB
		health httpapi.Pinger
	)

	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		tx, rm = store, store
	} else {
		var err error
		db, err = sqlOpen("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}

		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		tx = dbx.NewSQLTransactor(db, nil)
		health = db
	}

	notifier, mailbox, err := newNotifier(ctx, c, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	tokens := auth.NewTokens(c.SecretKey, c.TokenValidityDuration)
	svc := httpapi.Services{
		Accounts: services.NewAccountService(tx, rm, tokens, notifier, c, logger),
		Graph:    services.NewGraphService(tx, rm, logger),
		Posts:    services.NewPostService(tx, rm, logger),
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		mailbox: mailbox,
		server:  httpapi.NewHTTPServer(c, logger, svc, tokens, health),
	}, nil
}

// newNotifier picks the mail transport. The dev mailbox never shares stdout
// with the JSON log, since mails carry verification tokens. The returned
// closer is nil unless a mailbox file was opened.
func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, io.Closer, error) {
	switch c.EmailProvider {
	case config.EmailProviderLog, "":
		if c.MailboxPath == "" {
			return notify.NewLogNotifier(os.Stderr, logger), nil, nil
		}
		f, err := os.OpenFile(c.MailboxPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("mailbox open error: %w", err)
		}
		return notify.NewLogNotifier(f, logger), f, nil
	case config.EmailProviderSES:
		n, err := notify.NewSESNotifier(ctx, notify.SESConfig{
			Region:    c.SESRegion,
			AccessKey: c.SESAccessKey,
			SecretKey: c.SESSecretKey,
			Endpoint:  c.SESEndpoint,
			From:      c.EmailFrom,
		}, logger)
		return n, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown email provider %q", c.EmailProvider)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.mailbox != nil {
		_ = app.mailbox.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
}
