// Package server initializes and runs the storage backend: it opens the
// database, runs migrations, wires the services and starts the HTTP server
// with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/josegonzalo071-svg/house-backend/internal/logging"
	"github.com/josegonzalo071-svg/house-backend/internal/notify"
	"github.com/josegonzalo071-svg/house-backend/internal/server/config"
	"github.com/josegonzalo071-svg/house-backend/internal/server/httpapi"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/repomanager"
	"github.com/josegonzalo071-svg/house-backend/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	authService   *services.AuthService
	itemService   *services.ItemService
	exportService *services.ExportService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	notifier := selectNotifier(cfg)

	as := services.NewAuthService(db, m, notifier, logger, cfg)
	is := services.NewItemService(db, m, logger, cfg)
	es := services.NewExportService(db, m, logger, cfg)

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		authService:   as,
		itemService:   is,
		exportService: es,
	}, nil
}

// selectNotifier returns the SMTP transport when mail settings are present,
// otherwise the Unconfigured variant that rejects sends.
func selectNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.SMTPConfigured() {
		return notify.None()
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.authService, app.itemService, app.exportService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
