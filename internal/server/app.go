// Package server wires the reminder engine together: database and
// migrations, mail transport, dispatcher, schedulers and the admin
// gRPC and HTTP surfaces.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/config"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/httpapi"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/mail"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/metrics"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/reminders"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/retention"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/scheduler"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/kitlibrarian/internal/server/grpc"
)

const (
	retentionInitialDelay = 30 * time.Second
	retentionInterval     = 24 * time.Hour
)

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	clock      clock.Clock
	db         *sql.DB
	registry   *prometheus.Registry
	dispatcher *reminders.Dispatcher
	retention  *retention.Service
}

// NewApp connects to the database, applies migrations and builds every
// service. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	clk := clock.WallClock

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	transport, err := newTransport(ctx, c, clk, l)
	if err != nil {
		db.Close()
		return nil, err
	}

	d := reminders.NewDispatcher(reminders.Options{
		Enabled:     c.NotificationsEnabled,
		DueSoonDays: c.DueSoonDays,
		DedupWindow: c.DedupWindow,
		SendTimeout: c.SendTimeout,
		Concurrency: c.Concurrency,
	}, rm.Loans(db), rm.DeliveryLog(db), transport, clk, l, collector)

	ret := retention.NewService(db, rm, c.RetentionDays, clk, l, collector)

	return &App{
		config:     c,
		logger:     l,
		clock:      clk,
		db:         db,
		registry:   registry,
		dispatcher: d,
		retention:  ret,
	}, nil
}

// newTransport returns the SMTP transport, wrapped with the S3 archive
// when a bucket is configured.
func newTransport(ctx context.Context, c *config.Config, clk clock.Clock, l logging.Logger) (mail.Transport, error) {
	smtp := mail.NewSMTPTransport(mail.SMTPConfig{
		Enabled: c.NotificationsEnabled,
		Host:    c.SMTPHost,
		Port:    c.SMTPPort,
		User:    c.SMTPUser,
		Pass:    c.SMTPPass,
		From:    c.SMTPFrom,
	}, l)

	if c.ArchiveS3Bucket == "" {
		return smtp, nil
	}

	putter, err := mail.NewS3Client(ctx, mail.S3Config{
		Bucket:       c.ArchiveS3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	return mail.NewArchivingTransport(smtp, putter, c.ArchiveS3Bucket, c.SMTPFrom, clk, l), nil
}

// RunOnce runs a single reminder cycle right away, ignoring the send hour.
func (app *App) RunOnce(ctx context.Context) (reminders.Result, error) {
	return app.dispatcher.Trigger(ctx)
}

// Preview renders the reminder a borrower would get now without sending it.
func (app *App) Preview(ctx context.Context, borrowerID string) (reminders.Email, error) {
	return app.dispatcher.Preview(ctx, borrowerID)
}

func (app *App) Close() error {
	return app.db.Close()
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

func (app *App) schedulers() []*scheduler.Scheduler {
	reminderJob := scheduler.New(scheduler.Config{
		Name:         "reminders",
		InitialDelay: app.config.InitialDelay,
		Interval:     app.config.CheckInterval,
		Gate:         scheduler.HourGate(app.config.SendHour, time.Local),
		Job: func(ctx context.Context) error {
			res, err := app.dispatcher.Trigger(ctx)
			if err != nil {
				return err
			}
			app.logger.Info(ctx, "Reminder cycle finished", "sent", res.Sent, "skipped", res.Skipped, "total", res.Total)
			return nil
		},
	}, app.clock, app.logger)

	retentionJob := scheduler.New(scheduler.Config{
		Name:         "retention",
		InitialDelay: retentionInitialDelay,
		Interval:     retentionInterval,
		Job: func(ctx context.Context) error {
			_, err := app.retention.Run(ctx)
			return err
		},
	}, app.clock, app.logger)

	return []*scheduler.Scheduler{reminderJob, retentionJob}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.dispatcher, app.retention, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.dispatcher, app.retention, app.registry, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run starts the schedulers and both admin servers, and blocks until a
// termination signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"notifications_enabled", app.config.NotificationsEnabled,
		"send_hour", app.config.SendHour,
		"due_soon_days", app.config.DueSoonDays)

	app.initSignalHandler(cancelFunc)

	jobs := app.schedulers()
	for _, j := range jobs {
		j.Start(ctx)
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	for _, j := range jobs {
		j.Stop()
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
}
