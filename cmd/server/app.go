package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jukuhub/juku-api/internal/config"
	"github.com/jukuhub/juku-api/internal/events"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/notify"
	"github.com/jukuhub/juku-api/internal/platform/fcm"
	"github.com/jukuhub/juku-api/internal/platform/gemini"
	"github.com/jukuhub/juku-api/internal/platform/postgres"
	"github.com/jukuhub/juku-api/internal/service"
	"github.com/jukuhub/juku-api/internal/service/auth"
	"github.com/jukuhub/juku-api/internal/store"
	"github.com/jukuhub/juku-api/internal/task"
)

// application holds all the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore         store.UserStore
	questionStore     store.QuestionStore
	quotaStore        store.QuotaStore
	usageStore        store.UsageLogStore
	deviceStore       store.DeviceStore
	notificationStore store.NotificationStore

	// Platform adapters
	generator generation.Generator
	analyzer  generation.QuestionAnalyzer
	messenger notify.Messenger

	// Services
	jwtService          auth.JWTService
	passwordVerifier    auth.PasswordVerifier
	quotaService        *service.QuotaService
	lessonService       service.LessonService
	questionService     service.QuestionService
	notificationService service.NotificationService
	userService         service.UserService
	statsService        service.StatsService

	// Event system and background work
	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
	sweeper      *task.RetentionSweeper
}

// newApplication wires the full dependency graph: stores on the shared
// connection pool, platform adapters, services, event handling and the
// background workers. Background workers are started before returning so
// jobs stranded by a previous crash are recovered.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.questionStore = postgres.NewPostgresQuestionStore(db, logger)
	app.quotaStore = postgres.NewPostgresQuotaStore(db, logger)
	app.usageStore = postgres.NewPostgresUsageLogStore(db, logger)
	app.deviceStore = postgres.NewPostgresDeviceStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)

	llm, err := gemini.NewGeminiGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		// Same treatment as the push messenger below: without provider
		// credentials the server still serves everything else, and
		// generation calls fail cleanly per request.
		if !errors.Is(err, generation.ErrProviderUnavailable) {
			return nil, fmt.Errorf("failed to initialize content generator: %w", err)
		}
		logger.Warn("content provider not configured, generation calls will fail",
			"error", err.Error())
		degraded := &generation.UnavailableGenerator{}
		app.generator = degraded
		app.analyzer = degraded
	} else {
		app.generator = llm
		app.analyzer = llm
	}

	app.messenger, err = fcm.NewMessenger(ctx, logger, cfg.Push)
	if err != nil {
		// The dispatcher stays up without a provider: sends fail cleanly
		// and still produce notification records.
		if !errors.Is(err, notify.ErrProviderUnavailable) {
			return nil, fmt.Errorf("failed to initialize push messenger: %w", err)
		}
		logger.Warn("push provider not configured, notification sends will fail",
			"error", err.Error())
		app.messenger = &notify.UnavailableMessenger{}
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.quotaService = service.NewQuotaService(app.quotaStore, cfg.Quota.DailyLimit, logger)
	app.lessonService = service.NewLessonService(app.quotaService, app.generator, app.usageStore, logger)
	app.questionService = service.NewQuestionService(app.questionStore, app.userStore, app.eventEmitter, db, logger)
	app.notificationService = service.NewNotificationService(
		app.userStore, app.deviceStore, app.notificationStore, app.messenger, logger)
	app.userService = service.NewUserService(app.userStore, app.passwordVerifier, db, logger)
	app.statsService = service.NewStatsService(app.usageStore, logger)

	if err := app.setupBackgroundWork(); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// setupBackgroundWork builds the analysis pipeline (task factory, runner,
// event handler) and the quota retention sweeper, and starts both.
func (app *application) setupBackgroundWork() error {
	factory := task.NewQuestionAnalysisTaskFactory(
		app.questionStore, app.analyzer, app.usageStore, app.logger)

	app.taskRunner = task.NewTaskRunner(app.questionStore, factory, task.TaskRunnerConfig{
		WorkerCount:           app.config.Task.WorkerCount,
		QueueSize:             app.config.Task.QueueSize,
		StuckJobAge:           time.Duration(app.config.Task.StuckJobAgeMinutes) * time.Minute,
		StuckJobCheckInterval: time.Duration(app.config.Task.StuckJobCheckMinutes) * time.Minute,
	}, app.logger)

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	handler := task.NewAnalysisEventHandler(factory, app.taskRunner, app.logger)
	app.eventEmitter.RegisterHandler(handler)

	app.sweeper = task.NewRetentionSweeper(
		app.quotaStore,
		app.config.Quota.RetentionDays,
		time.Duration(app.config.Task.SweepIntervalHours)*time.Hour,
		app.logger,
	)
	app.sweeper.Start()

	return nil
}

// Run serves HTTP until the process is signalled, then cleans up.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup stops background workers and closes the database pool.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
