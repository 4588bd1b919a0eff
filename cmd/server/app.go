package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	apiMiddleware "github.com/dcastillo/tasktrail-api/internal/api/middleware"
	"github.com/dcastillo/tasktrail-api/internal/config"
	"github.com/dcastillo/tasktrail-api/internal/events"
	"github.com/dcastillo/tasktrail-api/internal/history"
	"github.com/dcastillo/tasktrail-api/internal/jobs"
	"github.com/dcastillo/tasktrail-api/internal/platform/mail"
	"github.com/dcastillo/tasktrail-api/internal/platform/postgres"
	"github.com/dcastillo/tasktrail-api/internal/scheduler"
	"github.com/dcastillo/tasktrail-api/internal/service"
	"github.com/dcastillo/tasktrail-api/internal/service/auth"
)

// application holds the shared dependencies of the server. Everything is
// wired once in newApplication and torn down in cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	taskService    service.TaskService
	userService    service.UserService
	catalogService service.CatalogService
	teamService    service.TeamService

	authLimiter *apiMiddleware.RateLimiter
	jobRunner   *jobs.JobRunner
	scheduler   *scheduler.Scheduler
}

// Auth endpoints are rate limited per client IP to slow down credential
// stuffing. Ten requests per second with a short burst is generous for
// interactive clients.
const (
	authRequestsPerSecond = 10
	authBurst             = 20
)

// newApplication wires stores, services, the notification pipeline, and the
// maintenance scheduler. The job runner and scheduler are started before
// returning; callers own cleanup().
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	// Stores
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)
	assignmentStore := postgres.NewPostgresAssignmentStore(db, logger)
	changeRecordStore := postgres.NewPostgresChangeRecordStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)
	templateStore := postgres.NewPostgresTemplateStore(db, logger)
	jobStore := postgres.NewPostgresJobStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	teamStore := postgres.NewPostgresTeamStore(db, logger)

	// Change tracking
	recorder := history.NewRecorder(changeRecordStore, logger)

	// Outbound mail. Without an SMTP host, notifications go to the log,
	// which keeps local development free of mail infrastructure.
	var mailer mail.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:        cfg.Mail.Host,
			Port:        cfg.Mail.Port,
			Username:    cfg.Mail.Username,
			Password:    cfg.Mail.Password,
			FromAddress: cfg.Mail.FromAddress,
		}, logger)
	} else {
		logger.Info("no SMTP host configured, logging notifications instead")
		mailer = mail.NewLogMailer(logger)
	}

	// Notification pipeline: services emit events, the handler turns them
	// into persistent jobs, the runner delivers them.
	emitter := events.NewInMemoryEventEmitter(logger)

	notificationFactory, err := jobs.NewNotificationJobFactory(
		taskStore, userStore, mailer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification job factory: %w", err)
	}

	jobRunner := jobs.NewJobRunner(jobStore, jobs.JobRunnerConfig{
		WorkerCount: cfg.Worker.Count,
		QueueSize:   cfg.Worker.QueueSize,
		StuckJobAge: time.Duration(cfg.Worker.StuckJobAgeMinutes) * time.Minute,
	}, logger)
	jobRunner.RegisterReconstructor(jobs.JobTypeNotification, notificationFactory.Reconstruct)

	emitter.RegisterHandler(
		jobs.NewNotificationEventHandler(notificationFactory, jobRunner, logger))

	if err := jobRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	// Auth
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	passwordVerifier := auth.NewBcryptVerifier()

	// Services
	taskService, err := service.NewTaskService(service.TaskServiceConfig{
		DB:          db,
		Tasks:       taskStore,
		Comments:    commentStore,
		Assignments: assignmentStore,
		History:     changeRecordStore,
		Users:       userStore,
		Templates:   templateStore,
		Recorder:    recorder,
		Emitter:     emitter,
		Logger:      logger,
	})
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	userService, err := service.NewUserService(
		userStore, teamStore, jwtService, passwordVerifier, logger)
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	catalogService, err := service.NewCatalogService(tagStore, templateStore, logger)
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}

	teamService, err := service.NewTeamService(teamStore, logger)
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create team service: %w", err)
	}

	// Maintenance scheduler
	sweeper := scheduler.NewOverdueSweeper(db, taskStore, recorder, emitter, logger)
	summarizer := scheduler.NewDailySummarizer(taskStore, userStore, mailer, logger)
	purger := scheduler.NewArchivePurger(
		taskStore, cfg.Scheduler.ArchivedRetentionDays, logger)

	sched, err := scheduler.New(cfg.Scheduler, sweeper, summarizer, purger, logger)
	if err != nil {
		jobRunner.Stop()
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sched.Start()

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		taskService:      taskService,
		userService:      userService,
		catalogService:   catalogService,
		teamService:      teamService,
		authLimiter:      apiMiddleware.NewRateLimiter(rate.Limit(authRequestsPerSecond), authBurst),
		jobRunner:        jobRunner,
		scheduler:        sched,
	}, nil
}

// cleanup stops background processing and closes the database. Safe to call
// exactly once, after the HTTP server has stopped accepting requests.
func (app *application) cleanup() {
	app.logger.Info("stopping scheduler")
	app.scheduler.Stop()

	app.logger.Info("stopping job runner")
	app.jobRunner.Stop()

	app.authLimiter.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
