package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"convoke/config"
	"convoke/internal/adapters/auth"
	"convoke/internal/adapters/email"
	httpdelivery "convoke/internal/delivery/http"
	"convoke/internal/delivery/http/controllers"
	"convoke/internal/delivery/http/middleware"
	"convoke/internal/domain"
	"convoke/internal/policy"
	"convoke/internal/repository/memory"
	"convoke/internal/repository/postgres"
	"convoke/internal/scheduler"
	"convoke/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 10
)

// repos bundles the repositories for one persistence backend.
type repos struct {
	events      domain.EventRepository
	invitations domain.InvitationRepository
	attendance  domain.AttendanceRepository
	users       domain.UserRepository
	resources   domain.ResourceRepository
}

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	httpServer *http.Server
	scheduler  *scheduler.Scheduler
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: config.NewLogger(cfg.Environment),
	}

	r, err := app.initRepos()
	if err != nil {
		return nil, fmt.Errorf("init repositories: %w", err)
	}

	if err := app.initServices(r); err != nil {
		return nil, fmt.Errorf("init services: %w", err)
	}

	return app, nil
}

func (a *App) initRepos() (*repos, error) {
	switch a.cfg.Store {
	case "postgres":
		db, err := sql.Open("postgres", a.cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(context.Background()); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		a.db = db
		a.logger.Info("database connected")
		return &repos{
			events:      postgres.NewEventRepository(db),
			invitations: postgres.NewInvitationRepository(db),
			attendance:  postgres.NewAttendanceRepository(db),
			users:       postgres.NewUserRepository(db),
			resources:   postgres.NewResourceRepository(db),
		}, nil
	case "memory":
		a.logger.Info("using in-memory store")
		return &repos{
			events:      memory.NewEventRepository(),
			invitations: memory.NewInvitationRepository(),
			attendance:  memory.NewAttendanceRepository(),
			users:       memory.NewUserRepository(),
			resources:   memory.NewResourceRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", a.cfg.Store)
	}
}

func (a *App) initServices(r *repos) error {
	clock := domain.SystemClock()
	locker := services.NewEventLocker()
	cities := policy.NewCityAllowList(a.cfg.AllowedCities)

	hasher := auth.NewBcryptHasher(bcryptCost)
	issuer, verifier := auth.NewJWTCodec(a.cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    a.cfg.EmailProvider,
		FromAddress: a.cfg.EmailFromAddress,
		FromName:    a.cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             a.cfg.SESRegion,
			AccessKeyID:        a.cfg.SESAccessKeyID,
			SecretAccessKey:    a.cfg.SESSecretAccessKey,
			InsecureSkipVerify: a.cfg.SESInsecureSkipTLS,
		},
	}, a.logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("init email templates: %w", err)
	}
	emailSvc := services.NewEmailService(mailer, renderer)

	eventSvc := services.NewEventService(r.events, r.resources, cities, clock, serviceTimeout)
	attendeeSvc := services.NewAttendeeService(r.events, r.attendance, r.users, locker, clock, serviceTimeout)
	invitationSvc := services.NewInvitationService(
		r.events, r.invitations, r.attendance, r.users,
		emailSvc, locker, clock, a.logger, serviceTimeout,
	)
	userSvc := services.NewUserService(
		r.users, hasher, issuer, verifier, a.cfg.TokenExpiry,
		emailSvc, a.cfg.ActivationURLBase, clock, a.logger, serviceTimeout,
	)

	if a.cfg.SeedDemoData && a.cfg.Store == "memory" {
		if err := seedDemoData(context.Background(), r, hasher, clock); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		a.logger.Info("demo data seeded")
	}

	a.scheduler = scheduler.New(eventSvc, a.logger)

	mux := httpdelivery.NewRouter(
		verifier,
		controllers.NewAuthController(a.logger, userSvc),
		controllers.NewEventController(a.logger, eventSvc),
		controllers.NewAttendanceController(a.logger, attendeeSvc),
		controllers.NewInvitationController(a.logger, invitationSvc, userSvc),
		controllers.NewResourceController(a.logger, eventSvc),
	)

	var handler http.Handler = mux
	handler = middleware.Recovery(a.logger, handler)
	handler = middleware.LoggingMiddleware(a.logger, handler)
	handler = middleware.CORS(a.cfg.CORSAllowedOrigins, handler)

	a.httpServer = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return nil
}

// Run starts the sweep scheduler and HTTP server, then blocks until a
// shutdown signal arrives or the server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.scheduler.Start(a.cfg.SweepCron); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info("shutting down")

	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close db: %w", err)
		}
	}

	a.logger.Info("app stopped")
	return nil
}
