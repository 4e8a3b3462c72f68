package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codeb-platform/codeb-backend-go/internal/config"
	appHTTP "github.com/codeb-platform/codeb-backend-go/internal/handler/http"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/cron"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/database"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/jwt"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/keylock"
	"github.com/codeb-platform/codeb-backend-go/internal/pkg/sse"
	"github.com/codeb-platform/codeb-backend-go/internal/repository/postgresql"
	attendanceService "github.com/codeb-platform/codeb-backend-go/internal/service/attendance"
	evaluationService "github.com/codeb-platform/codeb-backend-go/internal/service/evaluation"
	reportService "github.com/codeb-platform/codeb-backend-go/internal/service/report"
	"github.com/codeb-platform/codeb-backend-go/internal/service/verification"
	workSettingsService "github.com/codeb-platform/codeb-backend-go/internal/service/worksettings"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return err
		}
		slog.Info("Database migrations applied")
	}

	transactor := postgresql.NewTransactor(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	sessionRepo := postgresql.NewWorkSessionRepository(db)
	changeRequestRepo := postgresql.NewChangeRequestRepository(db)
	presenceRepo := postgresql.NewPresenceCheckRepository(db)
	settingsRepo := postgresql.NewWorkSettingsRepository(db)
	wifiRepo := postgresql.NewWifiNetworkRepository(db)
	evaluationRepo := postgresql.NewEvaluationRepository(db)
	evaluatorRepo := postgresql.NewEvaluatorRepository(db)
	memberRepo := postgresql.NewMemberRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	hub := sse.NewHub()
	publisher := sse.NewPublisher(hub)
	locks := keylock.New()
	gate := verification.NewGate(wifiRepo, cfg.Verification.LookupTimeout)
	tz := cfg.Attendance.DefaultTimezone

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		sessionRepo,
		presenceRepo,
		settingsRepo,
		memberRepo,
		gate,
		publisher,
		locks,
		tz,
	)
	changeRequestSvc := attendanceService.NewChangeRequestService(
		transactor,
		attendanceRepo,
		sessionRepo,
		changeRequestRepo,
		memberRepo,
		publisher,
		locks,
	)
	maintenanceSvc := attendanceService.NewMaintenanceService(
		transactor,
		attendanceRepo,
		sessionRepo,
		settingsRepo,
		memberRepo,
		publisher,
		locks,
		tz,
	)
	settingsSvc := workSettingsService.NewWorkSettingsService(settingsRepo, wifiRepo, memberRepo, publisher, tz)
	evaluationSvc := evaluationService.NewEvaluationService(evaluationRepo, evaluatorRepo, memberRepo)
	reportSvc := reportService.NewReportService(attendanceRepo, sessionRepo, settingsRepo, memberRepo, tz)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(maintenanceSvc, cfg.Attendance.StaleSessionMaxAge, cfg.Cron.Interval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			RequestTimeout: cfg.App.RequestTimeout,
		},
		JWTService,
		appHTTP.Handlers{
			Attendance:    appHTTP.NewAttendanceHandler(attendanceSvc),
			ChangeRequest: appHTTP.NewChangeRequestHandler(changeRequestSvc),
			WorkSettings:  appHTTP.NewWorkSettingsHandler(settingsSvc),
			Report:        appHTTP.NewReportHandler(reportSvc),
			Evaluation:    appHTTP.NewEvaluationHandler(evaluationSvc),
			Stream:        appHTTP.NewStreamHandler(JWTService, memberRepo, hub, cfg.SSE.Keepalive),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
