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

	"github.com/gin-gonic/gin"
	httpapi "github.com/immxrtalbeast/presensi/internal/api/http"
	"github.com/immxrtalbeast/presensi/internal/config"
	"github.com/immxrtalbeast/presensi/internal/database"
	"github.com/immxrtalbeast/presensi/internal/domain"
	"github.com/immxrtalbeast/presensi/internal/metrics"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/service"
	"github.com/immxrtalbeast/presensi/internal/session"
	"github.com/immxrtalbeast/presensi/lib/logger/sl"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveRun(ctx, cfg, log)
		},
	}
}

func serveRun(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect database", sl.Err(err))
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", sl.Err(err))
		}
	}()

	userRepo := repository.NewGormUserRepository(db)
	meetingRepo := repository.NewGormMeetingRepository(db)
	participantRepo := repository.NewGormParticipantRepository(db)
	attendanceRepo := repository.NewGormAttendanceRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)

	var (
		m              *metrics.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		m = metrics.New(reg)
		metricsHandler = metrics.Handler(reg)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty, sessions will not survive a restart")
	}

	clock := domain.SystemClock{}
	sessions := session.NewManager(sessionRepo, userRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, clock)

	userService := service.NewUserService(userRepo, sessions, cfg.Auth.BcryptCost, log)
	reconciler := service.NewReconciler(participantRepo, attendanceRepo, loc, m, log)
	meetingService := service.NewMeetingService(meetingRepo, participantRepo, attendanceRepo, userRepo, reconciler, clock, loc, log)
	checkInService := service.NewCheckInService(meetingRepo, participantRepo, attendanceRepo, clock, loc, m, log)

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpapi.SetupRouter(sessions, httpapi.Controllers{
		Auth:     httpapi.NewAuthController(userService),
		Users:    httpapi.NewUserController(userService),
		Meetings: httpapi.NewMeetingController(meetingService),
		QR: httpapi.NewQRController(meetingService, httpapi.QROptions{
			Clock:   clock,
			Tick:    cfg.QR.Tick,
			PNGSize: cfg.QR.PNGSize,
			Metrics: m,
			Log:     log,
		}),
		Attendance: httpapi.NewAttendanceController(checkInService, meetingService),
	}, httpapi.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MetricsPath:    cfg.Metrics.Path,
		Metrics:        metricsHandler,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Info("starting application",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server stopped", sl.Err(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
