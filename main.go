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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"healthcare-app-client/internal/api"
	"healthcare-app-client/internal/appointments"
	"healthcare-app-client/internal/config"
	"healthcare-app-client/internal/doctors"
	"healthcare-app-client/internal/handlers"
	"healthcare-app-client/internal/middleware"
	"healthcare-app-client/internal/models"
	"healthcare-app-client/internal/prescriptions"
	"healthcare-app-client/internal/routes"
	"healthcare-app-client/internal/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "healthcare-app-client",
		Short:         "Appointment booking client for the healthcare backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd(), registerCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(appointmentsCmd(), appointmentCmd(), bookCmd(), cancelCmd(), completeCmd())
	rootCmd.AddCommand(prescriptionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the services every command is built from.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	guard      *session.Guard
	client     *api.Client
	directory  *doctors.Directory
	controller *appointments.Controller
	rx         *prescriptions.Controller
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	logger := newLogger(cfg)

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening credential store: %w", err)
	}

	guard := session.NewGuard(session.NewDBStore(db), session.WithLogger(logger.With().Str("component", "session").Logger()))
	client := api.NewClient(cfg.APIBaseURL, guard, api.WithLogger(logger.With().Str("component", "api").Logger()))
	controller := appointments.NewController(client, guard, appointments.WithLogger(logger.With().Str("component", "appointments").Logger()))
	rx := prescriptions.NewController(client, guard, prescriptions.WithLogger(logger.With().Str("component", "prescriptions").Logger()))

	guard.OnLogout(func() {
		logger.Info().Msg("returning to login")
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		guard:      guard,
		client:     client,
		directory:  doctors.NewDirectory(client),
		controller: controller,
		rx:         rx,
	}, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	// command output goes to stdout, logs stay on stderr
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the patient and doctor portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runServer()
		},
	}
}

func (a *app) runServer() error {
	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{a.cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Session:      a.guard,
		Auth:         handlers.NewAuthHandler(a.client, a.guard),
		Doctors:      handlers.NewDoctorHandler(a.directory),
		Appointment:  handlers.NewAppointmentHandler(a.controller),
		Prescription: handlers.NewPrescriptionHandler(a.rx),
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("port", a.cfg.Port).Str("api", a.cfg.APIBaseURL).Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	a.logger.Info().Msg("shutting down portal")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
