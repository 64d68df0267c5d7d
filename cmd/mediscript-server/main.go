package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediscript/mediscript/internal/config"
	"github.com/mediscript/mediscript/internal/domain/consult"
	"github.com/mediscript/mediscript/internal/domain/identity"
	"github.com/mediscript/mediscript/internal/domain/patient"
	"github.com/mediscript/mediscript/internal/domain/prescribing"
	"github.com/mediscript/mediscript/internal/platform/auth"
	"github.com/mediscript/mediscript/internal/platform/db"
	"github.com/mediscript/mediscript/internal/platform/genai"
	"github.com/mediscript/mediscript/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mediscript-server",
		Short: "MediScript AI clinical documentation server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.BodyLimit("30M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	tokens := auth.NewTokens(cfg.JWTSecret)

	// Services
	identitySvc := identity.NewService(identity.NewUserRepoPG(pool))
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	prescribingSvc := prescribing.NewService(prescribing.NewRepoPG(pool), cfg.ClinicName)
	gen := genai.NewClient(cfg.OpenAIBase, cfg.OpenAIAPIKey)
	consultSvc := consult.NewService(consult.NewRepoPG(pool), patientSvc, prescribingSvc, gen, logger)

	// Routes: /api/auth/* is public, everything else behind the session.
	public := e.Group("/api")
	authed := e.Group("/api", auth.Middleware(tokens))

	identity.NewHandler(identitySvc, tokens, cfg.IsProduction()).RegisterRoutes(public, authed)
	patient.NewHandler(patientSvc).RegisterRoutes(authed)
	prescribing.NewHandler(prescribingSvc).RegisterRoutes(authed)
	consult.NewHandler(consultSvc).RegisterRoutes(authed)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
