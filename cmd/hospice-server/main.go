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

	"github.com/hospicetrack/hospicetrack/internal/config"
	"github.com/hospicetrack/hospicetrack/internal/domain/chat"
	"github.com/hospicetrack/hospicetrack/internal/domain/checklist"
	"github.com/hospicetrack/hospicetrack/internal/domain/patient"
	syncdomain "github.com/hospicetrack/hospicetrack/internal/domain/sync"
	"github.com/hospicetrack/hospicetrack/internal/platform/auth"
	"github.com/hospicetrack/hospicetrack/internal/platform/kvstore"
	"github.com/hospicetrack/hospicetrack/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospice-server",
		Short: "Hospice case-management dashboard API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// app bundles the wired services shared by the serve, export, and
// import commands.
type app struct {
	cfg          *config.Config
	logger       zerolog.Logger
	patientSvc   *patient.Service
	checklistSvc *checklist.Service
	chatSvc      *chat.Service
	syncSvc      *syncdomain.Service
	pg           *kvstore.PGStore
	closers      []func()
}

func (a *app) Close() {
	for _, fn := range a.closers {
		fn()
	}
}

func newApp(ctx context.Context, logger zerolog.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	var store kvstore.Store
	switch cfg.StorageDriver {
	case "postgres":
		pg, err := kvstore.NewPGStore(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.pg = pg
		a.closers = append(a.closers, pg.Close)
		store = pg
		logger.Info().Msg("connected to database")
	case "redis":
		rs, err := kvstore.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.closers = append(a.closers, func() { rs.Close() })
		store = rs
		logger.Info().Msg("connected to redis")
	default:
		store = kvstore.NewMemoryStore()
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
	}

	patientRepo := patient.NewRepoKV(store, logger)
	checklistRepo := checklist.NewRepoKV(store, logger)
	chatRepo := chat.NewRepoKV(store, logger)

	a.patientSvc = patient.NewService(patientRepo, logger)
	a.checklistSvc = checklist.NewService(checklistRepo, a.patientSvc, logger)
	a.chatSvc = chat.NewService(chatRepo, a.patientSvc, logger)

	// Archive and delete transitions fan out to the dependent domains.
	a.patientSvc.AddListener(a.checklistSvc)
	a.patientSvc.AddListener(a.chatSvc)

	sheetClient := syncdomain.NewClient(cfg.SheetBackendURL, logger)
	a.syncSvc = syncdomain.NewService(sheetClient, patientRepo, a.patientSvc, a.checklistSvc, logger)

	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	ctx := context.Background()
	a, err := newApp(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()
	cfg := a.cfg

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevMiddleware())
	} else {
		e.Use(auth.Middleware([]byte(cfg.SessionSecret)))
	}

	apiV1 := e.Group("/api/v1")
	patient.NewHandler(a.patientSvc).RegisterRoutes(apiV1)
	checklist.NewHandler(a.checklistSvc).RegisterRoutes(apiV1)
	chat.NewHandler(a.chatSvc).RegisterRoutes(apiV1)
	syncdomain.NewHandler(a.syncSvc).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if a.pg != nil {
		e.GET("/health/db", a.pg.HealthHandler())
	}

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

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export patient collections to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			logger := newLogger()
			ctx := context.Background()
			a, err := newApp(ctx, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.syncSvc.ExportWorkbook(ctx)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exported patient workbook to %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("out", "patients.xlsx", "Output workbook path")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Intake patients from an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			if in == "" {
				return fmt.Errorf("--in is required")
			}

			logger := newLogger()
			ctx := context.Background()
			a, err := newApp(ctx, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			count, err := a.syncSvc.ImportWorkbook(ctx, f)
			if err != nil {
				return fmt.Errorf("import failed after %d patient(s): %w", count, err)
			}
			fmt.Printf("Imported %d patient(s) from %s\n", count, in)
			return nil
		},
	}
	cmd.Flags().String("in", "", "Input workbook path")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if user == "" {
				return fmt.Errorf("--user is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.SessionSecret == "" {
				return fmt.Errorf("SESSION_SECRET is not configured")
			}

			token, err := auth.IssueToken([]byte(cfg.SessionSecret), user, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "Subject for the token")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
