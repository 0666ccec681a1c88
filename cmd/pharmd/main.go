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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pharmd/pharmd/internal/config"
	"github.com/pharmd/pharmd/internal/domain/appointment"
	"github.com/pharmd/pharmd/internal/domain/inventory"
	"github.com/pharmd/pharmd/internal/domain/patient"
	"github.com/pharmd/pharmd/internal/domain/prescription"
	"github.com/pharmd/pharmd/internal/domain/wallet"
	"github.com/pharmd/pharmd/internal/platform/apperr"
	"github.com/pharmd/pharmd/internal/platform/cache"
	"github.com/pharmd/pharmd/internal/platform/db"
	"github.com/pharmd/pharmd/internal/platform/middleware"
)

// walletAdapter adapts wallet.Service to the patient.Wallets interface,
// avoiding a circular import between the patient and wallet packages.
type walletAdapter struct {
	svc *wallet.Service
}

func (a *walletAdapter) CreateForPatient(ctx context.Context, patientID uuid.UUID) error {
	return a.svc.CreateForPatient(ctx, patientID)
}

func (a *walletAdapter) InfoForPatient(ctx context.Context, patientID uuid.UUID) (*patient.WalletInfo, error) {
	b, err := a.svc.GetBalance(ctx, patientID)
	if err != nil {
		// A patient without a wallet is still a readable patient.
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &patient.WalletInfo{ID: b.WalletID, Balance: b.Balance}, nil
}

// patientAdapter exposes patient existence checks to the prescription,
// wallet and appointment packages.
type patientAdapter struct {
	repo patient.Repository
}

func (a *patientAdapter) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.repo.Exists(ctx, id)
}

// medicationAdapter adapts inventory.Service to prescription.Medications.
type medicationAdapter struct {
	svc *inventory.Service
}

func (a *medicationAdapter) FindByName(ctx context.Context, name string) (*prescription.MedicationInfo, error) {
	m, err := a.svc.GetByName(ctx, name)
	if err != nil || m == nil {
		return nil, err
	}
	return &prescription.MedicationInfo{
		ID:            m.ID,
		UnitPrice:     m.UnitPrice,
		StockQuantity: m.StockQuantity,
	}, nil
}

func (a *medicationAdapter) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	return a.svc.DecrementStock(ctx, id, quantity)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pharmd",
		Short: "Pharmacy back-office API server",
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
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
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
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis cache is optional; without REDIS_URL every read goes to Postgres.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, caching disabled")
			redisClient = nil
		} else {
			logger.Info().Msg("connected to redis")
			defer redisClient.Close()
		}
	}
	appCache := cache.New(redisClient, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger, cfg.IsDev())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	patientRepo := patient.NewRepoPG(pool)
	medicationRepo := inventory.NewRepoPG(pool)
	prescriptionRepo := prescription.NewRepoPG(pool)
	walletRepo := wallet.NewRepoPG(pool)
	transactionRepo := wallet.NewTransactionRepoPG(pool)
	slotRepo := appointment.NewSlotRepoPG(pool)
	bookingRepo := appointment.NewBookingRepoPG(pool)

	runTx := db.PoolTxRunner(pool)
	patients := &patientAdapter{repo: patientRepo}

	// Services
	walletSvc := wallet.NewService(walletRepo, transactionRepo, patients, runTx, appCache)
	patientSvc := patient.NewService(patientRepo, &walletAdapter{svc: walletSvc}, runTx)
	inventorySvc := inventory.NewService(medicationRepo, appCache)
	prescriptionSvc := prescription.NewService(prescriptionRepo, patients, &medicationAdapter{svc: inventorySvc}, runTx)
	appointmentSvc := appointment.NewService(slotRepo, bookingRepo, patients, runTx)

	// Handlers
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	wallet.NewHandler(walletSvc).RegisterRoutes(apiV1)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
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
