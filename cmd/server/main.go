package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/aggregator"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/config"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/export"
	httpserver "github.com/Vriksh-Net/vriksh-reimbursement-app/internal/interfaces/http"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/repository"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/workflow"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/pkg/database"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/pkg/utils"
)

func main() {
	gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense approval workflow service",
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	reportRepo := repository.NewReportRepository(db.DB, logger)
	eventRepo := repository.NewEventRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	categoryRepo := repository.NewCategoryRepository(db.DB, logger)

	// Initialize workflow engine and analytics
	engine := workflow.NewEngine(db, reportRepo, eventRepo, logger)
	agg := aggregator.New(reportRepo, logger)
	excelWriter := export.NewExcelWriter(logger)

	// Initialize HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		engine,
		agg,
		excelWriter,
		reportRepo,
		eventRepo,
		userRepo,
		categoryRepo,
		logger,
	)

	// Run until interrupted; Start shuts down gracefully on context cancel
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
