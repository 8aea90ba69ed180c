package main

import (
	"os"

	"go.uber.org/zap"

	"safetydesk/internal/config"
	"safetydesk/internal/crypto"
	"safetydesk/internal/handler"
	"safetydesk/internal/repository"
	"safetydesk/internal/server"
	"safetydesk/internal/service"
	"safetydesk/internal/stealth_client"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET is not set")
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Note cipher for encrypting internal notes and denial reasons
	noteCipher, err := crypto.NewNoteCipher()
	if err != nil {
		logger.Fatal("Failed to initialize note cipher", zap.Error(err))
	}

	// Initialize repositories
	agentRepo := repository.NewAgentRepository(db, logger)
	ticketRepo := repository.NewTicketRepository(db, logger)
	familyRepo := repository.NewFamilyRepository(db, logger)
	deviceRepo := repository.NewDeviceRepository(db, logger)
	accountRepo := repository.NewAccountRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)

	// Stealth window activator (notification service)
	stealthClient := stealth_client.NewClient(cfg.StealthWindow.URL, cfg.StealthWindow.DurationMinutes, logger)

	// Services
	authService := service.NewAuthService(agentRepo, jwtSecret, logger)
	escapeService := service.NewEscapeService(
		ticketRepo,
		familyRepo,
		deviceRepo,
		accountRepo,
		auditRepo,
		stealthClient,
		noteCipher,
		cfg.Verification.Minimum,
		logger,
	)

	// Handlers
	deps := server.Deps{
		JWTSecret:     jwtSecret,
		AuthHandler:   handler.NewAuthHandler(authService, logger),
		EscapeHandler: handler.NewEscapeHandler(escapeService, logger),
		SealedHandler: handler.NewSealedAuditHandler(escapeService, logger),
		TicketHandler: handler.NewTicketHandler(ticketRepo, noteCipher, logger),
		FamilyHandler: handler.NewFamilyHandler(escapeService, logger),
	}

	srv := server.NewServer(deps, logger)
	srv.Run(cfg.Server.Port)
}
