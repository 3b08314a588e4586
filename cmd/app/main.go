package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"financeagent/configs"
	"financeagent/internal/adapter"
	"financeagent/internal/database"
	delivery "financeagent/internal/delivery/http"
	"financeagent/internal/domain"
	"financeagent/internal/infra"
	"financeagent/internal/repository"
	"financeagent/internal/service"
	"financeagent/internal/tools"
	"financeagent/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize snapshot cache (optional)
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := infra.NewSnapshotCache(redisClient, time.Duration(cfg.Agent.CacheTTLSeconds)*time.Second)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	balRepo := repository.NewBalanceRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	limitRepo := repository.NewLimitRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	chatRepo := repository.NewChatRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	ensureDefaultUser(ctx, userRepo)

	// Initialize services
	advisorService := service.NewAdvisorService(txnRepo, balRepo, goalRepo, prefRepo, auditRepo, cache, cfg.Advisor)
	ledgerService := service.NewLedgerService(txnRepo, balRepo, goalRepo, limitRepo, cache, cfg.Advisor)
	reviewService := service.NewReviewService(userRepo, goalRepo, auditRepo)

	// Initialize the tool registry
	registry := tools.NewRegistry()
	tools.RegisterFinanceTools(registry, ledgerService, advisorService)
	tools.RegisterGoalTools(registry, ledgerService)
	tools.RegisterPortfolioTools(registry, portfolioRepo, advisorService)
	tools.RegisterProfileTools(registry, prefRepo, cache)
	tools.RegisterMarketTools(registry, tools.NewMarketClient(os.Getenv("ALPHAVANTAGE_API_KEY")))
	tools.RegisterUtilityTools(registry)

	// Initialize the language model bridge and agent
	llm := adapter.NewLLMBridge(cfg.LLM)
	agentService := usecase.NewAgentService(llm, registry, advisorService, chatRepo, auditRepo, prefRepo, cfg.Agent)

	// Nightly goal review
	scheduler := infra.NewScheduler(reviewService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:      delivery.NewAuthHandler(userRepo),
		ChatHandler:      delivery.NewChatHandler(agentService, chatRepo),
		DashboardHandler: delivery.NewDashboardHandler(userRepo, advisorService, ledgerService),
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("FinanceAgent starting on %s", addr)
	log.Printf("Environment: %s", cfg.Server.Env)
	log.Printf("Model: %s via %s", cfg.LLM.Model, cfg.LLM.URL)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}

// ensureDefaultUser makes sure a demo user exists so the chat UI works
// out of the box.
func ensureDefaultUser(ctx context.Context, userRepo domain.UserRepository) {
	existing, err := userRepo.GetByName(ctx, "default")
	if err != nil {
		log.Printf("[WARN] failed to look up default user: %v", err)
		return
	}
	if existing != nil {
		log.Printf("[OK] Using existing default user: %s", existing.ID)
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      "default",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Printf("[WARN] failed to create default user: %v", err)
		return
	}
	log.Printf("[OK] Created default user: %s", user.ID)
}
