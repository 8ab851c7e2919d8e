package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabpoll/internal/config"
	"vocabpoll/internal/handler"
	"vocabpoll/internal/llm"
	"vocabpoll/internal/middleware"
	"vocabpoll/internal/repository/postgres"
	"vocabpoll/internal/scheduler"
	"vocabpoll/internal/service"
	"vocabpoll/internal/telegram"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting vocabpoll bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}
	quiet, err := cfg.QuietHours()
	if err != nil {
		logger.Fatal("Failed to load quiet hours", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.Bool("webhook", cfg.Webhook.URL != ""),
		zap.Bool("openai", cfg.OpenAIEnabled()),
	)

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	pairRepo := postgres.NewPairRepo(db)
	actionRepo := postgres.NewActionRepo(db)
	pollRepo := postgres.NewPollRepo(db)
	suggestionRepo := postgres.NewSuggestionRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: newPoller(cfg),
		OnError: func(err error, c tele.Context) {
			logger.Error("Unhandled bot error", zap.Error(err), zap.String("request_id", requestID(c)))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	messenger := telegram.NewMessenger(bot, logger)
	sched := scheduler.New(scheduleRepo, loc, logger)

	var (
		translator service.Translator
		suggester  service.Suggester
	)
	if cfg.OpenAIEnabled() {
		client := llm.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.SourceLanguage, cfg.OpenAI.TargetLanguage, logger)
		translator = client
		suggester = client
	}

	// Initialize services
	userService := service.NewUserService(userRepo, sched, messenger, cfg.Telegram.AdminIDs, logger)
	suggestionService := service.NewSuggestionService(
		userRepo, pairRepo, suggestionRepo, suggester, messenger, userService,
		service.SuggestionConfig{
			Concurrency: cfg.Suggestions.Concurrency,
			Retries:     cfg.Suggestions.Retries,
			Count:       service.DefaultSuggestionConfig().Count,
			HistorySize: service.DefaultSuggestionConfig().HistorySize,
		},
		logger,
	)
	cleanupService := service.NewCleanupService(pollRepo, suggestionRepo, logger)

	// Initialize handler
	h := handler.NewHandler(handler.Services{
		Users:       userService,
		Actions:     service.NewActionService(actionRepo, pairRepo, sched, translator, logger),
		Pairs:       service.NewPairService(pairRepo),
		Quizzes:     service.NewQuizService(pairRepo, actionRepo, pollRepo, messenger, quiet, logger),
		Suggestions: suggestionService,
	}, messenger, cfg.Telegram.AdminChatID, logger)

	bot.Use(middleware.RequestLogger(logger), middleware.Recover(logger))
	h.RegisterHandlers(bot)
	if err := bot.SetCommands(commands); err != nil {
		logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	logger.Info("Handlers registered")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Schedule jobs
	sched.SetPollFunc(h.HandlePolling)
	if err := sched.Restore(ctx); err != nil {
		logger.Fatal("Failed to restore polling schedules", zap.Error(err))
	}
	if suggester != nil {
		if err := sched.AddJob(cfg.Suggestions.Schedule, "suggestions", suggestionService.SuggestAll); err != nil {
			logger.Fatal("Failed to schedule suggestions", zap.Error(err))
		}
	}
	if err := sched.AddJob(cfg.Suggestions.CleanupSchedule, "cleanup", cleanupService.CleanupStalePolls); err != nil {
		logger.Fatal("Failed to schedule cleanup", zap.Error(err))
	}
	sched.Start(ctx)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	sched.Stop()

	logger.Info("Bot stopped gracefully")
}

var commands = []tele.Command{
	{Text: "add_pair", Description: "Add a new translation pair"},
	{Text: "delete_pair", Description: "Delete a translation pair"},
	{Text: "list_pairs", Description: "Show your translation pairs"},
	{Text: "set_polling_rate_in_minutes", Description: "Poll me every N minutes"},
	{Text: "set_polling_rate_in_hours", Description: "Poll me every N hours"},
	{Text: "cancel", Description: "Cancel the current operation"},
	{Text: "help", Description: "Show help"},
}

// newPoller uses a webhook when a public URL is configured and long polling otherwise
func newPoller(cfg *config.Config) tele.Poller {
	if cfg.Webhook.URL == "" {
		return &tele.LongPoller{Timeout: 10 * time.Second}
	}
	return &tele.Webhook{
		Listen:   cfg.Webhook.Listen,
		Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
	}
}

func requestID(c tele.Context) string {
	if c == nil {
		return ""
	}
	return middleware.RequestID(c)
}

const (
	connectAttempts = 30
	connectBackoff  = 2 * time.Second
)

// connectDatabase waits for postgres to accept connections
func connectDatabase(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		cancel()
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(10)
			db.SetConnMaxIdleTime(10 * time.Minute)
			return db, nil
		}

		lastErr = err
		logger.Warn("Database is not ready",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", connectBackoff),
			zap.Error(err),
		)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", connectAttempts, lastErr)
}

// runMigrations runs database migrations
func runMigrations(db *sqlx.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db.DB, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
