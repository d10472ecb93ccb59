// Worker - процесс бота, который раз в RETRY_PERIOD опрашивает API Практикума
// и сообщает в Telegram об изменении статуса последней домашней работы.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/alem-hub/homework-bot/config"
	"github.com/alem-hub/homework-bot/internal/application/poller"
	"github.com/alem-hub/homework-bot/internal/domain/notification"
	"github.com/alem-hub/homework-bot/internal/infrastructure/external/practicum"
	"github.com/alem-hub/homework-bot/internal/infrastructure/external/telegram"
	"github.com/alem-hub/homework-bot/internal/infrastructure/metrics"
	"github.com/alem-hub/homework-bot/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/homework-bot/internal/infrastructure/persistence/redis"
	httpapi "github.com/alem-hub/homework-bot/internal/interface/http"
	"github.com/alem-hub/homework-bot/internal/interface/http/handlers"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	// SIGINT/SIGTERM отменяют контекст; цикл завершается после текущей итерации
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingRequired) {
			return fmt.Errorf("missing required environment variables: %w", err)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting homework bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"retry_period", cfg.Poller.RetryPeriod.String(),
		"endpoint", cfg.Practicum.Endpoint,
		"chat_id", cfg.Telegram.ChatID,
	)

	m := metrics.New()
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ЖУРНАЛ УВЕДОМЛЕНИЙ (память + PostgreSQL, если задан DATABASE_URL)
	// ─────────────────────────────────────────────────────────────────────────
	history := notification.NewHistory(cfg.Poller.JournalCapacity)
	var journal notification.Journal = history

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")

		// Recent читается из памяти, PostgreSQL хранит полный аудит
		journal = notification.Tee{history, postgres.NewJournalRepository(dbConn, cfg.Database.QueryTimeout)}
		health.AddCheck("postgres", handlers.NewPingCheck(dbConn))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. АРЕНДА В REDIS (если задан REDIS_URL)
	// ─────────────────────────────────────────────────────────────────────────
	var lease poller.Lease

	if cfg.Redis.URL != "" {
		log.Info("connecting to Redis...")
		cache, err := redis.NewCacheFromURL(ctx, cfg.Redis.URL, redis.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()

		// Держатель продлевает аренду каждый цикл; TTL переживает одно ожидание
		lease = redis.NewLease(cache, cfg.Redis.LeaseKey+":"+cfg.Telegram.ChatID, 2*cfg.Poller.RetryPeriod, log)
		health.AddCheck("redis", handlers.NewPingCheck(cache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ВНЕШНИЕ КЛИЕНТЫ
	// ─────────────────────────────────────────────────────────────────────────
	practicumConfig := practicum.DefaultClientConfig(cfg.Practicum.Token)
	practicumConfig.Endpoint = cfg.Practicum.Endpoint
	practicumConfig.Timeout = cfg.Practicum.RequestTimeout
	practicumConfig.Logger = log
	practicumConfig.Metrics = m
	source := practicum.NewClient(practicumConfig)

	telegramConfig := telegram.DefaultClientConfig(cfg.Telegram.Token)
	telegramConfig.BaseURL = cfg.Telegram.BaseURL
	telegramConfig.Timeout = cfg.Telegram.RequestTimeout
	telegramConfig.Logger = log
	bot := telegram.NewClient(telegramConfig)

	// Проверка токена бота не блокирует запуск
	if me, err := bot.GetMe(ctx); err != nil {
		log.Warn("telegram getMe failed, continuing", "error", err)
	} else {
		log.Info("telegram bot authorized", "username", me.Username, "id", me.ID)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ЦИКЛ ОПРОСА
	// ─────────────────────────────────────────────────────────────────────────
	pollerConfig := poller.DefaultConfig()
	pollerConfig.Period = cfg.Poller.RetryPeriod
	pollerConfig.Logger = log
	pollerConfig.Metrics = m
	pollerConfig.Journal = journal
	pollerConfig.Lease = lease
	p := poller.New(source, telegram.NewChatNotifier(bot, cfg.Telegram.ChatID), pollerConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. OPS HTTP (если задан HTTP_ADDR)
	// ─────────────────────────────────────────────────────────────────────────
	var wg sync.WaitGroup
	if cfg.Observability.HTTPAddr != "" {
		serverConfig := httpapi.DefaultConfig()
		serverConfig.Addr = cfg.Observability.HTTPAddr
		serverConfig.ShutdownTimeout = cfg.App.ShutdownTimeout
		serverConfig.Version = cfg.App.Version

		server := httpapi.NewServer(serverConfig, httpapi.Dependencies{
			State:         p,
			Journal:       journal,
			Metrics:       m,
			HealthChecker: health,
			Logger:        log,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Run(ctx); err != nil {
				log.Error("ops http server stopped", "error", err)
			}
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РАБОТА ДО СИГНАЛА
	// ─────────────────────────────────────────────────────────────────────────
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	log.Info("waiting for ops server to stop...")
	wg.Wait()

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Observability.LogLevel),
	}

	format := cfg.Observability.LogFormat
	if format == "" && cfg.IsProduction() {
		format = "json"
	}

	if format == "json" {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
