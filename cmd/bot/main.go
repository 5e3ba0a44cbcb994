// Package main - точка входа Telegram-бота Quest Coach.
//
// Бот превращает личный список задач в игру: выполненные задачи дают
// XP, уровни растут по квадратичной кривой, ежедневные выполнения
// продлевают серию, а достижения отмечают вехи.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: репозитории, Telegram и OpenAI клиенты, кэш
// - Interface: Telegram handlers, HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quest-coach/quest-coach-bot/config"
	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/openai"
	tgclient "github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/telegram"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/messaging"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/persistence/postgres"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/persistence/redis"
	httpserver "github.com/quest-coach/quest-coach-bot/internal/interface/http"
	tgbot "github.com/quest-coach/quest-coach-bot/internal/interface/telegram"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/handler/callback"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ──────────────────────────────────────────────────────────────────────
	// Конфигурация и логирование
	// ──────────────────────────────────────────────────────────────────────

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}
	timeutil.SetLocation(loc)

	appLog.Info("starting quest coach bot",
		logger.F("env", string(cfg.App.Environment)),
		logger.F("version", cfg.App.Version),
		logger.F("timezone", cfg.App.Timezone),
	)

	// ──────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ──────────────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnection(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	appLog.Info("database ready")

	// ──────────────────────────────────────────────────────────────────────
	// Redis (опционально)
	// ──────────────────────────────────────────────────────────────────────

	var (
		cache     *redis.Cache
		snapCache query.SnapshotCache
		progCache command.ProgressCache
	)
	if cfg.Redis.Enabled {
		cache, err = redis.NewCache(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// кэш не критичен: без Redis бот работает напрямую из базы
			appLog.Warn("redis unavailable, running without cache", logger.Err(err))
		} else {
			defer cache.Close()
			pc := redis.NewProgressCache(cache, cfg.Redis.ProgressTTL)
			snapCache = pc
			progCache = pc
			appLog.Info("redis cache enabled", logger.F("addr", cfg.Redis.Addr()))
		}
	}

	// ──────────────────────────────────────────────────────────────────────
	// Шина событий
	// ──────────────────────────────────────────────────────────────────────

	bus := messaging.NewInMemoryEventBus(messaging.Config{
		AsyncMode: true,
		Logger:    slogger,
	})
	defer bus.Close()

	if err := bus.SubscribeAll(func(event shared.Event) error {
		appLog.Debug("domain event",
			logger.F("type", string(event.EventType())),
			logger.F("aggregate_id", event.AggregateID()),
		)
		return nil
	}); err != nil {
		return fmt.Errorf("subscribe event logger: %w", err)
	}

	// ──────────────────────────────────────────────────────────────────────
	// Application layer
	// ──────────────────────────────────────────────────────────────────────

	repos := postgres.NewRepositories(conn.Pool())
	uow := postgres.NewUnitOfWork(conn)
	progression := gamification.NewProgression(cfg.Gamification.LevelBaseXP, cfg.Gamification.ProgressBarLength)

	registerUser := command.NewRegisterUserHandler(repos.Users, bus, appLog)
	createTask := command.NewCreateTaskHandler(repos.Users, repos.Tasks, repos.Categories, bus, appLog)
	completeTask := command.NewCompleteTaskHandler(
		uow, progression,
		cfg.Gamification.XPPerTask, cfg.Gamification.XPMultiplier,
		bus, progCache, appLog,
	)
	missTask := command.NewMissTaskHandler(uow, bus, progCache, appLog)
	checkAchievements := command.NewCheckAchievementsHandler(uow, progression, bus, progCache, appLog)

	getProgress := query.NewGetProgressHandler(repos.Users, repos.Grants, progression, snapCache, appLog)
	getStats := query.NewGetStatsHandler(repos.Users, repos.Logs)
	listTasks := query.NewListTasksHandler(repos.Users, repos.Tasks, repos.Categories)

	// ──────────────────────────────────────────────────────────────────────
	// Внешние сервисы
	// ──────────────────────────────────────────────────────────────────────

	openaiCfg := openai.DefaultClientConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.Model != "" {
		openaiCfg.Model = cfg.OpenAI.Model
	}
	if cfg.OpenAI.BaseURL != "" {
		openaiCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	if cfg.OpenAI.Timeout > 0 {
		openaiCfg.Timeout = cfg.OpenAI.Timeout
	}
	openaiCfg.Logger = slogger
	assistant := openai.NewAssistant(openai.NewClient(openaiCfg))

	tgCfg := tgclient.DefaultClientConfig(cfg.Telegram.Token)
	tgCfg.Logger = slogger
	tgCfg.Debug = cfg.App.Debug
	client := tgclient.NewClient(tgCfg)

	if cfg.Telegram.Mode != "polling" {
		appLog.Warn("webhook mode is not wired, falling back to long polling")
	}

	// ──────────────────────────────────────────────────────────────────────
	// Интерфейсы: Telegram и HTTP
	// ──────────────────────────────────────────────────────────────────────

	keyboards := presenter.NewKeyboardBuilder()
	bot := tgbot.NewBot(client, tgbot.Handlers{
		Start:    handler.NewStartHandler(registerUser, keyboards),
		Add:      handler.NewAddHandler(assistant, repos.Categories, createTask),
		Tasks:    handler.NewTasksHandler(listTasks, presenter.NewTaskListPresenter()),
		Progress: handler.NewProgressHandler(getProgress, presenter.NewProgressPresenter()),
		Stats:    handler.NewStatsHandler(getStats, presenter.NewStatsPresenter()),
		Help:     handler.NewHelpCmdHandler(),
		Outcome: callback.NewOutcomeHandler(
			completeTask, missTask, assistant,
			presenter.NewOutcomePresenter(), keyboards,
		),
	}, tgbot.BotConfig{Logger: slogger})

	errCh := make(chan error, 2)

	var httpSrv *httpserver.Server
	if cfg.HTTP.Enabled {
		httpCfg := httpserver.DefaultConfig()
		httpCfg.Port = cfg.HTTP.Port
		httpCfg.AdminTokenHash = cfg.HTTP.AdminTokenHash

		checks := map[string]httpserver.HealthCheck{
			"postgres": conn.Ping,
		}
		if cache != nil {
			checks["redis"] = cache.Ping
		}

		httpSrv = httpserver.NewServer(httpCfg, httpserver.Dependencies{
			GetProgressHandler:       getProgress,
			GetStatsHandler:          getStats,
			CheckAchievementsHandler: checkAchievements,
			Users:                    repos.Users,
			Checks:                   checks,
			Logger:                   appLog,
			Version:                  cfg.App.Version,
		})
		go func() {
			if err := httpSrv.Start(); err != nil {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	go func() {
		if err := bot.Start(ctx); err != nil {
			errCh <- fmt.Errorf("bot: %w", err)
		}
	}()

	// ──────────────────────────────────────────────────────────────────────
	// Ожидание завершения
	// ──────────────────────────────────────────────────────────────────────

	select {
	case <-ctx.Done():
		appLog.Info("shutdown signal received")
	case err := <-errCh:
		appLog.Error("component failed", logger.Err(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if httpSrv != nil {
		if err := httpSrv.Stop(shutdownCtx); err != nil {
			appLog.Warn("http shutdown failed", logger.Err(err))
		}
	}

	appLog.Info("bye")
	return nil
}
