// Package main - точка входа фоновых процессов (Worker) Quest Coach.
//
// Worker отвечает за периодические задачи:
// - утренний дайджест с активными задачами и серией
// - доставка напоминаний по расписанию пользователя
//
// Worker и бот работают как отдельные процессы над одной базой:
// падение планировщика не роняет диалоговый контур.
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
	tgclient "github.com/quest-coach/quest-coach-bot/internal/infrastructure/external/telegram"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/persistence/postgres"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/scheduler"
	"github.com/quest-coach/quest-coach-bot/internal/infrastructure/scheduler/jobs"
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

// htmlSender adapts the Telegram client to the jobs.MessageSender contract.
type htmlSender struct {
	client *tgclient.Client
}

func (s htmlSender) SendHTML(ctx context.Context, chatID int64, text string) error {
	_, err := s.client.SendHTML(ctx, chatID, text)
	return err
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("worker: scheduler is disabled, nothing to run")
	}

	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}
	timeutil.SetLocation(loc)

	logger.Info("starting quest coach worker",
		"env", string(cfg.App.Environment),
		"timezone", cfg.App.Timezone,
	)

	// ──────────────────────────────────────────────────────────────────────
	// Зависимости: база и Telegram. Миграции применяет бот; worker
	// ожидает готовую схему.
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

	users := postgres.NewUserRepository(conn.Pool())
	tasks := postgres.NewTaskRepository(conn.Pool())
	logs := postgres.NewLogRepository(conn.Pool())
	reminders := postgres.NewReminderRepository(conn.Pool())

	tgCfg := tgclient.DefaultClientConfig(cfg.Telegram.Token)
	tgCfg.Logger = logger
	sender := htmlSender{client: tgclient.NewClient(tgCfg)}

	// ──────────────────────────────────────────────────────────────────────
	// Планировщик
	// ──────────────────────────────────────────────────────────────────────

	sched := scheduler.New(scheduler.Config{
		Logger:   logger,
		Timezone: loc,
	})

	digestCron, err := scheduler.ParseCronExpression(cfg.Scheduler.DigestCron)
	if err != nil {
		return fmt.Errorf("parse digest cron %q: %w", cfg.Scheduler.DigestCron, err)
	}
	if err := sched.Register(jobs.NewDailyDigestJob(users, tasks, logs, sender, logger), digestCron); err != nil {
		return fmt.Errorf("register daily digest: %w", err)
	}

	reminderEvery := scheduler.NewIntervalSchedule(cfg.Scheduler.ReminderPollInterval)
	if err := sched.Register(jobs.NewRemindersJob(reminders, users, sender, logger), reminderEvery); err != nil {
		return fmt.Errorf("register reminders: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	for _, job := range sched.ListJobs() {
		logger.Info("job scheduled", "job", job.Name, "next_run", job.NextRun)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if err := sched.Stop(); err != nil {
		logger.Warn("scheduler stop failed", "error", err)
	}

	logger.Info("bye")
	return nil
}
