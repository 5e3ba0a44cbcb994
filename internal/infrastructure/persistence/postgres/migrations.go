package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies embedded migrations in order.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the tracking table if it doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the versions already applied.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insert, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_core_tables",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "seed_categories_and_achievements",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    telegram_id     BIGINT NOT NULL UNIQUE,
    username        TEXT NOT NULL DEFAULT '',
    first_name      TEXT NOT NULL DEFAULT '',
    xp              INTEGER NOT NULL DEFAULT 0,
    level           INTEGER NOT NULL DEFAULT 1,
    total_points    INTEGER NOT NULL DEFAULT 0,
    current_streak  INTEGER NOT NULL DEFAULT 0,
    longest_streak  INTEGER NOT NULL DEFAULT 0,
    last_log_at     TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
    id     UUID PRIMARY KEY,
    name   TEXT NOT NULL UNIQUE,
    emoji  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tasks (
    id               UUID PRIMARY KEY,
    user_id          UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    category_id      UUID NOT NULL REFERENCES categories(id),
    title            TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    current_progress DOUBLE PRECISION NOT NULL DEFAULT 0,
    target_progress  DOUBLE PRECISION,
    is_completed     BOOLEAN NOT NULL DEFAULT FALSE,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    deadline         TIMESTAMPTZ,
    completed_at     TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_active
    ON tasks (user_id) WHERE is_active AND NOT is_completed;
CREATE INDEX IF NOT EXISTS idx_tasks_user_category ON tasks (user_id, category_id);

CREATE TABLE IF NOT EXISTS outcome_logs (
    id            UUID PRIMARY KEY,
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    task_id       UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    status        TEXT NOT NULL CHECK (status IN ('completed', 'missed')),
    xp_earned     INTEGER NOT NULL DEFAULT 0,
    points_earned INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_outcome_logs_user_created
    ON outcome_logs (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS achievements (
    id                UUID PRIMARY KEY,
    name              TEXT NOT NULL UNIQUE,
    description       TEXT NOT NULL DEFAULT '',
    emoji             TEXT NOT NULL DEFAULT '',
    condition_kind    TEXT NOT NULL,
    condition_payload TEXT NOT NULL,
    xp_reward         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_achievements (
    id             UUID PRIMARY KEY,
    user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_id UUID NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
    unlocked_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, achievement_id)
);

CREATE TABLE IF NOT EXISTS reminders (
    id           UUID PRIMARY KEY,
    user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    task_id      UUID REFERENCES tasks(id) ON DELETE CASCADE,
    message      TEXT NOT NULL,
    send_time    TEXT NOT NULL,
    days_of_week TEXT NOT NULL DEFAULT '',
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    last_sent_at TIMESTAMPTZ
);
`

const migration001Down = `
DROP TABLE IF EXISTS reminders;
DROP TABLE IF EXISTS user_achievements;
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS outcome_logs;
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS categories;
DROP TABLE IF EXISTS users;
`

const migration002Up = `
INSERT INTO categories (id, name, emoji) VALUES
    (gen_random_uuid(), 'Работа', '💼'),
    (gen_random_uuid(), 'Тренировки', '🏋️'),
    (gen_random_uuid(), 'Блог', '✍️'),
    (gen_random_uuid(), 'Продажи', '💰'),
    (gen_random_uuid(), 'Команда', '👥'),
    (gen_random_uuid(), 'Чтение', '📚'),
    (gen_random_uuid(), 'Лайвы', '🎥'),
    (gen_random_uuid(), 'Личное развитие', '🌱')
ON CONFLICT (name) DO NOTHING;

INSERT INTO achievements (id, name, description, emoji, condition_kind, condition_payload, xp_reward) VALUES
    (gen_random_uuid(), 'Железный', '7 дней подряд без пропусков', '🔥', 'streak', '7', 50),
    (gen_random_uuid(), 'Манимейкер', '10 выполненных задач в категории Работа', '💰', 'category_tasks', '{"category": "Работа", "count": 10}', 30),
    (gen_random_uuid(), 'Боец', '5 тренировок подряд без пропусков', '💪', 'category_streak', '{"category": "Тренировки", "streak": 5}', 40),
    (gen_random_uuid(), 'Гроссмейстер внимания', 'Достигнута цель в категории Блог', '👑', 'category_goal', '{"category": "Блог"}', 60)
ON CONFLICT (name) DO NOTHING;
`

const migration002Down = `
DELETE FROM achievements
    WHERE name IN ('Железный', 'Манимейкер', 'Боец', 'Гроссмейстер внимания');
DELETE FROM categories
    WHERE name IN ('Работа', 'Тренировки', 'Блог', 'Продажи', 'Команда', 'Чтение', 'Лайвы', 'Личное развитие');
`
