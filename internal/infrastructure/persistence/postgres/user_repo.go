package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const userColumns = `id, telegram_id, username, first_name, xp, level,
		total_points, current_streak, longest_streak, last_log_at,
		created_at, updated_at`

// UserRepository implements user.Repository for PostgreSQL.
// It runs on a Querier, so the same code serves pool and transaction.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, telegram_id, username, first_name, xp, level, total_points,
			current_streak, longest_streak, last_log_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.Exec(ctx, query,
		u.ID,
		int64(u.TelegramID),
		u.Username,
		u.FirstName,
		int(u.XP),
		int(u.Level),
		int(u.TotalPoints),
		u.Streak.Current,
		u.Streak.Longest,
		nullableTime(u.Streak.LastLogAt),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.q.QueryRow(ctx, query, id))
}

// GetByTelegramID returns a user by Telegram ID.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID user.TelegramID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return r.scanUser(r.q.QueryRow(ctx, query, int64(telegramID)))
}

// Update updates a user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			username = $2, first_name = $3, xp = $4, level = $5,
			total_points = $6, current_streak = $7, longest_streak = $8,
			last_log_at = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		u.ID,
		u.Username,
		u.FirstName,
		int(u.XP),
		int(u.Level),
		int(u.TotalPoints),
		u.Streak.Current,
		u.Streak.Longest,
		nullableTime(u.Streak.LastLogAt),
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}
	return nil
}

// GetAll returns all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// scanUser scans a single user row.
func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var (
		u          user.User
		telegramID int64
		xp, level  int
		points     int
		lastLogAt  *time.Time
	)

	err := row.Scan(
		&u.ID,
		&telegramID,
		&u.Username,
		&u.FirstName,
		&xp,
		&level,
		&points,
		&u.Streak.Current,
		&u.Streak.Longest,
		&lastLogAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.TelegramID = user.TelegramID(telegramID)
	u.XP = user.XP(xp)
	u.Level = user.Level(level)
	u.TotalPoints = user.Points(points)
	if lastLogAt != nil {
		u.Streak.LastLogAt = *lastLogAt
	}
	return &u, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
