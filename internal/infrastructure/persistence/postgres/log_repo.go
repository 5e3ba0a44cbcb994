package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME LOG REPOSITORY IMPLEMENTATION
// Журнал исходов - источник данных для серий и условий достижений.
// ══════════════════════════════════════════════════════════════════════════════

const logColumns = `id, user_id, task_id, status, xp_earned, points_earned, created_at`

// LogRepository implements task.LogRepository for PostgreSQL.
type LogRepository struct {
	q Querier
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(q Querier) *LogRepository {
	return &LogRepository{q: q}
}

// Append adds a log entry.
func (r *LogRepository) Append(ctx context.Context, l *task.OutcomeLog) error {
	query := `
		INSERT INTO outcome_logs (
			id, user_id, task_id, status, xp_earned, points_earned, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		l.ID, l.UserID, l.TaskID, string(l.Status), l.XPEarned, l.PointsEarned, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append outcome log: %w", err)
	}
	return nil
}

// LastForUser returns the user's most recent log entry, or nil when the
// journal is empty.
func (r *LogRepository) LastForUser(ctx context.Context, userID string) (*task.OutcomeLog, error) {
	query := `SELECT ` + logColumns + `
		FROM outcome_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	l, err := r.scanLog(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// CountCompletedInCategory counts the user's completions in a category.
func (r *LogRepository) CountCompletedInCategory(ctx context.Context, userID, categoryID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM outcome_logs l
		JOIN tasks t ON t.id = l.task_id
		WHERE l.user_id = $1 AND t.category_id = $2 AND l.status = 'completed'
	`

	var count int
	if err := r.q.QueryRow(ctx, query, userID, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}

// LastInCategory returns the user's last limit entries for tasks of the
// category, newest first.
func (r *LogRepository) LastInCategory(ctx context.Context, userID, categoryID string, limit int) ([]*task.OutcomeLog, error) {
	query := `
		SELECT l.id, l.user_id, l.task_id, l.status, l.xp_earned, l.points_earned, l.created_at
		FROM outcome_logs l
		JOIN tasks t ON t.id = l.task_id
		WHERE l.user_id = $1 AND t.category_id = $2
		ORDER BY l.created_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query category logs: %w", err)
	}
	defer rows.Close()

	var logs []*task.OutcomeLog
	for rows.Next() {
		l, err := r.scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountByStatusSince counts the user's entries with the status since the
// given moment.
func (r *LogRepository) CountByStatusSince(ctx context.Context, userID string, status task.OutcomeStatus, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM outcome_logs
		WHERE user_id = $1 AND status = $2 AND created_at >= $3
	`

	var count int
	if err := r.q.QueryRow(ctx, query, userID, string(status), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return count, nil
}

// TopCategorySince returns the category name with the most completions
// since the given moment; empty string when there were none.
func (r *LogRepository) TopCategorySince(ctx context.Context, userID string, since time.Time) (string, error) {
	query := `
		SELECT c.name
		FROM outcome_logs l
		JOIN tasks t ON t.id = l.task_id
		JOIN categories c ON c.id = t.category_id
		WHERE l.user_id = $1 AND l.status = 'completed' AND l.created_at >= $2
		GROUP BY c.name
		ORDER BY COUNT(*) DESC, c.name
		LIMIT 1
	`

	var name string
	err := r.q.QueryRow(ctx, query, userID, since).Scan(&name)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query top category: %w", err)
	}
	return name, nil
}

func (r *LogRepository) scanLog(row pgx.Row) (*task.OutcomeLog, error) {
	var (
		l      task.OutcomeLog
		status string
	)

	err := row.Scan(&l.ID, &l.UserID, &l.TaskID, &status, &l.XPEarned, &l.PointsEarned, &l.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan outcome log: %w", err)
	}

	l.Status = task.OutcomeStatus(status)
	return &l, nil
}
