package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER REPOSITORY IMPLEMENTATION
// Дни недели хранятся строкой "1,3,5" - пустая строка означает каждый день.
// ══════════════════════════════════════════════════════════════════════════════

// ReminderRepository implements task.ReminderRepository for PostgreSQL.
type ReminderRepository struct {
	q Querier
}

// NewReminderRepository creates a new ReminderRepository.
func NewReminderRepository(q Querier) *ReminderRepository {
	return &ReminderRepository{q: q}
}

// Create persists a reminder.
func (r *ReminderRepository) Create(ctx context.Context, rem *task.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, user_id, task_id, message, send_time, days_of_week, is_active, last_sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, query,
		rem.ID, rem.UserID, rem.TaskID, rem.Message,
		rem.Time, encodeDays(rem.DaysOfWeek), rem.IsActive, rem.LastSentAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// ListActive returns all active reminders.
func (r *ReminderRepository) ListActive(ctx context.Context) ([]*task.Reminder, error) {
	query := `
		SELECT id, user_id, task_id, message, send_time, days_of_week, is_active, last_sent_at
		FROM reminders
		WHERE is_active = TRUE
		ORDER BY send_time
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*task.Reminder
	for rows.Next() {
		var (
			rem  task.Reminder
			days string
		)
		err := rows.Scan(&rem.ID, &rem.UserID, &rem.TaskID, &rem.Message,
			&rem.Time, &days, &rem.IsActive, &rem.LastSentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		rem.DaysOfWeek = decodeDays(days)
		reminders = append(reminders, &rem)
	}
	return reminders, rows.Err()
}

// MarkSent records the moment the reminder was last delivered.
func (r *ReminderRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE reminders SET last_sent_at = $2 WHERE id = $1`

	if _, err := r.q.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func encodeDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}
