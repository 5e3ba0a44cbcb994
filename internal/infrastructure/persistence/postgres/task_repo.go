package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const taskColumns = `id, user_id, category_id, title, description,
		current_progress, target_progress, is_completed, is_active,
		deadline, completed_at, created_at`

// TaskRepository implements task.Repository for PostgreSQL.
type TaskRepository struct {
	q Querier
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(q Querier) *TaskRepository {
	return &TaskRepository{q: q}
}

// Create creates a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, category_id, title, description, current_progress,
			target_progress, is_completed, is_active, deadline, completed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.CategoryID,
		t.Title,
		t.Description,
		t.CurrentProgress,
		t.TargetProgress,
		t.IsCompleted,
		t.IsActive,
		t.Deadline,
		t.CompletedAt,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID returns a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return r.scanTask(r.q.QueryRow(ctx, query, id))
}

// Update updates a task.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, current_progress = $4,
			target_progress = $5, is_completed = $6, is_active = $7,
			deadline = $8, completed_at = $9
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.CurrentProgress,
		t.TargetProgress,
		t.IsCompleted,
		t.IsActive,
		t.Deadline,
		t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTaskNotFound
	}
	return nil
}

// ListActive returns the user's active uncompleted tasks.
func (r *TaskRepository) ListActive(ctx context.Context, userID string) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND is_active AND NOT is_completed
		ORDER BY created_at`
	return r.queryTasks(ctx, query, userID)
}

// ListByCategory returns the user's tasks in a category.
func (r *TaskRepository) ListByCategory(ctx context.Context, userID, categoryID string) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND category_id = $2
		ORDER BY created_at`
	return r.queryTasks(ctx, query, userID, categoryID)
}

// HasCompletedWithTarget reports whether the user has a completed task
// in the category with a reached measurable target.
func (r *TaskRepository) HasCompletedWithTarget(ctx context.Context, userID, categoryID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE user_id = $1 AND category_id = $2
			  AND is_completed
			  AND target_progress IS NOT NULL AND target_progress > 0
			  AND current_progress >= target_progress
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, userID, categoryID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check category goal: %w", err)
	}
	return exists, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*task.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Title,
		&t.Description,
		&t.CurrentProgress,
		&t.TargetProgress,
		&t.IsCompleted,
		&t.IsActive,
		&t.Deadline,
		&t.CompletedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &t, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CategoryRepository implements task.CategoryRepository for PostgreSQL.
type CategoryRepository struct {
	q Querier
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(q Querier) *CategoryRepository {
	return &CategoryRepository{q: q}
}

// GetByID returns a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*task.Category, error) {
	return r.scanCategory(r.q.QueryRow(ctx,
		`SELECT id, name, emoji FROM categories WHERE id = $1`, id))
}

// GetByName returns a category by exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*task.Category, error) {
	return r.scanCategory(r.q.QueryRow(ctx,
		`SELECT id, name, emoji FROM categories WHERE name = $1`, name))
}

// GetAll returns all categories.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*task.Category, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, emoji FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*task.Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) scanCategory(row pgx.Row) (*task.Category, error) {
	var c task.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &c, nil
}
