package task

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для задач.
type Repository interface {
	// Create создаёт новую задачу.
	Create(ctx context.Context, t *Task) error

	// GetByID возвращает задачу по ID.
	// Возвращает ErrTaskNotFound, если задача не найдена.
	GetByID(ctx context.Context, id string) (*Task, error)

	// Update обновляет задачу.
	// Возвращает ErrTaskNotFound, если задача не найдена.
	Update(ctx context.Context, t *Task) error

	// ListActive возвращает активные невыполненные задачи пользователя.
	ListActive(ctx context.Context, userID string) ([]*Task, error)

	// ListByCategory возвращает задачи пользователя в категории.
	ListByCategory(ctx context.Context, userID, categoryID string) ([]*Task, error)

	// HasCompletedWithTarget сообщает, есть ли у пользователя в категории
	// выполненная задача с заданной и достигнутой целью.
	HasCompletedWithTarget(ctx context.Context, userID, categoryID string) (bool, error)
}

// CategoryRepository определяет операции хранилища для категорий.
type CategoryRepository interface {
	// GetByID возвращает категорию по ID.
	// Возвращает ErrCategoryNotFound, если категория не найдена.
	GetByID(ctx context.Context, id string) (*Category, error)

	// GetByName возвращает категорию по точному имени.
	// Возвращает ErrCategoryNotFound, если категория не найдена.
	GetByName(ctx context.Context, name string) (*Category, error)

	// GetAll возвращает все категории.
	GetAll(ctx context.Context) ([]*Category, error)
}

// LogRepository определяет операции хранилища для журнала исходов.
type LogRepository interface {
	// Append добавляет запись в журнал.
	Append(ctx context.Context, l *OutcomeLog) error

	// LastForUser возвращает последнюю запись пользователя.
	// Возвращает nil без ошибки, если записей ещё не было.
	LastForUser(ctx context.Context, userID string) (*OutcomeLog, error)

	// CountCompletedInCategory считает записи о выполнении задач
	// пользователя в категории.
	CountCompletedInCategory(ctx context.Context, userID, categoryID string) (int, error)

	// LastInCategory возвращает последние limit записей пользователя по
	// задачам категории, от новых к старым.
	LastInCategory(ctx context.Context, userID, categoryID string, limit int) ([]*OutcomeLog, error)

	// CountByStatusSince считает записи пользователя с данным статусом
	// начиная с момента since.
	CountByStatusSince(ctx context.Context, userID string, status OutcomeStatus, since time.Time) (int, error)

	// TopCategorySince возвращает имя категории с наибольшим числом
	// выполнений с момента since. Пустая строка - выполнений не было.
	TopCategorySince(ctx context.Context, userID string, since time.Time) (string, error)
}

// ReminderRepository определяет операции хранилища для напоминаний.
type ReminderRepository interface {
	// Create создаёт напоминание.
	Create(ctx context.Context, r *Reminder) error

	// ListActive возвращает все активные напоминания.
	ListActive(ctx context.Context) ([]*Reminder, error)

	// MarkSent фиксирует время последней отправки.
	MarkSent(ctx context.Context, id string, at time.Time) error
}
