// Package task содержит доменную модель задач, категорий и журнала
// исходов. Это ядро бизнес-логики - здесь нет внешних зависимостей.
package task

import (
	"strings"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY
// ══════════════════════════════════════════════════════════════════════════════

// Category - сфера жизни, к которой относится задача.
type Category struct {
	ID    string
	Name  string
	Emoji string
}

// Label возвращает подпись категории с эмодзи.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK
// ══════════════════════════════════════════════════════════════════════════════

// Task - задача пользователя. Прогресс задаётся парой current/target;
// target может отсутствовать (задача без измеримой цели).
type Task struct {
	ID          string
	UserID      string
	CategoryID  string
	Title       string
	Description string

	CurrentProgress float64
	TargetProgress  *float64 // nil - цели нет

	IsCompleted bool
	IsActive    bool

	Deadline    *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// New создаёт новую активную задачу.
func New(id, userID, categoryID, title string, now time.Time) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrEmptyTaskTitle
	}
	return &Task{
		ID:         id,
		UserID:     userID,
		CategoryID: categoryID,
		Title:      strings.TrimSpace(title),
		IsActive:   true,
		CreatedAt:  now,
	}, nil
}

// HasTarget сообщает, задана ли у задачи измеримая цель.
func (t *Task) HasTarget() bool {
	return t.TargetProgress != nil && *t.TargetProgress > 0
}

// TargetReached сообщает, достигнут ли целевой прогресс.
func (t *Task) TargetReached() bool {
	return t.HasTarget() && t.CurrentProgress >= *t.TargetProgress
}

// Complete отмечает задачу выполненной. Прогресс подтягивается к цели,
// если она задана. Повторное выполнение - ErrTaskAlreadyCompleted.
func (t *Task) Complete(now time.Time) error {
	if t.IsCompleted {
		return shared.ErrTaskAlreadyCompleted
	}
	t.IsCompleted = true
	t.CompletedAt = &now
	if t.HasTarget() {
		t.CurrentProgress = *t.TargetProgress
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME LOG
// ══════════════════════════════════════════════════════════════════════════════

// OutcomeStatus - исход задачи за день.
type OutcomeStatus string

const (
	// OutcomeCompleted - задача выполнена.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomeMissed - задача пропущена.
	OutcomeMissed OutcomeStatus = "missed"
)

// OutcomeLog - запись журнала исходов. Серии и достижения считаются
// по этому журналу.
type OutcomeLog struct {
	ID           string
	UserID       string
	TaskID       string
	Status       OutcomeStatus
	XPEarned     int
	PointsEarned int
	CreatedAt    time.Time
}

// IsCompleted сообщает, была ли запись о выполнении.
func (l OutcomeLog) IsCompleted() bool {
	return l.Status == OutcomeCompleted
}

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER
// ══════════════════════════════════════════════════════════════════════════════

// Reminder - напоминание пользователю. Time в формате "HH:MM",
// DaysOfWeek - номера дней недели ISO (1=Пн .. 7=Вс); пустой список
// означает каждый день.
type Reminder struct {
	ID         string
	UserID     string
	TaskID     *string // nil - напоминание без привязки к задаче
	Message    string
	Time       string
	DaysOfWeek []int
	IsActive   bool
	LastSentAt *time.Time
}

// DueAt сообщает, должно ли напоминание сработать в момент t
// (с точностью до минуты) и не отправлялось ли оно уже сегодня.
// Момент t и LastSentAt приводятся к рабочему часовому поясу:
// "сегодня" - календарный день пользователя, а не UTC.
func (r Reminder) DueAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	local := timeutil.ToLocal(t)
	if local.Format("15:04") != r.Time {
		return false
	}
	if len(r.DaysOfWeek) > 0 {
		day := int(local.Weekday())
		if day == 0 {
			day = 7
		}
		found := false
		for _, d := range r.DaysOfWeek {
			if d == day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.LastSentAt != nil && timeutil.IsSameDay(*r.LastSentAt, t) {
		return false
	}
	return true
}
