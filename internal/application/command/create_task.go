package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE TASK COMMAND
// Creates a task from already parsed text (see external/openai).
// ══════════════════════════════════════════════════════════════════════════════

// FallbackCategory is used when no category could be determined.
const FallbackCategory = "Личное развитие"

// CreateTaskCommand contains the parsed task data.
type CreateTaskCommand struct {
	TelegramID int64
	Title      string

	// CategoryName is resolved by name; unknown names fall back to
	// FallbackCategory.
	CategoryName string

	CurrentProgress float64
	TargetProgress  *float64
	Deadline        *time.Time
}

// Validate validates the command.
func (c CreateTaskCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("create_task: telegram_id is required")
	}
	if c.Title == "" {
		return errors.New("create_task: title is required")
	}
	return nil
}

// CreateTaskResult contains the created task and its category.
type CreateTaskResult struct {
	Task     *task.Task
	Category *task.Category
}

// CreateTaskHandler handles task creation.
type CreateTaskHandler struct {
	users      user.Repository
	tasks      task.Repository
	categories task.CategoryRepository
	bus        shared.EventPublisher
	log        *logger.Logger
	now        func() time.Time
}

// NewCreateTaskHandler creates the handler. bus may be nil.
func NewCreateTaskHandler(
	users user.Repository,
	tasks task.Repository,
	categories task.CategoryRepository,
	bus shared.EventPublisher,
	log *logger.Logger,
) *CreateTaskHandler {
	return &CreateTaskHandler{
		users:      users,
		tasks:      tasks,
		categories: categories,
		bus:        bus,
		log:        log,
		now:        timeutil.Now,
	}
}

// Handle executes the command.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByTelegramID(ctx, user.TelegramID(cmd.TelegramID))
	if err != nil {
		return nil, err
	}

	category, err := h.resolveCategory(ctx, cmd.CategoryName)
	if err != nil {
		return nil, err
	}

	now := h.now()
	t, err := task.New(uuid.New().String(), u.ID, category.ID, cmd.Title, now)
	if err != nil {
		return nil, err
	}
	t.CurrentProgress = cmd.CurrentProgress
	t.TargetProgress = cmd.TargetProgress
	t.Deadline = cmd.Deadline

	if err := h.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	h.log.Info("task created",
		logger.UserID(u.ID), logger.TaskID(t.ID), logger.Category(category.Name))

	if h.bus != nil {
		event := shared.TaskCreatedEvent{
			BaseEvent: shared.NewBaseEvent(shared.EventTaskCreated, t.ID),
			UserID:    u.ID,
			TaskID:    t.ID,
			Category:  category.Name,
		}
		if err := h.bus.Publish(event); err != nil {
			h.log.Warn("event publish failed", logger.Err(err))
		}
	}

	return &CreateTaskResult{Task: t, Category: category}, nil
}

// resolveCategory looks a category up by name, falling back to the
// default one.
func (h *CreateTaskHandler) resolveCategory(ctx context.Context, name string) (*task.Category, error) {
	if name != "" {
		c, err := h.categories.GetByName(ctx, name)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	return h.categories.GetByName(ctx, FallbackCategory)
}
