package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
	"github.com/quest-coach/quest-coach-bot/pkg/logger"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Idempotent /start: an existing user is returned as-is.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the data from the /start command.
type RegisterUserCommand struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// Validate validates the command.
func (c RegisterUserCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("register_user: telegram_id is required")
	}
	return nil
}

// RegisterUserResult contains the registration outcome.
type RegisterUserResult struct {
	User *user.User

	// Created is false when the user already existed.
	Created bool
}

// RegisterUserHandler handles user registration.
type RegisterUserHandler struct {
	users user.Repository
	bus   shared.EventPublisher
	log   *logger.Logger
	now   func() time.Time
}

// NewRegisterUserHandler creates the handler. bus may be nil.
func NewRegisterUserHandler(users user.Repository, bus shared.EventPublisher, log *logger.Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		users: users,
		bus:   bus,
		log:   log,
		now:   timeutil.Now,
	}
}

// Handle executes the command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*RegisterUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.users.GetByTelegramID(ctx, user.TelegramID(cmd.TelegramID))
	if err == nil {
		return &RegisterUserResult{User: existing}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	u, err := user.New(uuid.New().String(), user.TelegramID(cmd.TelegramID), cmd.Username, cmd.FirstName, h.now())
	if err != nil {
		return nil, err
	}
	if err := h.users.Create(ctx, u); err != nil {
		// two racing /start commands: pick up the created record
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, gerr := h.users.GetByTelegramID(ctx, u.TelegramID)
			if gerr != nil {
				return nil, gerr
			}
			return &RegisterUserResult{User: existing}, nil
		}
		return nil, err
	}

	h.log.Info("user registered",
		logger.UserID(u.ID), logger.TelegramID(int64(u.TelegramID)))

	if h.bus != nil {
		event := shared.UserRegisteredEvent{
			BaseEvent:  shared.NewBaseEvent(shared.EventUserRegistered, u.ID),
			TelegramID: int64(u.TelegramID),
			Username:   u.Username,
		}
		if err := h.bus.Publish(event); err != nil {
			h.log.Warn("event publish failed", logger.Err(err))
		}
	}

	return &RegisterUserResult{User: u, Created: true}, nil
}
