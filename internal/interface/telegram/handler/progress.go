package handler

import (
	"context"
	"errors"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLER
// Карточка «Твой прогресс»: уровень, шкала, серия, достижения.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressHandler handles the /progress command.
type ProgressHandler struct {
	progress  *query.GetProgressHandler
	presenter *presenter.ProgressPresenter
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progress *query.GetProgressHandler, p *presenter.ProgressPresenter) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		presenter: p,
	}
}

// ProgressRequest contains the /progress command data.
type ProgressRequest struct {
	TelegramID int64
	ChatID     int64
}

// Handle processes the /progress command.
func (h *ProgressHandler) Handle(ctx context.Context, req ProgressRequest) (*Response, error) {
	snapshot, err := h.progress.Handle(ctx, query.GetProgressQuery{TelegramID: req.TelegramID})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return notRegisteredResponse(), nil
		}
		return nil, err
	}

	return HTMLWithKeyboard(h.presenter.FormatProgressCard(snapshot), h.presenter.Keyboard()), nil
}
