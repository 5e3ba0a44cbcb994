package handler

import (
	"context"
	"errors"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/interface/telegram/presenter"
)

// StatsHandler handles the /stats command.
type StatsHandler struct {
	stats     *query.GetStatsHandler
	presenter *presenter.StatsPresenter
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *query.GetStatsHandler, p *presenter.StatsPresenter) *StatsHandler {
	return &StatsHandler{
		stats:     stats,
		presenter: p,
	}
}

// StatsRequest contains the /stats command data.
type StatsRequest struct {
	TelegramID int64
	ChatID     int64
}

// Handle processes the /stats command.
func (h *StatsHandler) Handle(ctx context.Context, req StatsRequest) (*Response, error) {
	report, err := h.stats.Handle(ctx, query.GetStatsQuery{TelegramID: req.TelegramID})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return notRegisteredResponse(), nil
		}
		return nil, err
	}

	return HTML(h.presenter.FormatStatsReport(report)), nil
}
