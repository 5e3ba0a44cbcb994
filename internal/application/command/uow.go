// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// Repositories groups the transactional repositories visible to a
// unit of work. Inside WithTx every repository runs on the same
// database transaction.
type Repositories struct {
	Users      user.Repository
	Tasks      task.Repository
	Categories task.CategoryRepository
	Logs       task.LogRepository
	Catalog    gamification.CatalogRepository
	Grants     gamification.GrantRepository
}

// UnitOfWork executes a function atomically: fn either commits as a
// whole or rolls back as a whole.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

// ProgressCache invalidates cached progress snapshots after writes.
// A nil implementation is allowed and means no caching.
type ProgressCache interface {
	Invalidate(ctx context.Context, userID string) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY STATS ADAPTER
// Resolves a category name from a condition payload into an ID and
// reads the log slice the evaluator needs. An unknown category means
// the condition is simply not met.
// ══════════════════════════════════════════════════════════════════════════════

type categoryStats struct {
	r Repositories
}

func (s categoryStats) CompletedCount(ctx context.Context, userID, category string) (int, error) {
	c, err := s.resolve(ctx, category)
	if err != nil || c == nil {
		return 0, err
	}
	return s.r.Logs.CountCompletedInCategory(ctx, userID, c.ID)
}

func (s categoryStats) LastOutcomes(ctx context.Context, userID, category string, limit int) ([]bool, error) {
	c, err := s.resolve(ctx, category)
	if err != nil || c == nil {
		return nil, err
	}
	logs, err := s.r.Logs.LastInCategory(ctx, userID, c.ID, limit)
	if err != nil {
		return nil, err
	}
	outcomes := make([]bool, len(logs))
	for i, l := range logs {
		outcomes[i] = l.IsCompleted()
	}
	return outcomes, nil
}

func (s categoryStats) GoalReached(ctx context.Context, userID, category string) (bool, error) {
	c, err := s.resolve(ctx, category)
	if err != nil || c == nil {
		return false, err
	}
	return s.r.Tasks.HasCompletedWithTarget(ctx, userID, c.ID)
}

func (s categoryStats) resolve(ctx context.Context, name string) (*task.Category, error) {
	c, err := s.r.Categories.GetByName(ctx, name)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
