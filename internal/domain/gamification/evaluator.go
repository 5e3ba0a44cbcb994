package gamification

import (
	"context"

	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATOR
// Проверяет каталог достижений после каждого выполнения задачи.
// Выдача идемпотентна: уже выданные достижения пропускаются, выдача
// и начисление награды выполняются вызывающим кодом в той же транзакции.
// ══════════════════════════════════════════════════════════════════════════════

// CategoryStats - срез журнала исходов по категориям, нужный для
// проверки условий. Категории адресуются по имени из payload условия.
type CategoryStats interface {
	// CompletedCount возвращает число выполнений пользователя в категории.
	CompletedCount(ctx context.Context, userID, category string) (int, error)

	// LastOutcomes возвращает исходы последних limit записей пользователя
	// в категории, от новых к старым (true - выполнение).
	LastOutcomes(ctx context.Context, userID, category string, limit int) ([]bool, error)

	// GoalReached сообщает, есть ли в категории выполненная задача с
	// заданной и достигнутой целью.
	GoalReached(ctx context.Context, userID, category string) (bool, error)
}

// Evaluator проверяет условия достижений.
type Evaluator struct {
	stats CategoryStats
}

// NewEvaluator создаёт evaluator поверх среза статистики.
func NewEvaluator(stats CategoryStats) *Evaluator {
	return &Evaluator{stats: stats}
}

// Evaluate возвращает достижения из каталога, которые выполнены сейчас
// и ещё не выданы пользователю. Невыполнимые записи (битый payload)
// пропускаются молча.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	u *user.User,
	catalog []*Achievement,
	granted map[string]bool,
) ([]*Achievement, error) {
	var unlocked []*Achievement

	for _, a := range catalog {
		if granted[a.ID] || !a.Satisfiable() {
			continue
		}

		ok, err := e.satisfied(ctx, u, a.Condition)
		if err != nil {
			return nil, err
		}
		if ok {
			unlocked = append(unlocked, a)
		}
	}

	return unlocked, nil
}

// satisfied проверяет одно условие.
func (e *Evaluator) satisfied(ctx context.Context, u *user.User, c Condition) (bool, error) {
	switch cond := c.(type) {
	case StreakCondition:
		return u.Streak.Current >= cond.Days, nil

	case CategoryTasksCondition:
		n, err := e.stats.CompletedCount(ctx, u.ID, cond.Category)
		if err != nil {
			return false, err
		}
		return n >= cond.Count, nil

	case CategoryStreakCondition:
		outcomes, err := e.stats.LastOutcomes(ctx, u.ID, cond.Category, cond.Length)
		if err != nil {
			return false, err
		}
		if len(outcomes) < cond.Length {
			return false, nil
		}
		for _, completed := range outcomes {
			if !completed {
				return false, nil
			}
		}
		return true, nil

	case CategoryGoalCondition:
		return e.stats.GoalReached(ctx, u.ID, cond.Category)

	default:
		return false, nil
	}
}
