package gamification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// Achievement - запись каталога достижений. Condition заполняется при
// загрузке каталога; nil означает, что payload оказался битым и
// достижение никогда не выдаётся.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Emoji       string

	ConditionKind    ConditionKind
	ConditionPayload string
	Condition        Condition

	XPReward int
}

// Satisfiable сообщает, может ли достижение в принципе быть выдано.
func (a *Achievement) Satisfiable() bool {
	return a.Condition != nil
}

// Label возвращает подпись достижения с эмодзи.
func (a *Achievement) Label() string {
	if a.Emoji == "" {
		return a.Name
	}
	return a.Emoji + " " + a.Name
}

// UserAchievement - факт выдачи достижения пользователю.
// Уникален по паре (UserID, AchievementID).
type UserAchievement struct {
	ID            string
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository определяет операции хранилища для каталога достижений.
type CatalogRepository interface {
	// GetAll возвращает весь каталог с разобранными условиями.
	GetAll(ctx context.Context) ([]*Achievement, error)
}

// GrantRepository определяет операции хранилища для выданных достижений.
type GrantRepository interface {
	// ListGrantedIDs возвращает ID достижений, уже выданных пользователю.
	ListGrantedIDs(ctx context.Context, userID string) (map[string]bool, error)

	// Grant записывает выдачу достижения.
	// Повторная выдача той же пары - ErrAlreadyExists.
	Grant(ctx context.Context, ua *UserAchievement) error

	// ListForUser возвращает выданные достижения пользователя
	// вместе с записями каталога.
	ListForUser(ctx context.Context, userID string) ([]*Achievement, error)
}
