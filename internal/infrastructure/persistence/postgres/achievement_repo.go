package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORIES IMPLEMENTATION
// Каталог достижений и журнал выдач.
// ══════════════════════════════════════════════════════════════════════════════

const achievementColumns = `id, name, description, emoji, condition_kind, condition_payload, xp_reward`

// CatalogRepository implements gamification.CatalogRepository for PostgreSQL.
type CatalogRepository struct {
	q Querier
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(q Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// GetAll returns the whole achievement catalog. Conditions are parsed at
// load time; entries with a malformed payload keep a nil Condition and
// are never granted.
func (r *CatalogRepository) GetAll(ctx context.Context) ([]*gamification.Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements ORDER BY name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var catalog []*gamification.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, a)
	}
	return catalog, rows.Err()
}

// GrantRepository implements gamification.GrantRepository for PostgreSQL.
type GrantRepository struct {
	q Querier
}

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(q Querier) *GrantRepository {
	return &GrantRepository{q: q}
}

// ListGrantedIDs returns the IDs of achievements already granted to the user.
func (r *GrantRepository) ListGrantedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query := `SELECT achievement_id FROM user_achievements WHERE user_id = $1`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query granted achievements: %w", err)
	}
	defer rows.Close()

	granted := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement id: %w", err)
		}
		granted[id] = true
	}
	return granted, rows.Err()
}

// Grant records an achievement grant.
func (r *GrantRepository) Grant(ctx context.Context, ua *gamification.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.Exec(ctx, query, ua.ID, ua.UserID, ua.AchievementID, ua.UnlockedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to grant achievement: %w", err)
	}
	return nil
}

// ListForUser returns the user's granted achievements with their catalog entries.
func (r *GrantRepository) ListForUser(ctx context.Context, userID string) ([]*gamification.Achievement, error) {
	query := `
		SELECT a.id, a.name, a.description, a.emoji, a.condition_kind, a.condition_payload, a.xp_reward
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.unlocked_at
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*gamification.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func scanAchievement(row pgx.Row) (*gamification.Achievement, error) {
	var (
		a    gamification.Achievement
		kind string
	)

	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Emoji, &kind, &a.ConditionPayload, &a.XPReward)
	if err != nil {
		return nil, fmt.Errorf("failed to scan achievement: %w", err)
	}

	a.ConditionKind = gamification.ConditionKind(kind)
	if cond, err := gamification.ParseCondition(a.ConditionKind, a.ConditionPayload); err == nil {
		a.Condition = cond
	}
	return &a, nil
}
