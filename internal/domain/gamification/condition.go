package gamification

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONDITIONS
// Условия достижений - закрытое множество вариантов. Сырые данные
// каталога разбираются один раз при загрузке; битое условие помечает
// запись каталога как невыполнимую, но никогда не роняет операцию.
// ══════════════════════════════════════════════════════════════════════════════

// ConditionKind - вид условия достижения.
type ConditionKind string

const (
	// KindStreak - общая серия не короче N дней.
	KindStreak ConditionKind = "streak"
	// KindCategoryTasks - N выполнений в категории.
	KindCategoryTasks ConditionKind = "category_tasks"
	// KindCategoryStreak - последние N исходов в категории подряд
	// были выполнениями.
	KindCategoryStreak ConditionKind = "category_streak"
	// KindCategoryGoal - в категории есть выполненная задача с
	// достигнутой измеримой целью.
	KindCategoryGoal ConditionKind = "category_goal"
)

// Condition - разобранное условие достижения.
type Condition interface {
	Kind() ConditionKind

	// sealed закрывает множество реализаций этим пакетом.
	sealed()
}

// StreakCondition - серия не короче Days дней.
type StreakCondition struct {
	Days int
}

func (StreakCondition) Kind() ConditionKind { return KindStreak }
func (StreakCondition) sealed()             {}

// CategoryTasksCondition - не меньше Count выполнений в категории.
type CategoryTasksCondition struct {
	Category string
	Count    int
}

func (CategoryTasksCondition) Kind() ConditionKind { return KindCategoryTasks }
func (CategoryTasksCondition) sealed()             {}

// CategoryStreakCondition - последние Length исходов в категории
// были выполнениями.
type CategoryStreakCondition struct {
	Category string
	Length   int
}

func (CategoryStreakCondition) Kind() ConditionKind { return KindCategoryStreak }
func (CategoryStreakCondition) sealed()             {}

// CategoryGoalCondition - выполненная задача с достигнутой целью
// в категории.
type CategoryGoalCondition struct {
	Category string
}

func (CategoryGoalCondition) Kind() ConditionKind { return KindCategoryGoal }
func (CategoryGoalCondition) sealed()             {}

// ParseCondition разбирает сырое условие каталога.
// Для streak payload - целое число ("7"), для остальных видов -
// JSON-объект. Любая ошибка разбора возвращает ErrMalformedCondition.
func ParseCondition(kind ConditionKind, payload string) (Condition, error) {
	payload = strings.TrimSpace(payload)

	switch kind {
	case KindStreak:
		days, err := strconv.Atoi(payload)
		if err != nil || days <= 0 {
			return nil, shared.ErrMalformedCondition
		}
		return StreakCondition{Days: days}, nil

	case KindCategoryTasks:
		var raw struct {
			Category string `json:"category"`
			Count    int    `json:"count"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, shared.ErrMalformedCondition
		}
		if raw.Category == "" || raw.Count <= 0 {
			return nil, shared.ErrMalformedCondition
		}
		return CategoryTasksCondition{Category: raw.Category, Count: raw.Count}, nil

	case KindCategoryStreak:
		var raw struct {
			Category string `json:"category"`
			Streak   int    `json:"streak"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, shared.ErrMalformedCondition
		}
		if raw.Category == "" || raw.Streak <= 0 {
			return nil, shared.ErrMalformedCondition
		}
		return CategoryStreakCondition{Category: raw.Category, Length: raw.Streak}, nil

	case KindCategoryGoal:
		var raw struct {
			Category string `json:"category"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, shared.ErrMalformedCondition
		}
		if raw.Category == "" {
			return nil, shared.ErrMalformedCondition
		}
		return CategoryGoalCondition{Category: raw.Category}, nil

	default:
		return nil, shared.ErrMalformedCondition
	}
}
