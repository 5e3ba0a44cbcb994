package gamification

import (
	"time"

	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK
// Серия считается в календарных днях опорного часового пояса и
// пересчитывается ДО записи нового исхода в журнал: "последняя запись"
// ниже - это состояние журнала до текущего события.
// ══════════════════════════════════════════════════════════════════════════════

// StreakState - счётчики серии.
type StreakState struct {
	Current int
	Longest int
}

// LastOutcome - последняя запись журнала исходов.
type LastOutcome struct {
	At        time.Time
	Completed bool
}

// StreakTransition - результат перехода серии.
type StreakTransition struct {
	State StreakState

	// Extended - серия выросла или началась заново с единицы.
	Extended bool

	// Broken - серия сброшена в ноль пропуском.
	Broken bool
}

// NextStreak вычисляет новое состояние серии по текущему состоянию,
// последней записи журнала (nil - записей не было) и исходу дня.
//
// Правила для выполнения:
//   - первая запись вообще: серия = 1;
//   - последняя запись сегодня и была выполнением: без изменений;
//   - последняя запись сегодня, но была пропуском: серия = 1;
//   - последняя запись вчера: серия + 1;
//   - разрыв в два дня и больше: серия = 1.
//
// Пропуск всегда сбрасывает серию в ноль. Longest обновляется как
// максимум после перехода.
func NextStreak(s StreakState, last *LastOutcome, now time.Time, completed bool) StreakTransition {
	prev := s.Current

	if !completed {
		s.Current = 0
		return StreakTransition{State: s, Broken: prev > 0}
	}

	switch {
	case last == nil:
		s.Current = 1
	case timeutil.IsSameDay(last.At, now):
		if !last.Completed {
			// тот же день после пропуска - серия начинается заново
			s.Current = 1
		}
		// после выполнения в тот же день ничего не меняется
	case timeutil.IsNextDay(last.At, now):
		s.Current++
	default:
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}

	return StreakTransition{State: s, Extended: s.Current != prev}
}
