package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME PRESENTER
// Ответы на отметку исхода: выполнение с XP, уровнем и достижениями,
// пропуск со сбросом серии. Motivation приходит от ассистента и
// добавляется последней строкой.
// ══════════════════════════════════════════════════════════════════════════════

// OutcomePresenter форматирует результат отметки исхода задачи.
type OutcomePresenter struct{}

// NewOutcomePresenter создаёт новый презентер исходов.
func NewOutcomePresenter() *OutcomePresenter {
	return &OutcomePresenter{}
}

// FormatCompletion форматирует ответ на выполнение задачи.
func (p *OutcomePresenter) FormatCompletion(r *command.CompleteTaskResult, motivation string) string {
	if r.AlreadyCompleted {
		return fmt.Sprintf("Задача «%s» уже была выполнена ✅", html.EscapeString(r.Task.Title))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎉 <b>«%s» выполнена!</b>\n\n", html.EscapeString(r.Task.Title)))
	sb.WriteString(fmt.Sprintf("✨ +%d XP\n", r.XPEarned))

	if r.LevelUp {
		sb.WriteString(fmt.Sprintf("🆙 Новый уровень: <b>%d</b>!\n", int(r.NewLevel)))
	} else {
		sb.WriteString(fmt.Sprintf("⭐ Уровень %d · %d%% до следующего\n", int(r.Progress.Level), r.Progress.Percent))
	}

	if r.Streak.Current > 1 {
		sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s подряд\n", r.Streak.Current, daysWord(r.Streak.Current)))
	}
	if r.StreakBroken {
		sb.WriteString("💔 Прошлая серия прервалась, начинаем новую.\n")
	}

	for _, a := range r.Unlocked {
		sb.WriteString(fmt.Sprintf("\n🏆 Достижение: <b>%s</b>\n%s\n", html.EscapeString(a.Label()), html.EscapeString(a.Description)))
	}

	if motivation != "" {
		sb.WriteString("\n" + html.EscapeString(motivation))
	}

	return sb.String()
}

// FormatMiss форматирует ответ на пропуск задачи.
func (p *OutcomePresenter) FormatMiss(r *command.MissTaskResult, motivation string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Пропуск отмечен: «%s» ❌\n", html.EscapeString(r.Task.Title)))

	if r.StreakBroken && r.PreviousStreak > 0 {
		sb.WriteString(fmt.Sprintf("💔 Серия прервалась: было %d %s подряд.\n", r.PreviousStreak, daysWord(r.PreviousStreak)))
	}

	if motivation != "" {
		sb.WriteString("\n" + html.EscapeString(motivation))
	}

	return sb.String()
}
