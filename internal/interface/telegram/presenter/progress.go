package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CARD PRESENTER
// Форматирует карточку «Твой прогресс»: уровень, шкала XP, серия,
// достижения. Карточка - главный экран геймификации.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressPresenter форматирует снимок прогресса для Telegram.
type ProgressPresenter struct {
	keyboards *KeyboardBuilder
}

// NewProgressPresenter создаёт новый презентер прогресса.
func NewProgressPresenter() *ProgressPresenter {
	return &ProgressPresenter{keyboards: NewKeyboardBuilder()}
}

// FormatProgressCard форматирует полную карточку прогресса (команда /progress).
func (p *ProgressPresenter) FormatProgressCard(s *query.ProgressSnapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎮 <b>Твой прогресс, %s</b>\n\n", html.EscapeString(s.DisplayName)))

	sb.WriteString(fmt.Sprintf("⭐ Уровень <b>%d</b>\n", s.Level))
	sb.WriteString(fmt.Sprintf("%s %d%%\n", s.Bar, s.Percent))
	sb.WriteString(fmt.Sprintf("✨ %d XP (до уровня %d осталось %d)\n", s.XP, s.Level+1, s.NextXP-s.XP))
	sb.WriteString(fmt.Sprintf("🏅 Всего баллов: %d\n\n", s.TotalPoints))

	sb.WriteString(p.formatStreakSection(s))

	if len(s.Achievements) > 0 {
		sb.WriteString("\n🏆 <b>Достижения</b>\n")
		for _, a := range s.Achievements {
			sb.WriteString(fmt.Sprintf("%s %s - %s\n", a.Emoji, html.EscapeString(a.Name), html.EscapeString(a.Description)))
		}
	}

	return sb.String()
}

func (p *ProgressPresenter) formatStreakSection(s *query.ProgressSnapshot) string {
	if s.CurrentStreak == 0 {
		return fmt.Sprintf("🔥 Серия: нет\n💪 Рекорд: %d %s\n", s.LongestStreak, daysWord(s.LongestStreak))
	}
	return fmt.Sprintf("🔥 Серия: <b>%d</b> %s подряд\n💪 Рекорд: %d %s\n",
		s.CurrentStreak, daysWord(s.CurrentStreak),
		s.LongestStreak, daysWord(s.LongestStreak))
}

// Keyboard возвращает клавиатуру карточки прогресса.
func (p *ProgressPresenter) Keyboard() *InlineKeyboard {
	return NewInlineKeyboard().
		AddRow(
			CallbackButton("📋 Мои задачи", "cmd:tasks"),
			CallbackButton("📊 Статистика", "cmd:stats"),
		)
}

// daysWord склоняет слово «день» по числу.
func daysWord(n int) string {
	n = n % 100
	if n >= 11 && n <= 14 {
		return "дней"
	}
	switch n % 10 {
	case 1:
		return "день"
	case 2, 3, 4:
		return "дня"
	default:
		return "дней"
	}
}
