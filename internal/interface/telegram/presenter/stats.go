package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS PRESENTER
// Сводка /stats: день, неделя, месяц плюс самая результативная
// категория месяца.
// ══════════════════════════════════════════════════════════════════════════════

// StatsPresenter форматирует отчёт статистики для Telegram.
type StatsPresenter struct{}

// NewStatsPresenter создаёт новый презентер статистики.
func NewStatsPresenter() *StatsPresenter {
	return &StatsPresenter{}
}

// FormatStatsReport форматирует отчёт (команда /stats).
func (p *StatsPresenter) FormatStatsReport(r *query.StatsReport) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Статистика</b>\n\n")
	sb.WriteString(p.formatPeriod("Сегодня", r.Today))
	sb.WriteString(p.formatPeriod("Неделя", r.Week))
	sb.WriteString(p.formatPeriod("Месяц", r.Month))

	if r.TopCategory != "" {
		sb.WriteString(fmt.Sprintf("\n🏆 Категория месяца: <b>%s</b>", html.EscapeString(r.TopCategory)))
	}

	return sb.String()
}

func (p *StatsPresenter) formatPeriod(label string, s query.PeriodStats) string {
	total := s.Completed + s.Missed
	if total == 0 {
		return fmt.Sprintf("<b>%s:</b> записей нет\n", label)
	}
	return fmt.Sprintf("<b>%s:</b> ✅ %d · ❌ %d · %d%%\n", label, s.Completed, s.Missed, s.Percent)
}
