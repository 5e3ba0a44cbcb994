package presenter

import (
	"fmt"
	"html"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK LIST PRESENTER
// Список активных задач, сгруппированный по категориям, с кнопками
// отметки исхода под сообщением.
// ══════════════════════════════════════════════════════════════════════════════

// TaskListPresenter форматирует список задач для Telegram.
type TaskListPresenter struct {
	keyboards *KeyboardBuilder
}

// NewTaskListPresenter создаёт новый презентер списка задач.
func NewTaskListPresenter() *TaskListPresenter {
	return &TaskListPresenter{keyboards: NewKeyboardBuilder()}
}

// TaskListView содержит отформатированный список задач.
type TaskListView struct {
	Text     string
	Keyboard *InlineKeyboard
}

// FormatTaskList форматирует список задач (команда /tasks).
func (p *TaskListPresenter) FormatTaskList(groups []query.TaskGroup) *TaskListView {
	if len(groups) == 0 {
		return &TaskListView{
			Text: "📋 Активных задач нет.\n\n" +
				"Добавь первую: напиши её текстом или командой /add",
		}
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Твои задачи</b>\n")

	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", html.EscapeString(g.Category.Label())))
		for _, t := range g.Tasks {
			sb.WriteString(p.formatTaskLine(t))
		}
	}

	sb.WriteString("\nОтметь исход кнопками ниже 👇")

	return &TaskListView{
		Text:     sb.String(),
		Keyboard: p.keyboards.TaskOutcomeKeyboard(groups),
	}
}

func (p *TaskListPresenter) formatTaskLine(t *task.Task) string {
	var sb strings.Builder
	sb.WriteString("• ")
	sb.WriteString(html.EscapeString(t.Title))

	if t.TargetProgress != nil && *t.TargetProgress > 0 {
		sb.WriteString(fmt.Sprintf(" (%s/%s)",
			formatNumber(t.CurrentProgress), formatNumber(*t.TargetProgress)))
	}
	if t.Deadline != nil {
		sb.WriteString(fmt.Sprintf(" · до %s", t.Deadline.In(timeutil.Location()).Format("02.01")))
	}

	sb.WriteString("\n")
	return sb.String()
}

// formatNumber печатает прогресс без лишних нулей после запятой.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
