package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
	"github.com/quest-coach/quest-coach-bot/internal/application/query"
	"github.com/quest-coach/quest-coach-bot/internal/domain/gamification"
	"github.com/quest-coach/quest-coach-bot/internal/domain/task"
	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

func TestDaysWord(t *testing.T) {
	cases := map[int]string{
		1: "день", 2: "дня", 4: "дня", 5: "дней",
		11: "дней", 14: "дней", 21: "день", 22: "дня", 25: "дней",
		101: "день", 111: "дней",
	}
	for n, want := range cases {
		assert.Equal(t, want, daysWord(n), "n=%d", n)
	}
}

func TestProgressPresenter_Card(t *testing.T) {
	p := NewProgressPresenter()

	card := p.FormatProgressCard(&query.ProgressSnapshot{
		DisplayName:   "Айдар <script>",
		XP:            250,
		Level:         2,
		TotalPoints:   310,
		NextXP:        400,
		Percent:       50,
		Bar:           "▓▓▓▓▓▒▒▒▒▒",
		CurrentStreak: 3,
		LongestStreak: 7,
		Achievements: []query.AchievementView{
			{Name: "Железный", Description: "7 дней подряд", Emoji: "🔥"},
		},
	})

	assert.Contains(t, card, "Айдар &lt;script&gt;") // HTML экранируется
	assert.Contains(t, card, "Уровень <b>2</b>")
	assert.Contains(t, card, "▓▓▓▓▓▒▒▒▒▒ 50%")
	assert.Contains(t, card, "осталось 150")
	assert.Contains(t, card, "3</b> дня подряд")
	assert.Contains(t, card, "Железный")
}

func TestTaskListPresenter_Empty(t *testing.T) {
	view := NewTaskListPresenter().FormatTaskList(nil)

	assert.Contains(t, view.Text, "Активных задач нет")
	assert.Nil(t, view.Keyboard)
}

func TestTaskListPresenter_OutcomeKeyboard(t *testing.T) {
	target := 50.0
	groups := []query.TaskGroup{
		{
			Category: &task.Category{Name: "Блог", Emoji: "✍️"},
			Tasks: []*task.Task{
				{ID: "t-1", Title: "Набрать подписчиков", CurrentProgress: 10, TargetProgress: &target},
			},
		},
	}

	view := NewTaskListPresenter().FormatTaskList(groups)

	assert.Contains(t, view.Text, "✍️ Блог")
	assert.Contains(t, view.Text, "(10/50)")

	require.NotNil(t, view.Keyboard)
	require.Len(t, view.Keyboard.Rows, 1)
	require.Len(t, view.Keyboard.Rows[0], 2)
	assert.Equal(t, "complete:t-1", view.Keyboard.Rows[0][0].CallbackData)
	assert.Equal(t, "miss:t-1", view.Keyboard.Rows[0][1].CallbackData)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "короткое", truncate("короткое", 24))

	long := "очень длинное название задачи которое не влезет"
	got := truncate(long, 24)
	assert.LessOrEqual(t, len([]rune(got)), 24)
	assert.Contains(t, got, "…")
}

func TestOutcomePresenter_Completion(t *testing.T) {
	p := NewOutcomePresenter()

	text := p.FormatCompletion(&command.CompleteTaskResult{
		Task:     &task.Task{Title: "Отчёт"},
		XPEarned: 10,
		LevelUp:  true,
		NewLevel: 3,
		Streak:   user.Streak{Current: 5},
		Unlocked: []*gamification.Achievement{
			{Name: "Железный", Emoji: "🔥", Description: "7 дней подряд"},
		},
	}, "Так держать!")

	assert.Contains(t, text, "«Отчёт» выполнена")
	assert.Contains(t, text, "+10 XP")
	assert.Contains(t, text, "Новый уровень: <b>3</b>")
	assert.Contains(t, text, "Серия: 5 дней")
	assert.Contains(t, text, "🔥 Железный")
	assert.Contains(t, text, "Так держать!")
}

func TestOutcomePresenter_AlreadyCompleted(t *testing.T) {
	p := NewOutcomePresenter()

	text := p.FormatCompletion(&command.CompleteTaskResult{
		AlreadyCompleted: true,
		Task:             &task.Task{Title: "Отчёт"},
	}, "")

	assert.Contains(t, text, "уже была выполнена")
}

func TestOutcomePresenter_Miss(t *testing.T) {
	p := NewOutcomePresenter()

	text := p.FormatMiss(&command.MissTaskResult{
		Task:           &task.Task{Title: "Пробежка"},
		StreakBroken:   true,
		PreviousStreak: 4,
	}, "Завтра получится.")

	assert.Contains(t, text, "«Пробежка» ❌")
	assert.Contains(t, text, "было 4 дня подряд")
	assert.Contains(t, text, "Завтра получится.")
}
