package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

func TestXPForTask(t *testing.T) {
	p := NewProgression(100, 10)

	assert.Equal(t, user.XP(10), p.XPForTask(10, 1.0))
	assert.Equal(t, user.XP(15), p.XPForTask(10, 1.5))
	// дробный результат округляется вниз
	assert.Equal(t, user.XP(12), p.XPForTask(10, 1.25))
	assert.Equal(t, user.XP(0), p.XPForTask(0, 1.0))
	assert.Equal(t, user.XP(0), p.XPForTask(10, 0))
}

func TestLevelForXP(t *testing.T) {
	p := NewProgression(100, 10)

	assert.Equal(t, user.Level(1), p.LevelForXP(0))
	assert.Equal(t, user.Level(1), p.LevelForXP(-50))
	assert.Equal(t, user.Level(1), p.LevelForXP(99))
	assert.Equal(t, user.Level(2), p.LevelForXP(100))
	assert.Equal(t, user.Level(2), p.LevelForXP(399))
	assert.Equal(t, user.Level(3), p.LevelForXP(400))
	assert.Equal(t, user.Level(4), p.LevelForXP(900))
}

func TestMinXPForLevel(t *testing.T) {
	p := NewProgression(100, 10)

	assert.Equal(t, user.XP(0), p.MinXPForLevel(0))
	assert.Equal(t, user.XP(0), p.MinXPForLevel(1))
	assert.Equal(t, user.XP(100), p.MinXPForLevel(2))
	assert.Equal(t, user.XP(400), p.MinXPForLevel(3))
	assert.Equal(t, user.XP(8100), p.MinXPForLevel(10))
}

func TestLevelRoundTrip(t *testing.T) {
	p := NewProgression(100, 10)

	// порог уровня всегда попадает ровно на свой уровень
	for l := user.Level(1); l <= 50; l++ {
		assert.Equal(t, l, p.LevelForXP(p.MinXPForLevel(l)), "level %d", l)
	}
}

func TestLevelMonotonic(t *testing.T) {
	p := NewProgression(100, 10)

	prev := p.LevelForXP(0)
	for xp := user.XP(1); xp <= 5000; xp++ {
		cur := p.LevelForXP(xp)
		assert.GreaterOrEqual(t, int(cur), int(prev), "xp %d", xp)
		prev = cur
	}
}

func TestProgressWithinLevel(t *testing.T) {
	p := NewProgression(100, 10)

	// середина второго уровня: 100..400, в уровне 150 из 300
	lp := p.ProgressWithinLevel(250)
	assert.Equal(t, user.Level(2), lp.Level)
	assert.Equal(t, user.XP(100), lp.FloorXP)
	assert.Equal(t, user.XP(400), lp.NextXP)
	assert.Equal(t, user.XP(150), lp.IntoLevel)
	assert.Equal(t, user.XP(300), lp.Span)
	assert.Equal(t, 50, lp.Percent)

	// начало уровня
	lp = p.ProgressWithinLevel(100)
	assert.Equal(t, 0, lp.Percent)
	assert.Equal(t, user.XP(0), lp.IntoLevel)

	// последняя единица перед переходом
	lp = p.ProgressWithinLevel(399)
	assert.Equal(t, user.Level(2), lp.Level)
	assert.Equal(t, 99, lp.Percent)

	// нулевой XP
	lp = p.ProgressWithinLevel(0)
	assert.Equal(t, user.Level(1), lp.Level)
	assert.Equal(t, 0, lp.Percent)
}

func TestProgressPercentBounds(t *testing.T) {
	p := NewProgression(100, 10)

	for xp := user.XP(0); xp <= 3000; xp += 7 {
		lp := p.ProgressWithinLevel(xp)
		assert.GreaterOrEqual(t, lp.Percent, 0)
		assert.LessOrEqual(t, lp.Percent, 100)
	}
}

func TestRenderBar(t *testing.T) {
	p := NewProgression(100, 10)

	assert.Equal(t, "▒▒▒▒▒▒▒▒▒▒", p.RenderBar(0))
	assert.Equal(t, "▓▓▓▓▓▒▒▒▒▒", p.RenderBar(50))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", p.RenderBar(100))
	// 99% при длине 10 даёт девять заполненных глифов
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▒", p.RenderBar(99))
	// выход за границы зажимается
	assert.Equal(t, "▒▒▒▒▒▒▒▒▒▒", p.RenderBar(-5))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", p.RenderBar(150))
}
