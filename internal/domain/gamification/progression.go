// Package gamification содержит движок геймификации: расчёт XP и
// уровней, ежедневные серии и достижения. Это ядро бизнес-логики -
// здесь нет внешних зависимостей.
package gamification

import (
	"math"
	"strings"

	"github.com/quest-coach/quest-coach-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION
// Квадратичная кривая уровней: порог уровня L равен (L-1)^2 * baseUnit.
// ══════════════════════════════════════════════════════════════════════════════

// Глифы шкалы прогресса.
const (
	BarFilledGlyph = "▓"
	BarEmptyGlyph  = "▒"
)

// Progression вычисляет XP за задачи и уровни из накопленного XP.
type Progression struct {
	// BaseUnit - единица квадратичной кривой уровней.
	BaseUnit int

	// BarLength - длина шкалы прогресса в глифах.
	BarLength int
}

// NewProgression создаёт калькулятор прогресса. Неположительные
// параметры заменяются значениями по умолчанию (100 и 10).
func NewProgression(baseUnit, barLength int) Progression {
	if baseUnit <= 0 {
		baseUnit = 100
	}
	if barLength <= 0 {
		barLength = 10
	}
	return Progression{BaseUnit: baseUnit, BarLength: barLength}
}

// XPForTask возвращает XP за выполненную задачу: floor(base * mult).
func (p Progression) XPForTask(base, mult float64) user.XP {
	v := math.Floor(base * mult)
	if v < 0 {
		return 0
	}
	return user.XP(v)
}

// LevelForXP возвращает уровень для накопленного XP.
// При xp <= 0 уровень первый, иначе floor(sqrt(xp/baseUnit)) + 1.
func (p Progression) LevelForXP(xp user.XP) user.Level {
	if xp <= 0 {
		return 1
	}
	return user.Level(math.Sqrt(float64(xp)/float64(p.BaseUnit))) + 1
}

// MinXPForLevel возвращает минимальный XP, с которого начинается
// уровень: 0 для первого, иначе (level-1)^2 * baseUnit.
func (p Progression) MinXPForLevel(level user.Level) user.XP {
	if level <= 1 {
		return 0
	}
	n := int(level) - 1
	return user.XP(n * n * p.BaseUnit)
}

// LevelProgress описывает положение пользователя внутри текущего уровня.
type LevelProgress struct {
	Level     user.Level
	FloorXP   user.XP // начало текущего уровня
	NextXP    user.XP // начало следующего уровня
	IntoLevel user.XP // XP, набранный внутри уровня
	Span      user.XP // ширина уровня
	Percent   int     // заполненность уровня, 0..100
}

// ProgressWithinLevel вычисляет положение внутри текущего уровня.
// При нулевой ширине уровня заполненность считается полной.
func (p Progression) ProgressWithinLevel(xp user.XP) LevelProgress {
	level := p.LevelForXP(xp)
	floor := p.MinXPForLevel(level)
	next := p.MinXPForLevel(level + 1)
	span := next - floor

	lp := LevelProgress{
		Level:     level,
		FloorXP:   floor,
		NextXP:    next,
		IntoLevel: xp - floor,
		Span:      span,
	}
	if lp.IntoLevel < 0 {
		lp.IntoLevel = 0
	}

	if span <= 0 {
		lp.Percent = 100
		return lp
	}

	pct := int(lp.IntoLevel) * 100 / int(span)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	lp.Percent = pct
	return lp
}

// RenderBar строит текстовую шкалу прогресса: floor(len*pct/100)
// заполненных глифов, остальное пустые.
func (p Progression) RenderBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := p.BarLength * percent / 100
	var b strings.Builder
	b.Grow(p.BarLength * 3)
	for i := 0; i < filled; i++ {
		b.WriteString(BarFilledGlyph)
	}
	for i := filled; i < p.BarLength; i++ {
		b.WriteString(BarEmptyGlyph)
	}
	return b.String()
}
