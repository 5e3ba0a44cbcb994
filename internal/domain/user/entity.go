// Package user содержит доменную модель пользователя коуч-бота.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package user

import (
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TelegramID представляет уникальный идентификатор пользователя Telegram.
type TelegramID int64

// IsValid проверяет, что TelegramID положительный.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// XP представляет очки опыта пользователя.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Level представляет уровень пользователя, вычисляемый из XP.
// Формула уровня живёт в пакете gamification.
type Level int

// IsValid проверяет, что уровень не меньше первого.
func (l Level) IsValid() bool {
	return l >= 1
}

// Points представляет накопленные баллы (растут вместе с XP,
// но никогда не тратятся на уровни).
type Points int

// ══════════════════════════════════════════════════════════════════════════════
// STREAK
// ══════════════════════════════════════════════════════════════════════════════

// Streak хранит состояние ежедневной серии пользователя.
// LastLogAt - момент последней записи об исходе задачи; серия
// пересчитывается до того, как новая запись сохранена.
type Streak struct {
	Current   int
	Longest   int
	LastLogAt time.Time // нулевое значение - записей ещё не было
}

// HasHistory сообщает, была ли хоть одна запись об исходе.
func (s Streak) HasHistory() bool {
	return !s.LastLogAt.IsZero()
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// User - агрегат пользователя: профиль Telegram плюс состояние
// геймификации (XP, уровень, баллы, серия).
type User struct {
	ID         string
	TelegramID TelegramID
	Username   string
	FirstName  string

	XP          XP
	Level       Level
	TotalPoints Points
	Streak      Streak

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New создаёт нового пользователя с начальным состоянием геймификации.
func New(id string, telegramID TelegramID, username, firstName string, now time.Time) (*User, error) {
	if !telegramID.IsValid() {
		return nil, shared.ErrInvalidTelegramID
	}
	return &User{
		ID:         id,
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		XP:         0,
		Level:      1,
		Streak:     Streak{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CreditXP начисляет XP и баллы. Уровень пересчитывает вызывающий код
// через gamification.Progression.
func (u *User) CreditXP(amount XP, now time.Time) {
	if amount <= 0 {
		return
	}
	u.XP = u.XP.Add(amount)
	u.TotalPoints += Points(amount)
	u.UpdatedAt = now
}

// ApplyStreak записывает новое состояние серии.
func (u *User) ApplyStreak(s Streak, now time.Time) {
	u.Streak = s
	u.UpdatedAt = now
}

// DisplayName возвращает имя для обращения к пользователю.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "друг"
}
