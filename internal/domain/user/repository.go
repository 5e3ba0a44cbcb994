package user

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для пользователей.
type Repository interface {
	// Create создаёт нового пользователя.
	// Возвращает ErrUserAlreadyExists, если пользователь уже существует.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по внутреннему ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByTelegramID возвращает пользователя по Telegram ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByTelegramID(ctx context.Context, telegramID TelegramID) (*User, error)

	// Update обновляет данные пользователя.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	Update(ctx context.Context, u *User) error

	// GetAll возвращает всех пользователей (для рассылок и дайджестов).
	GetAll(ctx context.Context) ([]*User, error)

	// Count возвращает общее количество пользователей.
	Count(ctx context.Context) (int, error)
}
