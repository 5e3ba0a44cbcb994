package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain.
const (
	// User events
	EventUserRegistered EventType = "user.registered"

	// Task events
	EventTaskCreated   EventType = "task.created"
	EventTaskCompleted EventType = "task.completed"
	EventTaskMissed    EventType = "task.missed"

	// Gamification events
	EventXPGained            EventType = "gamification.xp_gained"
	EventLevelUp             EventType = "gamification.level_up"
	EventStreakExtended      EventType = "gamification.streak_extended"
	EventStreakBroken        EventType = "gamification.streak_broken"
	EventAchievementUnlocked EventType = "gamification.achievement_unlocked"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string { return e.AggregateId }

// NewBaseEvent creates a new base event stamped with the current time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event payloads
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new user starts the bot.
type UserRegisteredEvent struct {
	BaseEvent
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	TaskID   string `json:"task_id"`
	Category string `json:"category"`
}

// TaskCompletedEvent is emitted when a task is marked completed.
type TaskCompletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	TaskID   string `json:"task_id"`
	Category string `json:"category"`
	XPEarned int    `json:"xp_earned"`
}

// TaskMissedEvent is emitted when a task is reported missed.
type TaskMissedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// LevelUpEvent is emitted when a user's level increases.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

// StreakExtendedEvent is emitted when a daily streak grows.
type StreakExtendedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Days   int    `json:"days"`
}

// StreakBrokenEvent is emitted when a daily streak resets to zero.
type StreakBrokenEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	PreviousDays int    `json:"previous_days"`
}

// AchievementUnlockedEvent is emitted when an achievement is granted.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID          string `json:"user_id"`
	AchievementID   string `json:"achievement_id"`
	AchievementName string `json:"achievement_name"`
	XPReward        int    `json:"xp_reward"`
}

// ═══════════════════════════════════════════════════════════════════════════
// Event bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for every event.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber

	// Close shuts the bus down, waiting for in-flight handlers.
	Close() error
}
