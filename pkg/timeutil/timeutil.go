// Package timeutil provides timezone-aware date helpers for the coach bot.
// Streaks and daily digests are defined in calendar days of a single
// reference timezone, so every day-boundary calculation in the project
// goes through this package. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultTZ is the default reference timezone (UTC+3, no DST).
// Russia abolished DST in 2014, so this is constant year-round.
var DefaultTZ = time.FixedZone("Europe/Moscow", 3*60*60)

// location holds the active reference timezone, settable once at startup.
var location atomic.Pointer[time.Location]

func init() {
	location.Store(DefaultTZ)
}

// SetLocation sets the reference timezone for the whole process.
// Called once from main after config is loaded.
func SetLocation(loc *time.Location) {
	if loc != nil {
		location.Store(loc)
	}
}

// Location returns the active reference timezone.
func Location() *time.Location {
	return location.Load()
}

// Now returns the current time in the reference timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// ToLocal converts a time to the reference timezone.
func ToLocal(t time.Time) time.Time {
	return t.In(Location())
}

// Date creates a time in the reference timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, Location())
}

// DateTime creates a time in the reference timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, Location())
}

// StartOfDay returns the start of the day (00:00:00) in the reference timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToLocal(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location())
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the reference timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToLocal(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, Location())
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in the reference timezone.
func StartOfWeek(t time.Time) time.Time {
	local := ToLocal(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday - 1)))
}

// StartOfMonth returns the start of the month in the reference timezone.
func StartOfMonth(t time.Time) time.Time {
	local := ToLocal(t)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, Location())
}

// IsSameDay reports whether a and b fall on the same calendar day
// in the reference timezone.
func IsSameDay(a, b time.Time) bool {
	la, lb := ToLocal(a), ToLocal(b)
	return la.Year() == lb.Year() && la.Month() == lb.Month() && la.Day() == lb.Day()
}

// IsNextDay reports whether b falls exactly one calendar day after a.
func IsNextDay(a, b time.Time) bool {
	return IsSameDay(ToLocal(a).AddDate(0, 0, 1), b)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	start := StartOfDay(a)
	end := StartOfDay(b)
	return int(end.Sub(start).Hours() / 24)
}

// IsToday checks if the given time is today in the reference timezone.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// IsYesterday checks if the given time is yesterday in the reference timezone.
func IsYesterday(t time.Time) bool {
	return IsSameDay(t, Now().AddDate(0, 0, -1))
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatRussianDate is the Russian date format (DD.MM.YYYY).
	FormatRussianDate = "02.01.2006"
	// FormatRussianDateTime is the Russian datetime format.
	FormatRussianDateTime = "02.01.2006 15:04"
)

// FormatLocal formats a time in the reference timezone with the given layout.
func FormatLocal(t time.Time, layout string) string {
	return ToLocal(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD).
func FormatDateStr(t time.Time) string {
	return FormatLocal(t, FormatDate)
}

// FormatTimeStr formats a time as a time string (HH:MM).
func FormatTimeStr(t time.Time) string {
	return FormatLocal(t, FormatTime)
}

// FormatRussian formats a time in Russian format (DD.MM.YYYY).
func FormatRussian(t time.Time) string {
	return FormatLocal(t, FormatRussianDate)
}

// FormatRelative returns a human-readable relative time string in Russian.
func FormatRelative(t time.Time) string {
	now := Now()
	local := ToLocal(t)
	d := now.Sub(local)
	if d < 0 {
		return formatFutureDuration(-d)
	}
	return formatPastDuration(d)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "только что"
	case d < time.Hour:
		return fmt.Sprintf("%d мин назад", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d ч назад", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "вчера"
		}
		return fmt.Sprintf("%d дн назад", days)
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d нед назад", int(d.Hours()/24/7))
	default:
		months := int(d.Hours() / 24 / 30)
		if months < 12 {
			return fmt.Sprintf("%d мес назад", months)
		}
		return fmt.Sprintf("%d г назад", months/12)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "сейчас"
	case d < time.Hour:
		return fmt.Sprintf("через %d мин", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("через %d ч", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "завтра"
		}
		return fmt.Sprintf("через %d дн", days)
	}
}
