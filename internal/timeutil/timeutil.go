// Package timeutil handles all date/time operations with timezone awareness,
// including the early-morning grace period that lets late-night activity
// count toward the previous day.
package timeutil

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"
const datetimeLayout = "2006-01-02 15:04:05"

// Clock binds date math to a timezone and a grace hour. The zero value is
// not usable; construct with New.
type Clock struct {
	loc       *time.Location
	graceHour int
	nowFn     func() time.Time // overridable in tests
}

// New creates a Clock for the given IANA timezone name. Unknown timezones
// fall back to UTC.
func New(timezone string, graceHour int) *Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, graceHour: graceHour, nowFn: time.Now}
}

// NewFixed creates a Clock whose "now" is pinned. Test helper.
func NewFixed(timezone string, graceHour int, now time.Time) *Clock {
	c := New(timezone, graceHour)
	c.nowFn = func() time.Time { return now }
	return c
}

// Now returns the current time in the configured timezone.
func (c *Clock) Now() time.Time {
	return c.nowFn().In(c.loc)
}

// Today returns today's date string in YYYY-MM-DD format.
func (c *Clock) Today() string {
	return c.Now().Format(dateLayout)
}

// Yesterday returns yesterday's date string.
func (c *Clock) Yesterday() string {
	return c.Now().AddDate(0, 0, -1).Format(dateLayout)
}

// EffectiveDate returns the date a log is attributed to. Activity before
// the grace hour counts toward the previous day.
func (c *Clock) EffectiveDate() string {
	now := c.Now()
	if now.Hour() < c.graceHour {
		return now.AddDate(0, 0, -1).Format(dateLayout)
	}
	return now.Format(dateLayout)
}

// WithinGracePeriod reports whether the current time is before the grace hour.
func (c *Clock) WithinGracePeriod() bool {
	return c.Now().Hour() < c.graceHour
}

// StreakDeadline returns the next occurrence of the grace hour, which is
// the cutoff for keeping today's streak alive.
func (c *Clock) StreakDeadline() time.Time {
	now := c.Now()
	deadline := time.Date(now.Year(), now.Month(), now.Day(), c.graceHour, 0, 0, 0, c.loc)
	if !c.WithinGracePeriod() {
		deadline = deadline.AddDate(0, 0, 1)
	}
	return deadline
}

// TimeUntilDeadline returns how long remains until the streak deadline.
func (c *Clock) TimeUntilDeadline() time.Duration {
	return c.StreakDeadline().Sub(c.Now())
}

// ParseDate parses a YYYY-MM-DD string in the configured timezone.
func (c *Clock) ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateTime formats a timestamp to the full storage representation.
func (c *Clock) FormatDateTime(t time.Time) string {
	return t.In(c.loc).Format(datetimeLayout)
}

// DaysBetween returns the absolute number of calendar days between two date
// strings, or -1 if either fails to parse.
func (c *Clock) DaysBetween(a, b string) int {
	ta, ok := c.ParseDate(a)
	if !ok {
		return -1
	}
	tb, ok := c.ParseDate(b)
	if !ok {
		return -1
	}
	days := int(tb.Sub(ta).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// IsConsecutiveDay reports whether current is exactly one calendar day
// after (or before) last.
func (c *Clock) IsConsecutiveDay(last, current string) bool {
	return c.DaysBetween(last, current) == 1
}

// IsSameDay reports whether two date strings name the same day.
func IsSameDay(a, b string) bool {
	return a == b
}

// LastNDays returns the last n date strings, today first.
func (c *Clock) LastNDays(n int) []string {
	now := c.Now()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, now.AddDate(0, 0, -i).Format(dateLayout))
	}
	return out
}

// WeekStart returns the Monday of the current week.
func (c *Clock) WeekStart() string {
	now := c.Now()
	// Go weeks start on Sunday; shift so Monday is 0.
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format(dateLayout)
}

// DailyThreadName returns the display name for today's discussion thread.
func (c *Clock) DailyThreadName() string {
	return c.Now().Format("📚 January 02, 2006")
}

// ReadableDate converts a date string to a human-readable form.
func (c *Clock) ReadableDate(s string) string {
	t, ok := c.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("January 02, 2006")
}

// FormatRemaining renders a duration as "3h 12m" style text.
func FormatRemaining(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		return "Expired"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// StreakEmoji returns the emoji matching a streak length.
func StreakEmoji(streak int) string {
	switch {
	case streak >= 100:
		return "👑"
	case streak >= 30:
		return "💎"
	case streak >= 7:
		return "🔥"
	case streak >= 3:
		return "⭐"
	case streak >= 1:
		return "✨"
	}
	return "💤"
}

// ShouldSendReminder decides whether a streak reminder is due for a user
// whose last log was on lastLogDate. Evening reminders go out after 20:00
// with under 7 hours left; urgent ones during the grace period with under
// 2 hours left.
func (c *Clock) ShouldSendReminder(lastLogDate string) (bool, string) {
	if lastLogDate == "" {
		return false, ""
	}
	if lastLogDate == c.EffectiveDate() {
		return false, ""
	}

	hour := c.Now().Hour()
	remaining := c.TimeUntilDeadline()
	hoursLeft := remaining.Hours()

	if hour >= 20 && hoursLeft <= 7 {
		return true, fmt.Sprintf("⚠️ Streak at risk! %s until deadline!", FormatRemaining(remaining))
	}
	if c.WithinGracePeriod() && hoursLeft <= 2 {
		return true, fmt.Sprintf("🚨 URGENT: Only %s left to save your streak!", FormatRemaining(remaining))
	}
	return false, ""
}
