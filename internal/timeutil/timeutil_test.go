package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, hour, min int) *Clock {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kathmandu")
	require.NoError(t, err)
	now := time.Date(2026, 3, 15, hour, min, 0, 0, loc)
	return NewFixed("Asia/Kathmandu", 3, now)
}

func TestEffectiveDate(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want string
	}{
		{"before grace hour counts as previous day", 2, "2026-03-14"},
		{"at grace hour counts as today", 3, "2026-03-15"},
		{"midday is today", 14, "2026-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixedClock(t, tt.hour, 0)
			assert.Equal(t, tt.want, c.EffectiveDate())
		})
	}
}

func TestWithinGracePeriod(t *testing.T) {
	assert.True(t, fixedClock(t, 2, 59).WithinGracePeriod())
	assert.False(t, fixedClock(t, 3, 0).WithinGracePeriod())
}

func TestStreakDeadline(t *testing.T) {
	t.Run("daytime deadline is tomorrow 03:00", func(t *testing.T) {
		c := fixedClock(t, 22, 0)
		d := c.StreakDeadline()
		assert.Equal(t, 16, d.Day())
		assert.Equal(t, 3, d.Hour())
		assert.Equal(t, 5*time.Hour, c.TimeUntilDeadline())
	})
	t.Run("grace period deadline is today 03:00", func(t *testing.T) {
		c := fixedClock(t, 1, 0)
		d := c.StreakDeadline()
		assert.Equal(t, 15, d.Day())
		assert.Equal(t, 2*time.Hour, c.TimeUntilDeadline())
	})
}

func TestDaysBetween(t *testing.T) {
	c := fixedClock(t, 12, 0)
	assert.Equal(t, 1, c.DaysBetween("2026-03-14", "2026-03-15"))
	assert.Equal(t, 1, c.DaysBetween("2026-03-15", "2026-03-14"))
	assert.Equal(t, 0, c.DaysBetween("2026-03-15", "2026-03-15"))
	assert.Equal(t, 31, c.DaysBetween("2026-02-12", "2026-03-15"))
	assert.Equal(t, -1, c.DaysBetween("garbage", "2026-03-15"))
	assert.Equal(t, -1, c.DaysBetween("2026-03-15", ""))
}

func TestIsConsecutiveDay(t *testing.T) {
	c := fixedClock(t, 12, 0)
	assert.True(t, c.IsConsecutiveDay("2026-03-14", "2026-03-15"))
	assert.False(t, c.IsConsecutiveDay("2026-03-13", "2026-03-15"))
	assert.False(t, c.IsConsecutiveDay("2026-03-15", "2026-03-15"))
	assert.False(t, c.IsConsecutiveDay("", "2026-03-15"))
}

func TestLastNDays(t *testing.T) {
	c := fixedClock(t, 12, 0)
	got := c.LastNDays(3)
	assert.Equal(t, []string{"2026-03-15", "2026-03-14", "2026-03-13"}, got)
}

func TestWeekStart(t *testing.T) {
	// 2026-03-15 is a Sunday, so the week began Monday the 9th.
	c := fixedClock(t, 12, 0)
	assert.Equal(t, "2026-03-09", c.WeekStart())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3*time.Hour + 12*time.Minute, "3h 12m"},
		{2 * time.Hour, "2h"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "30s"},
		{-time.Minute, "Expired"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.d))
	}
}

func TestStreakEmoji(t *testing.T) {
	assert.Equal(t, "💤", StreakEmoji(0))
	assert.Equal(t, "✨", StreakEmoji(1))
	assert.Equal(t, "⭐", StreakEmoji(3))
	assert.Equal(t, "🔥", StreakEmoji(7))
	assert.Equal(t, "💎", StreakEmoji(30))
	assert.Equal(t, "👑", StreakEmoji(150))
}

func TestShouldSendReminder(t *testing.T) {
	t.Run("no reminder when already logged today", func(t *testing.T) {
		c := fixedClock(t, 22, 0)
		ok, _ := c.ShouldSendReminder(c.EffectiveDate())
		assert.False(t, ok)
	})
	t.Run("no reminder for unknown last log", func(t *testing.T) {
		c := fixedClock(t, 22, 0)
		ok, _ := c.ShouldSendReminder("")
		assert.False(t, ok)
	})
	t.Run("evening warning", func(t *testing.T) {
		c := fixedClock(t, 21, 0)
		ok, msg := c.ShouldSendReminder("2026-03-14")
		assert.True(t, ok)
		assert.Contains(t, msg, "Streak at risk")
	})
	t.Run("urgent during grace period", func(t *testing.T) {
		c := fixedClock(t, 1, 30)
		ok, msg := c.ShouldSendReminder("2026-03-13")
		assert.True(t, ok)
		assert.Contains(t, msg, "URGENT")
	})
	t.Run("quiet midday", func(t *testing.T) {
		c := fixedClock(t, 12, 0)
		ok, _ := c.ShouldSendReminder("2026-03-14")
		assert.False(t, ok)
	})
}
