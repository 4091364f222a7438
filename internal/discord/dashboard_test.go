package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/learning-mentor/internal/state"
)

func TestSnowflakeAt(t *testing.T) {
	epoch := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "0", snowflakeAt(epoch))
	assert.Equal(t, "4194304", snowflakeAt(epoch.Add(time.Millisecond)))

	// later timestamps yield strictly larger IDs
	a := snowflakeAt(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	b := snowflakeAt(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC))
	assert.Less(t, a, b)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", progressBar(0))
	assert.Equal(t, "█████░░░░░", progressBar(50))
	assert.Equal(t, "██████████", progressBar(100))
	assert.Equal(t, "██████████", progressBar(250))
	assert.Equal(t, "░░░░░░░░░░", progressBar(-5))
}

func TestUserSection(t *testing.T) {
	user := &state.User{
		ID:           "111",
		Username:     "alice",
		Points:       250,
		Streak:       3,
		MaxStreak:    5,
		StreakHealth: state.HealthSafe,
		TotalLogs:    12,
		DaysActive:   8,
		TopicCoverage: map[string]float64{
			"AI": 2,
			"ML": 0,
		},
		Badges: []string{"first_log"},
	}

	section := userSection(user)

	assert.Contains(t, section, "🌱 **Beginner**")
	assert.Contains(t, section, "🟢")
	assert.Contains(t, section, "⭐ **3** days (best: 5)")
	assert.Contains(t, section, "**250** pts")
	assert.Contains(t, section, "**12** logs")
	assert.Contains(t, section, "[█████░░░░░] 50%")
	assert.Contains(t, section, "250 pts → 📚 Intermediate Practitioner")
	assert.Contains(t, section, "AI:2")
	assert.NotContains(t, section, "ML:0")
	assert.Contains(t, section, "👶")
}

func TestUserSectionMaxLevel(t *testing.T) {
	user := &state.User{
		ID:            "222",
		Points:        9000,
		SkillLevel:    3,
		StreakHealth:  state.HealthBroken,
		TopicCoverage: map[string]float64{},
	}

	section := userSection(user)

	assert.Contains(t, section, "✨ Maximum level achieved!")
	assert.Contains(t, section, "📚 Topics: None yet")
	assert.Contains(t, section, "🏆 Badges: None")
}
