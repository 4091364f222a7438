// /internal/config/config.go
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// StateVersion is bumped whenever the persisted state schema changes.
// Loading an older blob triggers migration in the state manager.
const StateVersion = 2

// Config holds every runtime setting. All values come from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"`

	StateChannelID        string `env:"STATE_CHANNEL_ID"`
	LearningChannelID     string `env:"LEARNING_CHANNEL_ID"`
	DashboardChannelID    string `env:"DASHBOARD_CHANNEL_ID"`
	DailyThreadsChannelID string `env:"DAILY_THREADS_CHANNEL_ID"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// Exactly two tracked users in the reference deployment, comma separated.
	UserIDs []string `env:"USER_IDS"`

	Timezone string `env:"TIMEZONE" envDefault:"Asia/Kathmandu"`

	MinMessageLength int `env:"MIN_MESSAGE_LENGTH" envDefault:"30"`
	BasePoints       int `env:"BASE_POINTS" envDefault:"10"`
	DepthBonus       int `env:"DEPTH_BONUS" envDefault:"5"`
	StreakGraceHour  int `env:"STREAK_GRACE_HOUR" envDefault:"3"`

	GeminiDailyLimitPerUser int `env:"GEMINI_DAILY_LIMIT_PER_USER" envDefault:"1"`
	DashboardRefreshSeconds int `env:"DASHBOARD_REFRESH_SECONDS" envDefault:"300"`

	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
}

// New parses the environment into a Config. Parse errors are fatal.
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse environment: %v", err)
	}
	return cfg
}

// Validate returns every missing required setting. The caller decides
// whether that is fatal (it is, at startup).
func (c *Config) Validate() []error {
	var errs []error

	required := []struct{ name, val string }{
		{"DISCORD_TOKEN", c.DiscordToken},
		{"GUILD_ID", c.GuildID},
		{"STATE_CHANNEL_ID", c.StateChannelID},
		{"LEARNING_CHANNEL_ID", c.LearningChannelID},
		{"DASHBOARD_CHANNEL_ID", c.DashboardChannelID},
		{"DAILY_THREADS_CHANNEL_ID", c.DailyThreadsChannelID},
		{"GEMINI_API_KEY", c.GeminiAPIKey},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	if len(c.UserIDs) != 2 {
		errs = append(errs, fmt.Errorf("exactly 2 USER_IDS are required, got %d", len(c.UserIDs)))
	}

	return errs
}

// SkillLevel is one tier of the points-derived level table.
type SkillLevel struct {
	Name      string
	MinPoints int
	Emoji     string
}

// SkillLevels is ordered by index; the highest tier whose MinPoints
// does not exceed the user's points wins.
var SkillLevels = []SkillLevel{
	{Name: "Beginner", MinPoints: 0, Emoji: "🌱"},
	{Name: "Intermediate", MinPoints: 500, Emoji: "📚"},
	{Name: "Advanced", MinPoints: 2000, Emoji: "🚀"},
	{Name: "Researcher", MinPoints: 5000, Emoji: "🎓"},
}

// Badge describes a one-time achievement.
type Badge struct {
	Name        string
	Emoji       string
	Description string
}

var Badges = map[string]Badge{
	"first_log":    {Name: "First Steps", Emoji: "👶", Description: "Logged first learning entry"},
	"streak_7":     {Name: "Week Warrior", Emoji: "🔥", Description: "7-day streak"},
	"streak_30":    {Name: "Month Master", Emoji: "💎", Description: "30-day streak"},
	"streak_100":   {Name: "Century Scholar", Emoji: "👑", Description: "100-day streak"},
	"depth_master": {Name: "Deep Diver", Emoji: "🧠", Description: "Achieved depth score 9+"},
	"all_topics":   {Name: "Renaissance Mind", Emoji: "🌟", Description: "Covered all 4 domains"},
	"consistent":   {Name: "Consistency King", Emoji: "⚡", Description: "10 consecutive high-quality days"},
}

// Topics is the fixed topic set used for classification and coverage.
var Topics = []string{"AI", "ML", "DL", "DS"}
