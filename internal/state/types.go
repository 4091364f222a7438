package state

import "github.com/keshon/learning-mentor/internal/config"

// Root is the entire persisted bot state. It serializes to a compact JSON
// blob stored in the pinned state message, so field tags stay short and
// empty collections are omitted.
type Root struct {
	Version     int                               `json:"state_version"`
	LastUpdated string                            `json:"last_updated,omitempty"`
	Metadata    Metadata                          `json:"bot_metadata"`
	Users       map[string]*User                  `json:"users"`
	DailyFlags  map[string]map[string]Flags       `json:"daily_flags,omitempty"`
	Evaluations map[string]map[string]*Evaluation `json:"evaluation_cache,omitempty"`
}

// Metadata is bot-level bookkeeping inside the state blob.
type Metadata struct {
	Version          string `json:"version"`
	StartedAt        string `json:"started_at,omitempty"`
	TotalEvaluations int    `json:"total_evaluations"`
}

// Flags holds per-user per-day markers such as "evaluated" or
// "reminder_sent".
type Flags map[string]any

// User is the tracked per-member record.
type User struct {
	ID               string             `json:"user_id"`
	Username         string             `json:"username"`
	Points           int                `json:"points"`
	Streak           int                `json:"streak"`
	MaxStreak        int                `json:"max_streak"`
	LastLogDate      string             `json:"last_log_date,omitempty"`
	StreakHealth     string             `json:"streak_health"`
	SkillLevel       int                `json:"skill_level"`
	DaysActive       int                `json:"days_active"`
	TotalLogs        int                `json:"total_logs"`
	Badges           []string           `json:"badges,omitempty"`
	ConceptFrequency map[string]int     `json:"concept_frequency,omitempty"`
	TopicCoverage    map[string]float64 `json:"topic_coverage,omitempty"`
	LastEvaluation   *Evaluation        `json:"last_evaluation,omitempty"`
	EvaluationCount  int                `json:"evaluation_count"`
	CreatedAt        string             `json:"created_at,omitempty"`
	DailyThreadID    string             `json:"daily_thread_id,omitempty"`
}

// Streak health values.
const (
	HealthSafe   = "safe"
	HealthAtRisk = "at-risk"
	HealthBroken = "broken"
)

// Evaluation is one cached daily evaluation record.
type Evaluation struct {
	ID                string         `json:"id,omitempty"`
	UserID            string         `json:"user_id"`
	Date              string         `json:"date"`
	Analysis          map[string]any `json:"analysis,omitempty"`
	MentorFeedback    map[string]any `json:"mentor_feedback,omitempty"`
	PointsEarned      int            `json:"points_earned"`
	NewConcepts       []string       `json:"new_concepts,omitempty"`
	RepeatedConcepts  []string       `json:"repeated_concepts,omitempty"`
	RepetitionPenalty float64        `json:"repetition_penalty"`
	Timestamp         string         `json:"timestamp,omitempty"`
}

// CombinedDepth merges the AI depth score with the local heuristic score.
// A confident AI verdict stands alone; a hesitant one is blended with the
// local score (scaled from 0-5 to 0-10) in proportion to confidence.
func (e *Evaluation) CombinedDepth(localDepth float64) float64 {
	aiScore := floatField(e.Analysis, "depth_score", 5)
	confidence := floatField(e.Analysis, "confidence", 0.5)

	if confidence >= 0.7 {
		return aiScore
	}
	return aiScore*confidence + localDepth*2*(1-confidence)
}

func floatField(m map[string]any, key string, def float64) float64 {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func defaultRoot() *Root {
	return &Root{
		Version: config.StateVersion,
		Metadata: Metadata{
			Version: "1.0.0",
		},
		Users:       make(map[string]*User),
		DailyFlags:  make(map[string]map[string]Flags),
		Evaluations: make(map[string]map[string]*Evaluation),
	}
}

func defaultUser(id, username string) *User {
	return &User{
		ID:               id,
		Username:         username,
		StreakHealth:     HealthSafe,
		ConceptFrequency: make(map[string]int),
		TopicCoverage:    defaultCoverage(),
	}
}

func defaultCoverage() map[string]float64 {
	coverage := make(map[string]float64, len(config.Topics))
	for _, t := range config.Topics {
		coverage[t] = 0
	}
	return coverage
}

// normalize repairs nil collections after deserialization so callers never
// see nil maps.
func (r *Root) normalize() {
	if r.Users == nil {
		r.Users = make(map[string]*User)
	}
	if r.DailyFlags == nil {
		r.DailyFlags = make(map[string]map[string]Flags)
	}
	if r.Evaluations == nil {
		r.Evaluations = make(map[string]map[string]*Evaluation)
	}
	for id, u := range r.Users {
		if u.ID == "" {
			u.ID = id
		}
		if u.ConceptFrequency == nil {
			u.ConceptFrequency = make(map[string]int)
		}
		if u.TopicCoverage == nil {
			u.TopicCoverage = defaultCoverage()
		}
		if u.StreakHealth == "" {
			u.StreakHealth = HealthSafe
		}
	}
}

// clone returns a deep-enough copy of a user for safe external reads.
func (u *User) clone() *User {
	c := *u
	c.Badges = append([]string(nil), u.Badges...)
	c.ConceptFrequency = make(map[string]int, len(u.ConceptFrequency))
	for k, v := range u.ConceptFrequency {
		c.ConceptFrequency[k] = v
	}
	c.TopicCoverage = make(map[string]float64, len(u.TopicCoverage))
	for k, v := range u.TopicCoverage {
		c.TopicCoverage[k] = v
	}
	return &c
}

// HasBadge reports whether the user already earned a badge.
func (u *User) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Level returns the user's skill tier from the level table.
func (u *User) Level() config.SkillLevel {
	idx := u.SkillLevel
	if idx < 0 || idx >= len(config.SkillLevels) {
		idx = 0
	}
	return config.SkillLevels[idx]
}
