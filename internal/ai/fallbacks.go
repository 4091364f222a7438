package ai

import "github.com/keshon/learning-mentor/internal/state"

// Deterministic payloads used when Gemini is unreachable, over quota, or
// returns garbage. Shapes mirror the prompt contracts; "_fallback" marks
// them so embeds can show a degraded-analysis footer.

// FallbackAnalysis is the neutral stand-in for log analysis.
func FallbackAnalysis() map[string]any {
	return map[string]any{
		"primary_focus":        "Mixed",
		"concepts_detected":    []any{},
		"new_concepts":         []any{},
		"repeated_concepts":    []any{},
		"depth_score":          float64(5),
		"technical_indicators": []any{},
		"confidence":           float64(0),
		"_fallback":            true,
	}
}

// FallbackMentorFeedback keys encouragement off the streak so the message
// still feels situational.
func FallbackMentorFeedback(user *state.User) map[string]any {
	feedback := "Every learning session counts. Keep pushing forward!"
	switch {
	case user.Streak >= 7:
		feedback = "Keep up the consistent work! Your dedication is showing."
	case user.Streak >= 3:
		feedback = "Good progress! Stay consistent to build momentum."
	}

	progress := user.Points / 50
	if progress > 100 {
		progress = 100
	}

	return map[string]any{
		"consistency_score":        float64(5),
		"mastery_progress_percent": float64(progress),
		"mentor_feedback":          feedback,
		"next_day_focus":           "Continue exploring current topics",
		"streak_health":            user.StreakHealth,
		"motivational_note":        "Small steps lead to big achievements!",
		"areas_for_improvement":    []any{"Consistency", "Depth", "Variety"},
		"confidence":               float64(0),
		"_fallback":                true,
	}
}

// FallbackWeeklySummary is the neutral weekly report.
func FallbackWeeklySummary() map[string]any {
	return map[string]any{
		"week_rating":            "C",
		"total_concepts_learned": float64(0),
		"strongest_area":         "Mixed",
		"weakest_area":           "Mixed",
		"consistency_trend":      "stable",
		"depth_trend":            "stable",
		"weekly_feedback":        "Keep learning! Weekly AI analysis unavailable.",
		"goals_for_next_week": []any{
			"Log daily learnings",
			"Explore new concepts",
			"Review previous material",
		},
		"celebration": "You're committed to learning!",
		"_fallback":   true,
	}
}

// FallbackTrajectory is the static roadmap text.
func FallbackTrajectory() string {
	return `📊 **Your Learning Trajectory**

Based on your current progress, you're on a solid path toward mastery!

**Next Steps:**
1. Focus on building foundational understanding
2. Apply concepts through practical projects
3. Explore connections between AI/ML/DL domains

**Timeline:** Continue your current pace for steady improvement.

*Keep logging your daily learnings to get personalized AI-powered insights!*`
}

// IsFallback reports whether a payload came from the fallback path.
func IsFallback(payload map[string]any) bool {
	v, _ := payload["_fallback"].(bool)
	return v
}
