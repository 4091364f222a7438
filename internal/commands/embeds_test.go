package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/state"
)

func TestEvaluationEmbedConfidentAI(t *testing.T) {
	result := &evaluator.Result{
		Evaluation: &state.Evaluation{
			Analysis: map[string]any{
				"depth_score":   9.0,
				"confidence":    0.9,
				"primary_focus": "DL",
			},
			MentorFeedback: map[string]any{
				"mentor_feedback":          "Solid work on backprop today.",
				"streak_health":            "at-risk",
				"mastery_progress_percent": 40.0,
				"next_day_focus":           "Transformers",
			},
			PointsEarned: 30,
			NewConcepts:  []string{"backpropagation"},
		},
		LocalDepth: 3,
	}

	embed := EvaluationEmbed(result, "alice")

	assert.Equal(t, "📊 Daily Evaluation - alice", embed.Title)
	assert.Equal(t, "Solid work on backprop today.", embed.Description)
	assert.Equal(t, colorGold, embed.Color)
	require.NotNil(t, embed.Footer)
	assert.Contains(t, embed.Footer.Text, "AI Confidence")
	assert.Contains(t, embed.Footer.Text, "90%")

	byName := map[string]string{}
	for _, f := range embed.Fields {
		byName[f.Name] = f.Value
	}
	assert.Equal(t, "🧠 DL", byName["Focus Area"])
	assert.Equal(t, "+30 💰", byName["Points Earned"])
	assert.Equal(t, "🟡 At-Risk", byName["Streak Health"])
	assert.Equal(t, "40%", byName["Mastery Progress"])
	assert.Equal(t, "Transformers", byName["📌 Tomorrow's Focus"])
	assert.Contains(t, byName, "🆕 New Concepts")
	assert.NotContains(t, byName, "🔄 Reviewed Concepts")
}

func TestEvaluationEmbedFallback(t *testing.T) {
	result := &evaluator.Result{
		Evaluation: &state.Evaluation{
			Analysis:     map[string]any{"depth_score": 5.0, "confidence": 0.0},
			PointsEarned: 10,
		},
		LocalDepth: 1.5,
	}

	embed := EvaluationEmbed(result, "bob")

	// depth = 5*0 + 1.5*2*1 = 3 -> shallow color, fallback footer
	assert.Equal(t, colorOrange, embed.Color)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "⚠️ Fallback analysis used", embed.Footer.Text)
	assert.Equal(t, "Keep up the great work!", embed.Description)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Safe", titleCase("safe"))
	assert.Equal(t, "At-Risk", titleCase("at-risk"))
	assert.Equal(t, "Two Words", titleCase("two words"))
	assert.Equal(t, "", titleCase(""))
}

func TestConfidenceBar(t *testing.T) {
	assert.Equal(t, "██████████", confidenceBar(1.0))
	assert.Equal(t, "█████░░░░░", confidenceBar(0.55))
	assert.Equal(t, "░░░░░░░░░░", confidenceBar(0.0))
	assert.Equal(t, "██████████", confidenceBar(1.7))
}
