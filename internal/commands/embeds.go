package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/textscan"
)

var focusEmoji = map[string]string{
	"AI": "🤖", "ML": "📈", "DL": "🧠", "DS": "📊", "Mixed": "🎯",
}

var streakHealthEmoji = map[string]string{
	"safe": "🟢", "at-risk": "🟡", "broken": "🔴",
}

// EvaluationEmbed renders a finished daily evaluation. Shared by the
// evaluate command and the scheduled evening evaluation post.
func EvaluationEmbed(result *evaluator.Result, displayName string) *discordgo.MessageEmbed {
	eval := result.Evaluation
	analysis := eval.Analysis
	feedback := eval.MentorFeedback

	depth := result.CombinedDepth()
	color := colorOrange
	switch {
	case depth >= 8:
		color = colorGold
	case depth >= 6:
		color = colorGreen
	case depth >= 4:
		color = colorBlue
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📊 Daily Evaluation - " + displayName,
		Description: stringField(feedback, "mentor_feedback", "Keep up the great work!"),
		Color:       color,
	}

	focus := stringField(analysis, "primary_focus", "Mixed")
	emoji, ok := focusEmoji[focus]
	if !ok {
		emoji = "📚"
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "Focus Area",
			Value:  emoji + " " + focus,
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Depth Score",
			Value:  fmt.Sprintf("%s (%.1f/10)", strings.Repeat("⭐", int(depth/2)), depth),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Points Earned",
			Value:  fmt.Sprintf("+%d 💰", eval.PointsEarned),
			Inline: true,
		},
	)

	if len(eval.NewConcepts) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🆕 New Concepts",
			Value: textscan.FormatConcepts(eval.NewConcepts, 5),
		})
	}
	if len(eval.RepeatedConcepts) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🔄 Reviewed Concepts",
			Value: textscan.FormatConcepts(eval.RepeatedConcepts, 3),
		})
	}

	health := stringField(feedback, "streak_health", "safe")
	healthMark, ok := streakHealthEmoji[health]
	if !ok {
		healthMark = "⚪"
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "Streak Health",
			Value:  healthMark + " " + titleCase(health),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Mastery Progress",
			Value:  fmt.Sprintf("%.0f%%", floatField(feedback, "mastery_progress_percent", 0)),
			Inline: true,
		},
	)

	if next := stringField(feedback, "next_day_focus", ""); next != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📌 Tomorrow's Focus",
			Value: next,
		})
	}

	if confidence := floatField(analysis, "confidence", 0); confidence > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("AI Confidence: [%s] %.0f%%", confidenceBar(confidence), confidence*100),
		}
	} else {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "⚠️ Fallback analysis used"}
	}
	return embed
}

// titleCase uppercases the first letter of each dash- or space-separated
// word ("at-risk" -> "At-Risk").
func titleCase(s string) string {
	out := []rune(s)
	upper := true
	for i, r := range out {
		if upper && r >= 'a' && r <= 'z' {
			out[i] = r - 32
		}
		upper = r == '-' || r == ' '
	}
	return string(out)
}

func confidenceBar(confidence float64) string {
	filled := int(confidence * 10)
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func stringField(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
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
