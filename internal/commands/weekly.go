package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/ai"
)

var ratingColors = map[string]int{
	"A": colorGold,
	"B": colorGreen,
	"C": colorBlue,
	"D": colorOrange,
	"F": colorRed,
}

func init() {
	Register(&Command{
		Sort:           240,
		Name:           "weekly",
		Description:    "Get your weekly AI mentor summary.",
		Category:       categoryProgress,
		DCSlashHandler: weeklyHandler,
	})
}

func weeklyHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	userID, ok := requireTracked(ctx)
	if !ok {
		return
	}

	deferResponse(s, i, false)

	summary, err := ctx.Deps.Evaluator.WeeklySummary(context.Background(), userID)
	if err != nil {
		log.Printf("[ERR] Weekly summary failed for %s: %v", userID, err)
		followup(s, i, "❌ Could not generate summary.")
		return
	}
	if empty, _ := summary["_empty"].(bool); empty {
		followup(s, i, stringField(summary, "message", "No data this week."))
		return
	}

	rating := stringField(summary, "week_rating", "C")
	color, ok := ratingColors[rating]
	if !ok {
		color = colorBlue
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📊 Weekly Summary - Grade: " + rating,
		Description: stringField(summary, "weekly_feedback", "Keep learning!"),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "📈 Concepts Learned",
				Value:  fmt.Sprintf("%.0f", floatField(summary, "total_concepts_learned", 0)),
				Inline: true,
			},
			{
				Name:   "💪 Strongest Area",
				Value:  stringField(summary, "strongest_area", "N/A"),
				Inline: true,
			},
			{
				Name:   "📚 Focus Area",
				Value:  stringField(summary, "weakest_area", "N/A"),
				Inline: true,
			},
			{
				Name:   "📊 Consistency",
				Value:  titleCase(stringField(summary, "consistency_trend", "stable")),
				Inline: true,
			},
			{
				Name:   "🔬 Depth Trend",
				Value:  titleCase(stringField(summary, "depth_trend", "stable")),
				Inline: true,
			},
		},
	}

	if goals := listField(summary, "goals_for_next_week"); len(goals) > 0 {
		if len(goals) > 3 {
			goals = goals[:3]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🎯 Goals for Next Week",
			Value: bulletList(goals),
		})
	}
	if celebration := stringField(summary, "celebration", ""); celebration != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🎉 Celebration",
			Value: celebration,
		})
	}
	if ai.IsFallback(summary) {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "⚠️ Generated with fallback (AI unavailable)"}
	}

	followupEmbed(s, i, embed)
}
