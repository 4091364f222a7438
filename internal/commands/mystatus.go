package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register(&Command{
		Sort:           120,
		Name:           "mystatus",
		Description:    "Get a comprehensive AI-generated status report.",
		Category:       categoryJourney,
		DCSlashHandler: myStatusHandler,
	})
}

func myStatusHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	userID, ok := requireTracked(ctx)
	if !ok {
		return
	}

	deferResponse(s, i, false)

	status, err := ctx.Deps.Mentor.StatusReport(context.Background(), userID)
	if err != nil {
		log.Printf("[ERR] Status report failed for %s: %v", userID, err)
		followup(s, i, "❌ Could not build your status report.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📊 Your Learning Status Report",
		Description: stringField(status, "overall_status", "No summary available"),
		Color:       colorGreen,
	}

	if strengths := listField(status, "strengths"); len(strengths) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "💪 Strengths",
			Value: bulletList(strengths),
		})
	}
	if areas := listField(status, "areas_to_improve"); len(areas) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📈 Areas to Improve",
			Value: bulletList(areas),
		})
	}
	if steps := listField(status, "next_immediate_steps"); len(steps) > 0 {
		var b strings.Builder
		for n, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", n+1, step)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🎯 Next Steps",
			Value: strings.TrimRight(b.String(), "\n"),
		})
	}

	if progress, ok := status["progress"].(map[string]any); ok {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🗺️ Career Pathway",
			Value: fmt.Sprintf("%s (%.0f%%)",
				stringField(progress, "current_milestone", "Unknown"),
				floatField(progress, "progress_percentage", 0)),
			Inline: true,
		})
	}

	if motivation := stringField(status, "motivation_message", ""); motivation != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "✨ Keep Going!",
			Value: motivation,
		})
	}

	followupEmbed(s, i, embed)
}

// listField extracts a []string from a decoded JSON map.
func listField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func bulletList(items []string) string {
	parts := make([]string, len(items))
	for n, item := range items {
		parts[n] = "• " + item
	}
	return strings.Join(parts, "\n")
}
