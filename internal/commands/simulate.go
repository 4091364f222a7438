package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/textscan"
)

func init() {
	Register(&Command{
		Sort:        410,
		Name:        "simulate",
		Description: "Score hypothetical logs for a user without saving anything.",
		Category:    categoryAdmin,
		AdminOnly:   true,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to simulate for",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "logs",
				Description: "Logs separated by | (pipe)",
				Required:    true,
			},
		},
		DCSlashHandler: simulateHandler,
	})
}

func simulateHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}
	targetID := userOption(s, i, "user", "")
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, targetID) {
		respondEphemeral(s, i, "❌ User is not tracked.")
		return
	}

	var logs []string
	for _, part := range strings.Split(stringOption(i, "logs", ""), "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			logs = append(logs, trimmed)
		}
	}
	if len(logs) == 0 {
		respondEphemeral(s, i, "❌ No valid logs provided.")
		return
	}

	deferResponse(s, i, true)

	sim, err := ctx.Deps.Evaluator.SimulateDay(context.Background(), targetID, logs)
	if err != nil {
		followup(s, i, "❌ Error: "+err.Error())
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🔬 Simulation Results",
		Description: fmt.Sprintf("Simulated %d logs for <@%s>", len(logs), targetID),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "AI Analysis",
				Value: fmt.Sprintf("Focus: %s\nDepth: %v/10",
					stringField(sim.Analysis, "primary_focus", "N/A"),
					sim.Analysis["depth_score"]),
				Inline: true,
			},
			{
				Name:   "Estimated Points",
				Value:  fmt.Sprintf("+%d pts", sim.EstimatedPoints),
				Inline: true,
			},
			{
				Name:   "Repetition Penalty",
				Value:  fmt.Sprintf("%.2fx", sim.RepetitionPenalty),
				Inline: true,
			},
		},
	}

	if len(sim.ConceptsDetected) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Concepts Detected",
			Value: textscan.FormatConcepts(sim.ConceptsDetected, 10),
		})
	}
	if len(sim.NewConcepts) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "New Concepts",
			Value:  textscan.FormatConcepts(sim.NewConcepts, 5),
			Inline: true,
		})
	}
	if len(sim.RepeatedConcepts) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Repeated Concepts",
			Value:  textscan.FormatConcepts(sim.RepeatedConcepts, 5),
			Inline: true,
		})
	}

	followupEmbed(s, i, embed)
}
