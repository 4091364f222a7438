package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register(&Command{
		Sort:           430,
		Name:           "health",
		Description:    "Check bot health status.",
		Category:       categoryAdmin,
		AdminOnly:      true,
		DCSlashHandler: healthHandler,
	})
}

func healthHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}

	stateHealth := ctx.Deps.States.HealthStatus()

	initialized, _ := stateHealth["initialized"].(bool)
	color := colorRed
	okMark := "❌"
	if initialized {
		color = colorGreen
		okMark = "✅"
	}

	var quota []string
	for _, id := range ctx.Deps.Cfg.UserIDs {
		quota = append(quota, fmt.Sprintf("User %s: %d remaining", id, ctx.Deps.AI.RemainingRequests(id)))
	}

	channels := []struct{ name, id string }{
		{"State", ctx.Deps.Cfg.StateChannelID},
		{"Learning", ctx.Deps.Cfg.LearningChannelID},
		{"Dashboard", ctx.Deps.Cfg.DashboardChannelID},
		{"Threads", ctx.Deps.Cfg.DailyThreadsChannelID},
	}
	var channelLines []string
	for _, ch := range channels {
		mark := "✅"
		if _, err := s.Channel(ch.id); err != nil {
			mark = "❌"
		}
		channelLines = append(channelLines, ch.name+": "+mark)
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏥 Bot Health Status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📦 State Manager",
				Value: fmt.Sprintf(
					"Initialized: %s\nVersion: %v\nUsers: %v\nSize: %v bytes\nLast Save: %v",
					okMark,
					stateHealth["state_version"],
					stateHealth["user_count"],
					stateHealth["state_size_bytes"],
					stateHealth["last_save"],
				),
				Inline: true,
			},
			{
				Name:   "🤖 Gemini API",
				Value:  strings.Join(quota, "\n"),
				Inline: true,
			},
			{
				Name: "🔌 Connection",
				Value: fmt.Sprintf("Latency: %dms\nJobs: %s",
					s.HeartbeatLatency().Milliseconds(),
					ctx.Deps.Jobs.Status()),
				Inline: true,
			},
			{
				Name:   "📢 Channels",
				Value:  strings.Join(channelLines, "\n"),
				Inline: true,
			},
		},
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
