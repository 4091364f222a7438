package commands

import (
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/config"
)

func init() {
	Register(&Command{
		Sort:           220,
		Name:           "badges",
		Description:    "View all available badges and your progress.",
		Category:       categoryProgress,
		DCSlashHandler: badgesHandler,
	})
}

func badgesHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	userID, ok := requireTracked(ctx)
	if !ok {
		return
	}
	user, found := ctx.Deps.States.GetUser(userID)
	if !found {
		respondEphemeral(s, i, "❌ User data not found.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏅 Badge Collection",
		Description: fmt.Sprintf("You've earned **%d** of **%d** badges!",
			len(user.Badges), len(config.Badges)),
		Color: colorPurple,
	}

	ids := make([]string, 0, len(config.Badges))
	for id := range config.Badges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		badge := config.Badges[id]

		name := "⬜ " + badge.Name
		status := "🔒 Locked"
		if user.HasBadge(id) {
			name = badge.Emoji + " " + badge.Name
			status = "✅ Earned"
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  fmt.Sprintf("%s\n*%s*", badge.Description, status),
			Inline: true,
		})
	}

	respondEmbed(s, i, embed)
}
