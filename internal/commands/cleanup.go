package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func init() {
	minDays, maxDays := float64(1), float64(30)
	Register(&Command{
		Sort:        440,
		Name:        "cleanup",
		Description: "Clean up old daily flags from the state blob.",
		Category:    categoryAdmin,
		AdminOnly:   true,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "days",
				Description: "Days of flags to keep (default: 7)",
				MinValue:    &minDays,
				MaxValue:    maxDays,
			},
		},
		DCSlashHandler: cleanupHandler,
	})
}

func cleanupHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}
	days := intOption(i, "days", 7)

	if err := ctx.Deps.States.CleanupOldFlags(days); err != nil {
		respondEphemeral(s, i, "❌ Error: "+err.Error())
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Cleaned up flags older than %d days.", days))
}
