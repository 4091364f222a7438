package commands

import (
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/state"
)

func init() {
	minStreak := float64(0)
	Register(&Command{
		Sort:        460,
		Name:        "set-streak",
		Description: "Manually set a user's streak.",
		Category:    categoryAdmin,
		AdminOnly:   true,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to set streak for",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "streak",
				Description: "Streak to set",
				Required:    true,
				MinValue:    &minStreak,
			},
		},
		DCSlashHandler: setStreakHandler,
	})
}

func setStreakHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}
	targetID := userOption(s, i, "user", "")
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, targetID) {
		respondEphemeral(s, i, "❌ User is not tracked.")
		return
	}
	streak := intOption(i, "streak", 0)
	today := ctx.Deps.Clock.Today()

	err := ctx.Deps.States.UpdateUser(targetID, func(u *state.User) {
		u.Streak = streak
		if streak > u.MaxStreak {
			u.MaxStreak = streak
		}
		if streak > 0 {
			u.StreakHealth = state.HealthSafe
			u.LastLogDate = today
		} else {
			u.StreakHealth = state.HealthBroken
			u.LastLogDate = ""
		}
	})
	if err != nil {
		respondEphemeral(s, i, "❌ Error: "+err.Error())
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Set <@%s>'s streak to **%d** days", targetID, streak))
}
