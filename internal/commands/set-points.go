package commands

import (
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/state"
)

func init() {
	minPoints := float64(0)
	Register(&Command{
		Sort:        450,
		Name:        "set-points",
		Description: "Manually set a user's points.",
		Category:    categoryAdmin,
		AdminOnly:   true,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to set points for",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "points",
				Description: "Points to set",
				Required:    true,
				MinValue:    &minPoints,
			},
		},
		DCSlashHandler: setPointsHandler,
	})
}

func setPointsHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}
	targetID := userOption(s, i, "user", "")
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, targetID) {
		respondEphemeral(s, i, "❌ User is not tracked.")
		return
	}
	points := intOption(i, "points", 0)

	err := ctx.Deps.States.UpdateUser(targetID, func(u *state.User) {
		u.Points = points
	})
	if err != nil {
		respondEphemeral(s, i, "❌ Error: "+err.Error())
		return
	}
	if _, _, err := ctx.Deps.States.UpdateSkillLevel(targetID); err != nil {
		respondEphemeral(s, i, "❌ Error: "+err.Error())
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Set <@%s>'s points to **%d**", targetID, points))
}
