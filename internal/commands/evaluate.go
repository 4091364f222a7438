package commands

import (
	"context"
	"log"
	"slices"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register(&Command{
		Sort:        400,
		Name:        "evaluate-now",
		Description: "Force-run the daily evaluation for a user.",
		Category:    categoryAdmin,
		AdminOnly:   true,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to evaluate",
				Required:    true,
			},
		},
		DCSlashHandler: evaluateNowHandler,
	})
}

func evaluateNowHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}
	targetID := userOption(s, i, "user", "")
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, targetID) {
		respondEphemeral(s, i, "❌ User is not tracked.")
		return
	}

	deferResponse(s, i, false)

	result, err := ctx.Deps.Evaluator.EvaluateUser(context.Background(), targetID, true)
	if err != nil {
		log.Printf("[ERR] Forced evaluation failed for %s: %v", targetID, err)
		followup(s, i, "❌ Evaluation failed: "+err.Error())
		return
	}
	if result == nil {
		followup(s, i, "❌ No logs found to evaluate.")
		return
	}

	name := targetID
	if user, ok := ctx.Deps.States.GetUser(targetID); ok {
		name = user.Username
	}
	followupEmbed(s, i, EvaluationEmbed(result, name))
}
