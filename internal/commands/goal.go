package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register(&Command{
		Sort:           130,
		Name:           "goal",
		Description:    "Get an AI-generated learning trajectory and goals.",
		Category:       categoryJourney,
		DCSlashHandler: goalHandler,
	})
}

func goalHandler(ctx *SlashContext) {
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

	deferResponse(s, i, false)

	recent := sortedRecentEvaluations(ctx.Deps.States, userID, 7)
	trajectory := ctx.Deps.AI.GoalTrajectory(context.Background(), user, recent)

	level := user.Level()
	followupEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🎯 Your Learning Trajectory",
		Description: trajectory,
		Color:       colorPurple,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Current Level: %s %s", level.Emoji, level.Name),
		},
	})
}
