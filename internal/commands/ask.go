package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

func init() {
	Register(&Command{
		Sort:        110,
		Name:        "ask",
		Description: "Ask your AI mentor anything about your learning journey.",
		Category:    categoryJourney,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "Your question for the AI mentor",
				Required:    true,
			},
		},
		DCSlashHandler: askHandler,
	})
}

func askHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	userID, ok := requireTracked(ctx)
	if !ok {
		return
	}
	question := stringOption(i, "question", "")

	deferResponse(s, i, false)

	response := ctx.Deps.Mentor.AnswerQuestion(context.Background(), userID, question)

	followupEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🤖 AI Learning Mentor",
		Description: response,
		Color:       colorBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Question from " + invokerName(i)},
	})
}
