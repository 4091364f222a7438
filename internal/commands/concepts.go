package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const conceptsTopN = 20

func init() {
	Register(&Command{
		Sort:           230,
		Name:           "concepts",
		Description:    "View all concepts you've learned, ranked by practice.",
		Category:       categoryProgress,
		DCSlashHandler: conceptsHandler,
	})
}

func conceptsHandler(ctx *SlashContext) {
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
	if len(user.ConceptFrequency) == 0 {
		respondEphemeral(s, i, "❌ No concepts learned yet. Start logging your learning!")
		return
	}

	type pair struct {
		concept string
		count   int
	}
	pairs := make([]pair, 0, len(user.ConceptFrequency))
	mentions := 0
	for c, n := range user.ConceptFrequency {
		pairs = append(pairs, pair{c, n})
		mentions += n
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].count != pairs[b].count {
			return pairs[a].count > pairs[b].count
		}
		return pairs[a].concept < pairs[b].concept
	})

	ranks := []string{"🥇", "🥈", "🥉"}
	var lines []string
	for rank, p := range pairs {
		if rank >= conceptsTopN {
			break
		}
		mark := "▫️"
		if rank < len(ranks) {
			mark = ranks[rank]
		}
		lines = append(lines, fmt.Sprintf("%s **%s** (%dx)", mark, p.concept, p.count))
	}

	embed := &discordgo.MessageEmbed{
		Title: "🧠 Concepts Learned - " + user.Username,
		Description: fmt.Sprintf("Total: %d mentions across %d unique concepts",
			mentions, len(pairs)),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📚 Most Practiced", Value: strings.Join(lines, "\n")},
		},
	}
	if len(pairs) > conceptsTopN {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing top %d of %d concepts", conceptsTopN, len(pairs)),
		}
	}

	respondEmbed(s, i, embed)
}
