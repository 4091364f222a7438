package commands

import (
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/timeutil"
)

func init() {
	Register(&Command{
		Sort:           210,
		Name:           "leaderboard",
		Description:    "View the learning leaderboard.",
		Category:       categoryProgress,
		DCSlashHandler: leaderboardHandler,
	})
}

func leaderboardHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	users := ctx.Deps.States.AllUsers()
	if len(users) == 0 {
		respondEphemeral(s, i, "No users found.")
		return
	}

	sort.Slice(users, func(a, b int) bool { return users[a].Points > users[b].Points })

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Learning Leaderboard",
		Description: "Who's leading the AI/ML learning journey?",
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Keep learning! Every log counts towards mastery."},
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for rank, user := range users {
		medal := fmt.Sprintf("#%d", rank+1)
		if rank < len(medals) {
			medal = medals[rank]
		}

		level := user.Level()
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: medal + " " + user.Username,
			Value: fmt.Sprintf("💰 **%d** pts | %s **%d** days | %s %s",
				user.Points,
				timeutil.StreakEmoji(user.Streak), user.Streak,
				level.Emoji, level.Name),
		})
	}

	respondEmbed(s, i, embed)
}
