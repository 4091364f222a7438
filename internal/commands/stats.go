package commands

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

var topicEmoji = map[string]string{
	"AI": "🤖", "ML": "📈", "DL": "🧠", "DS": "📊",
}

func init() {
	Register(&Command{
		Sort:        200,
		Name:        "stats",
		Description: "View detailed learning statistics.",
		Category:    categoryProgress,
		SlashOptions: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to view stats for (default: yourself)",
			},
		},
		DCSlashHandler: statsHandler,
	})
}

func statsHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	targetID := userOption(s, i, "user", invokerID(i))
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, targetID) {
		respondEphemeral(s, i, "❌ This user is not being tracked.")
		return
	}
	user, found := ctx.Deps.States.GetUser(targetID)
	if !found {
		respondEphemeral(s, i, "❌ User data not found.")
		return
	}

	respondEmbed(s, i, statsEmbed(user))
}

func statsEmbed(user *state.User) *discordgo.MessageEmbed {
	level := user.Level()

	embed := &discordgo.MessageEmbed{
		Title:       "📈 Stats for " + user.Username,
		Description: fmt.Sprintf("%s **%s**", level.Emoji, level.Name),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Total Points", Value: fmt.Sprintf("**%d**", user.Points), Inline: true},
			{
				Name:   timeutil.StreakEmoji(user.Streak) + " Current Streak",
				Value:  fmt.Sprintf("**%d** days", user.Streak),
				Inline: true,
			},
			{Name: "🏆 Best Streak", Value: fmt.Sprintf("**%d** days", user.MaxStreak), Inline: true},
			{Name: "📝 Total Logs", Value: fmt.Sprintf("**%d**", user.TotalLogs), Inline: true},
			{Name: "📅 Days Active", Value: fmt.Sprintf("**%d**", user.DaysActive), Inline: true},
			{Name: "🔬 Evaluations", Value: fmt.Sprintf("**%d**", user.EvaluationCount), Inline: true},
			{Name: "📊 Level Progress", Value: levelProgress(user)},
			{Name: "📚 Topic Coverage", Value: topicCoverage(user)},
			{Name: "🧪 Top Concepts", Value: topConcepts(user.ConceptFrequency, 5)},
			{Name: "🎖️ Badges", Value: badgeList(user.Badges)},
		},
	}

	if last := user.LastEvaluation; last != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "📋 Last Evaluation",
			Value: fmt.Sprintf("Focus: %s | Depth: %v/10\nPoints: +%d",
				stringField(last.Analysis, "primary_focus", "N/A"),
				last.Analysis["depth_score"],
				last.PointsEarned),
		})
	}

	memberSince := user.CreatedAt
	if memberSince == "" {
		memberSince = "Unknown"
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Member since " + memberSince}
	return embed
}

func levelProgress(user *state.User) string {
	next := user.SkillLevel + 1
	if next >= len(config.SkillLevels) {
		return "🎉 Maximum level reached!"
	}

	currentMin := config.SkillLevels[user.SkillLevel].MinPoints
	nextLevel := config.SkillLevels[next]
	span := nextLevel.MinPoints - currentMin
	pct := float64(user.Points-currentMin) / float64(span) * 100

	return fmt.Sprintf("[%s] %.1f%%\n%d pts to %s",
		confidenceBar(pct/100), pct, nextLevel.MinPoints-user.Points, nextLevel.Name)
}

func topicCoverage(user *state.User) string {
	total := 0.0
	for _, v := range user.TopicCoverage {
		total += v
	}
	if total == 0 {
		return "No topics covered yet"
	}

	var lines []string
	for _, topic := range config.Topics {
		v := user.TopicCoverage[topic]
		lines = append(lines, fmt.Sprintf("%s **%s**: %.0f (%.0f%%)",
			topicEmoji[topic], topic, v, v/total*100))
	}
	return strings.Join(lines, "\n")
}

func topConcepts(frequency map[string]int, n int) string {
	if len(frequency) == 0 {
		return "None tracked yet"
	}

	type pair struct {
		concept string
		count   int
	}
	pairs := make([]pair, 0, len(frequency))
	for c, count := range frequency {
		pairs = append(pairs, pair{c, count})
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].count != pairs[b].count {
			return pairs[a].count > pairs[b].count
		}
		return pairs[a].concept < pairs[b].concept
	})

	if len(pairs) > n {
		pairs = pairs[:n]
	}
	parts := make([]string, len(pairs))
	for idx, p := range pairs {
		parts[idx] = fmt.Sprintf("`%s` (%d)", p.concept, p.count)
	}
	return strings.Join(parts, ", ")
}

func badgeList(badges []string) string {
	if len(badges) == 0 {
		return "No badges earned yet"
	}
	var lines []string
	for _, id := range badges {
		if badge, ok := config.Badges[id]; ok {
			lines = append(lines, badge.Emoji+" "+badge.Name)
		} else {
			lines = append(lines, "🏅 "+id)
		}
	}
	return strings.Join(lines, "\n")
}
