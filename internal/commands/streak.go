package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

var streakMilestones = []int{7, 14, 30, 50, 100, 365}

func init() {
	Register(&Command{
		Sort:           140,
		Name:           "streak",
		Description:    "View your current streak status.",
		Category:       categoryJourney,
		DCSlashHandler: streakHandler,
	})
}

func streakHandler(ctx *SlashContext) {
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

	var status, desc string
	color := colorRed
	switch user.StreakHealth {
	case state.HealthSafe:
		status, desc, color = "🟢 Safe", "You've logged today!", colorGreen
	case state.HealthAtRisk:
		status, desc, color = "🟡 At Risk", "You haven't logged today yet!", colorOrange
	case state.HealthBroken:
		status, desc = "🔴 Broken", "Your streak was reset."
	default:
		status, desc = "⚪ Unknown", ""
	}

	lastLog := user.LastLogDate
	if lastLog == "" {
		lastLog = "Never"
	}

	embed := &discordgo.MessageEmbed{
		Title:       timeutil.StreakEmoji(user.Streak) + " Streak Status",
		Description: desc,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Current Streak", Value: fmt.Sprintf("**%d** days", user.Streak), Inline: true},
			{Name: "Best Streak", Value: fmt.Sprintf("**%d** days", user.MaxStreak), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Last Log", Value: lastLog, Inline: true},
			{
				Name:   "Time Until Deadline",
				Value:  timeutil.FormatRemaining(ctx.Deps.Clock.TimeUntilDeadline()),
				Inline: true,
			},
		},
	}

	for _, milestone := range streakMilestones {
		if user.Streak < milestone {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Next Milestone",
				Value:  fmt.Sprintf("🎯 %d days (%d to go)", milestone, milestone-user.Streak),
				Inline: true,
			})
			break
		}
	}

	respondEmbed(s, i, embed)
}
