package discord

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/commands"
	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/mentor"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

const (
	dashboardTitle  = "📊 AI/ML Learning Dashboard"
	maxBadgeDisplay = 5
)

var healthEmoji = map[string]string{
	state.HealthSafe:   "🟢",
	state.HealthAtRisk: "🟡",
	state.HealthBroken: "🔴",
}

// refreshDashboard edits the pinned dashboard embed in place, adopting an
// existing pin or creating one on first run.
func (b *Bot) refreshDashboard(ctx context.Context) error {
	deps := b.depsReady()
	if deps == nil {
		return nil
	}

	embed := b.dashboardEmbed(deps.States.AllUsers())

	b.mu.Lock()
	msgID := b.dashboardMessageID
	b.mu.Unlock()

	if msgID != "" {
		if _, err := b.dg.ChannelMessageEditEmbed(b.cfg.DashboardChannelID, msgID, embed); err == nil {
			return nil
		}
		b.mu.Lock()
		b.dashboardMessageID = ""
		b.mu.Unlock()
	}

	// Adopt a previously pinned dashboard so restarts don't stack embeds.
	if pins, err := b.dg.ChannelMessagesPinned(b.cfg.DashboardChannelID); err == nil {
		botID := b.dg.State.User.ID
		for _, pin := range pins {
			if pin.Author == nil || pin.Author.ID != botID || len(pin.Embeds) == 0 {
				continue
			}
			if strings.Contains(pin.Embeds[0].Title, "Learning Dashboard") {
				if _, err := b.dg.ChannelMessageEditEmbed(b.cfg.DashboardChannelID, pin.ID, embed); err != nil {
					return fmt.Errorf("edit pinned dashboard: %w", err)
				}
				b.mu.Lock()
				b.dashboardMessageID = pin.ID
				b.mu.Unlock()
				return nil
			}
		}
	}

	msg, err := b.dg.ChannelMessageSendEmbed(b.cfg.DashboardChannelID, embed)
	if err != nil {
		return fmt.Errorf("send dashboard: %w", err)
	}
	if err := b.dg.ChannelMessagePin(b.cfg.DashboardChannelID, msg.ID); err != nil {
		log.Printf("[WARN] Could not pin dashboard: %v", err)
	}
	b.mu.Lock()
	b.dashboardMessageID = msg.ID
	b.mu.Unlock()
	log.Printf("[INFO] Created dashboard message %s", msg.ID)
	return nil
}

func (b *Bot) dashboardEmbed(users []*state.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       dashboardTitle,
		Description: "🎯 **Goal:** AI/ML Engineer & Researcher\n*Track your journey to mastery*",
		Color:       colorBlue,
	}

	if len(users) == 0 {
		embed.Description = "No user data yet. Start logging your learning!"
		return embed
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Points > users[j].Points })

	for _, user := range users {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "👤 " + b.displayName(user),
			Value: userSection(user),
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "💡 Quick Commands",
		Value: "`/stats` • `/ask` • `/mystatus` • `/streak` • `/leaderboard`",
	})
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Auto-refreshes every %d min | Last update %s",
			b.cfg.DashboardRefreshSeconds/60, b.clock.FormatDateTime(b.clock.Now())),
	}
	return embed
}

func userSection(user *state.User) string {
	level := user.Level()
	progress := mentor.ProgressSummary(user)

	pathway := "**" + progress.Current.Name + "**"
	if progress.Next != nil {
		needed := progress.Next.MinPoints - user.Points
		pathway += fmt.Sprintf("\n[%s] %.0f%%\n%d pts → %s",
			progressBar(progress.Percentage), progress.Percentage, needed, progress.Next.Name)
	} else {
		pathway += "\n✨ Maximum level achieved!"
	}

	var coverage []string
	for _, topic := range config.Topics {
		if v := user.TopicCoverage[topic]; v > 0 {
			coverage = append(coverage, fmt.Sprintf("%s:%d", topic, int(v)))
		}
	}
	coverageStr := "None yet"
	if len(coverage) > 0 {
		coverageStr = strings.Join(coverage, " ")
	}

	var badges []string
	for i, id := range user.Badges {
		if i >= maxBadgeDisplay {
			break
		}
		if badge, ok := config.Badges[id]; ok {
			badges = append(badges, badge.Emoji)
		}
	}
	badgeStr := "None"
	if len(badges) > 0 {
		badgeStr = strings.Join(badges, " ")
	}

	return fmt.Sprintf(
		"🎖️ %s **%s** | %s Streak: %s **%d** days (best: %d)\n"+
			"💰 **%d** pts | 📝 **%d** logs | 📅 **%d** days active\n\n"+
			"**Career Path Progress:**\n%s\n\n"+
			"📚 Topics: %s\n"+
			"🏆 Badges: %s",
		level.Emoji, level.Name,
		healthEmoji[user.StreakHealth], timeutil.StreakEmoji(user.Streak), user.Streak, user.MaxStreak,
		user.Points, user.TotalLogs, user.DaysActive,
		pathway, coverageStr, badgeStr,
	)
}

func progressBar(pct float64) string {
	filled := int(pct / 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func (b *Bot) displayName(user *state.User) string {
	if u, err := b.dg.User(user.ID); err == nil && u.Username != "" {
		return u.Username
	}
	return user.Username
}

// postEvaluation announces a finished daily evaluation in the dashboard
// channel.
func (b *Bot) postEvaluation(userID string, result *evaluator.Result) {
	deps := b.depsReady()
	if deps == nil {
		return
	}

	name := userID
	if user, ok := deps.States.GetUser(userID); ok {
		name = b.displayName(user)
	}

	_, err := b.dg.ChannelMessageSendComplex(b.cfg.DashboardChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("📋 Daily evaluation for <@%s>", userID),
		Embed:   commands.EvaluationEmbed(result, name),
	})
	if err != nil {
		log.Printf("[ERR] Error posting evaluation: %v", err)
	}
}
