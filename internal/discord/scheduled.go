package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/timeutil"
)

const (
	flagKeepDays = 7
	autoEvalHour = 23
)

// startJobs launches the recurring background loops. Each one fires
// immediately so a fresh start catches up without waiting a full tick.
func (b *Bot) startJobs() {
	refresh := time.Duration(b.cfg.DashboardRefreshSeconds) * time.Second

	jobs := []struct {
		name     string
		interval time.Duration
		runner   func(ctx context.Context) error
	}{
		{"daily-threads", time.Hour, b.ensureDailyThreads},
		{"dashboard", refresh, b.refreshDashboard},
		{"streak-sweep", time.Hour, b.streakSweep},
		{"reminders", 2 * time.Hour, b.sendReminders},
		{"auto-eval", time.Hour, b.autoEvaluate},
	}
	for _, j := range jobs {
		if err := b.jobs.Every(j.name, j.interval, j.runner); err != nil {
			log.Printf("[ERR] Could not start job %s: %v", j.name, err)
		}
	}
}

// ensureDailyThreads guarantees each tracked user has a thread for today.
func (b *Bot) ensureDailyThreads(ctx context.Context) error {
	deps := b.depsReady()
	if deps == nil {
		return nil
	}

	threadName := b.clock.DailyThreadName()

	for _, user := range deps.States.AllUsers() {
		if existing := user.DailyThreadID; existing != "" {
			if ch, err := b.dg.Channel(existing); err == nil && strings.Contains(ch.Name, threadName) {
				continue
			}
		}

		thread, err := b.dg.ThreadStartComplex(b.cfg.DailyThreadsChannelID, &discordgo.ThreadStart{
			Name:                threadName + " - " + user.Username,
			AutoArchiveDuration: 1440,
			Type:                discordgo.ChannelTypeGuildPublicThread,
		})
		if err != nil {
			log.Printf("[ERR] Could not create daily thread for %s: %v", user.ID, err)
			continue
		}
		if err := deps.States.SetDailyThread(user.ID, thread.ID); err != nil {
			log.Printf("[ERR] Could not store daily thread for %s: %v", user.ID, err)
		}

		b.sendThreadWelcome(thread.ID, user.ID, user.Streak)
		log.Printf("[INFO] Created daily thread %s for user %s", thread.ID, user.ID)
	}
	return nil
}

func (b *Bot) sendThreadWelcome(threadID, userID string, streak int) {
	embed := &discordgo.MessageEmbed{
		Title: "📚 Daily Learning Log",
		Description: fmt.Sprintf(
			"Good morning, <@%s>! 🌅\n\n"+
				"**Current Streak:** %s %d days\n"+
				"**Deadline:** %s\n\n"+
				"Log your learning journey here today! Each quality entry earns points.",
			userID, timeutil.StreakEmoji(streak), streak,
			timeutil.FormatRemaining(b.clock.TimeUntilDeadline()),
		),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{{
			Name: "📝 Tips for Quality Logs",
			Value: "• Explain what you learned in detail\n" +
				"• Include technical concepts and terms\n" +
				"• Reflect on challenges and insights\n" +
				fmt.Sprintf("• Minimum %d characters per entry", b.cfg.MinMessageLength),
		}},
	}
	if _, err := b.dg.ChannelMessageSendEmbed(threadID, embed); err != nil {
		log.Printf("[WARN] Could not send thread welcome: %v", err)
	}
}

// streakSweep downgrades stale streaks and prunes old daily flags.
func (b *Bot) streakSweep(ctx context.Context) error {
	deps := b.depsReady()
	if deps == nil {
		return nil
	}
	if err := deps.States.ResetDailyState(); err != nil {
		return fmt.Errorf("reset daily state: %w", err)
	}
	return deps.States.CleanupOldFlags(flagKeepDays)
}

// sendReminders nudges users whose streak is about to break, at most once
// per day each.
func (b *Bot) sendReminders(ctx context.Context) error {
	deps := b.depsReady()
	if deps == nil {
		return nil
	}

	today := b.clock.Today()

	for _, user := range deps.States.AllUsers() {
		due, reason := b.clock.ShouldSendReminder(user.LastLogDate)
		if !due {
			continue
		}

		b.mu.Lock()
		sent := b.reminderSent[user.ID] == today
		if !sent {
			b.reminderSent[user.ID] = today
		}
		b.mu.Unlock()
		if sent {
			continue
		}

		b.sendStreakReminder(user.ID, user.Streak, user.DailyThreadID, reason)
	}
	return nil
}

func (b *Bot) sendStreakReminder(userID string, streak int, threadID, reason string) {
	embed := &discordgo.MessageEmbed{
		Title:       "⏰ Streak Reminder",
		Description: reason,
		Color:       colorAmber,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Current Streak",
				Value:  fmt.Sprintf("%s %d days", timeutil.StreakEmoji(streak), streak),
				Inline: true,
			},
			{
				Name:   "Time Remaining",
				Value:  timeutil.FormatRemaining(b.clock.TimeUntilDeadline()),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Log something to keep your streak alive!"},
	}

	if threadID != "" {
		_, err := b.dg.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{
			Content: fmt.Sprintf("<@%s>", userID),
			Embed:   embed,
		})
		if err == nil {
			return
		}
		log.Printf("[WARN] Could not remind in thread %s: %v", threadID, err)
	}

	dm, err := b.dg.UserChannelCreate(userID)
	if err != nil {
		log.Printf("[WARN] Cannot open DM with %s: %v", userID, err)
		return
	}
	if _, err := b.dg.ChannelMessageSendEmbed(dm.ID, embed); err != nil {
		log.Printf("[WARN] Cannot send DM reminder to %s: %v", userID, err)
	}
}

// autoEvaluate runs the daily evaluation for every user during the
// evening window. The evaluated flag makes repeat ticks no-ops.
func (b *Bot) autoEvaluate(ctx context.Context) error {
	deps := b.depsReady()
	if deps == nil {
		return nil
	}
	if b.clock.Now().Hour() != autoEvalHour {
		return nil
	}

	for _, id := range b.cfg.UserIDs {
		result, err := deps.Evaluator.EvaluateUser(ctx, id, false)
		if err != nil {
			log.Printf("[ERR] Error evaluating user %s: %v", id, err)
			continue
		}
		if result != nil {
			b.postEvaluation(id, result)
		}
	}
	return nil
}
