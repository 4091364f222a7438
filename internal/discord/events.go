package discord

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/commands"
	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/textscan"
)

// questionKeywords mark a daily-thread message as a mentor question even
// without a question mark.
var questionKeywords = []string{
	"what should i", "how can i", "what is my", "should i",
	"recommend", "suggest", "help me", "what's next",
	"am i doing", "my progress", "my status", "how am i",
}

const recentCacheSize = 10

var streakReactionDays = []int{7, 14, 30, 50, 100}

// onMessageCreate routes tracked users' messages: mentor questions in
// daily threads get an AI reply, everything else in a learning channel is
// scored inline.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	deps := b.depsReady()
	if deps == nil {
		return
	}
	if m.Author == nil || m.Author.Bot || !b.isTracked(m.Author.ID) {
		return
	}

	channel, err := s.State.Channel(m.ChannelID)
	if err != nil {
		channel, err = s.Channel(m.ChannelID)
		if err != nil {
			log.Printf("[WARN] Could not resolve channel %s: %v", m.ChannelID, err)
			return
		}
	}

	inDailyThread := channel.IsThread() && channel.ParentID == b.cfg.DailyThreadsChannelID

	if inDailyThread && b.handleMentorQuestion(s, m, deps) {
		return
	}

	valid := m.ChannelID == b.cfg.LearningChannelID ||
		m.ChannelID == deps.States.DailyThread(m.Author.ID) ||
		inDailyThread
	if !valid {
		return
	}

	b.processLearningMessage(s, m, deps)
}

// handleMentorQuestion answers questions addressed to the mentor inside a
// daily thread. Returns true when the message was consumed as a question.
func (b *Bot) handleMentorQuestion(s *discordgo.Session, m *discordgo.MessageCreate, deps *commands.Deps) bool {
	content := strings.ToLower(strings.TrimSpace(m.Content))
	if len(content) <= 10 {
		return false
	}

	isQuestion := strings.Contains(content, "?")
	if !isQuestion {
		for _, kw := range questionKeywords {
			if strings.Contains(content, kw) {
				isQuestion = true
				break
			}
		}
	}
	if !isQuestion {
		return false
	}

	_ = s.ChannelTyping(m.ChannelID)
	response := deps.Mentor.AnswerQuestion(context.Background(), m.Author.ID, m.Content)

	_, err := s.ChannelMessageSendReply(m.ChannelID, "🤖 **AI Mentor:**\n\n"+response, m.Reference())
	if err != nil {
		log.Printf("[ERR] Could not reply to mentor question: %v", err)
		return false
	}
	return true
}

// processLearningMessage runs the inline scoring path for one message:
// qualify, award points and streak, update concepts and level, react.
func (b *Bot) processLearningMessage(s *discordgo.Session, m *discordgo.MessageCreate, deps *commands.Deps) {
	userID := m.Author.ID

	b.mu.Lock()
	recent := b.recent[userID]
	b.mu.Unlock()

	report := textscan.Analyze(m.Content, recent, b.cfg.MinMessageLength)
	if !report.Qualifies || report.IsDuplicate {
		log.Printf("[INFO] Message from %s did not qualify: %s", userID, report.Reason)
		return
	}

	b.mu.Lock()
	recent = append(recent, textscan.CleanContent(m.Content))
	if len(recent) > recentCacheSize {
		recent = recent[len(recent)-recentCacheSize:]
	}
	b.recent[userID] = recent
	b.mu.Unlock()

	points := b.cfg.BasePoints
	if report.DepthScore >= 3 {
		points += b.cfg.DepthBonus
	}

	newStreak, _, err := deps.States.UpdateStreak(userID, b.clock.EffectiveDate())
	if err != nil {
		log.Printf("[ERR] Streak update failed for %s: %v", userID, err)
		return
	}
	if _, err := deps.States.AddPoints(userID, points); err != nil {
		log.Printf("[ERR] Points update failed for %s: %v", userID, err)
		return
	}
	totalLogs, err := deps.States.IncrementTotalLogs(userID)
	if err != nil {
		log.Printf("[ERR] Log count update failed for %s: %v", userID, err)
	}
	if len(report.Concepts) > 0 {
		if _, err := deps.States.UpdateConceptFrequency(userID, report.Concepts); err != nil {
			log.Printf("[ERR] Concept update failed for %s: %v", userID, err)
		}
	}
	newLevel, levelChanged, err := deps.States.UpdateSkillLevel(userID)
	if err != nil {
		log.Printf("[ERR] Skill level update failed for %s: %v", userID, err)
	}

	b.react(s, m, newStreak, totalLogs)

	if levelChanged {
		level := config.SkillLevels[newLevel]
		_, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
			"🎊 **Level Up!** %s is now **%s %s**!",
			m.Author.Mention(), level.Emoji, level.Name,
		))
		if err != nil {
			log.Printf("[WARN] Could not announce level up: %v", err)
		}
	}

	log.Printf("[INFO] Processed log from %s: +%d pts, streak=%d, depth=%d",
		userID, points, newStreak, report.DepthScore)
}

func (b *Bot) react(s *discordgo.Session, m *discordgo.MessageCreate, streak, totalLogs int) {
	add := func(emoji string) {
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
			log.Printf("[WARN] Cannot add reaction: %v", err)
		}
	}

	add("✅")
	if totalLogs == 1 {
		add("🎉")
	} else if totalLogs > 0 && totalLogs%50 == 0 {
		add("💯")
	}
	if slices.Contains(streakReactionDays, streak) {
		add("🔥")
	}
}
