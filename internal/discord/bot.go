// Package discord is the platform adapter: it owns the discordgo session,
// persists state through the pinned-message store, collects learning logs,
// scores inline messages, and drives the scheduled jobs and slash commands.
package discord

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/ai"
	"github.com/keshon/learning-mentor/internal/commands"
	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/mentor"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
	"github.com/keshon/learning-mentor/pkg/jobmgr"
)

// Bot is the Discord learning-mentor bot.
type Bot struct {
	dg    *discordgo.Session
	cfg   *config.Config
	clock *timeutil.Clock
	jobs  *jobmgr.Manager
	store *MessageStore

	// deps is nil until onReady finishes wiring the state-backed services.
	deps *commands.Deps

	mu                 sync.Mutex
	ready              bool
	recent             map[string][]string
	reminderSent       map[string]string
	dashboardMessageID string
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config) error {
	b := &Bot{
		cfg:          cfg,
		clock:        timeutil.New(cfg.Timezone, cfg.StreakGraceHour),
		jobs:         jobmgr.NewManager(func(s string) { log.Printf("[INFO] Job %s", s) }),
		recent:       make(map[string][]string),
		reminderSent: make(map[string]string),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.jobs.StopAll()

	b.mu.Lock()
	deps := b.deps
	b.mu.Unlock()
	if deps != nil {
		if err := deps.States.Save(true); err != nil {
			log.Printf("[ERR] Final state save failed: %v", err)
		}
	}
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent
}

// onReady wires everything that needs a live session: the pinned-message
// state store, the evaluator, the mentor, slash commands and the
// background jobs. Reconnects must not re-initialize.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	if b.ready {
		b.mu.Unlock()
		log.Println("[INFO] Bot reconnected")
		return
	}
	b.ready = true
	b.mu.Unlock()

	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	b.store = NewMessageStore(s, b.cfg.GuildID, b.cfg.StateChannelID, b.clock)
	states := state.NewManager(b.store, b.clock)

	if err := states.Initialize(b.resolveUsernames(s)); err != nil {
		log.Printf("[ERR] Failed to initialize state: %v", err)
		return
	}
	if err := b.store.SetupBackupThread(); err != nil {
		log.Printf("[WARN] Backup thread unavailable: %v", err)
	}

	client := ai.NewClient(b.cfg.GeminiAPIKey, b.cfg.GeminiModel, b.cfg.GeminiDailyLimitPerUser, b.clock)
	collector := NewCollector(s, b.clock)
	eval := evaluator.New(b.cfg, states, collector, client, b.clock)

	b.mu.Lock()
	b.deps = &commands.Deps{
		Cfg:       b.cfg,
		Clock:     b.clock,
		States:    states,
		Evaluator: eval,
		Mentor:    mentor.New(states, client),
		AI:        client,
		Jobs:      b.jobs,
		StartedAt: b.clock.Now(),
	}
	b.mu.Unlock()

	if b.cfg.InitSlashCommands {
		if err := b.registerCommands(); err != nil {
			log.Println("[ERR] Error registering slash commands:", err)
		}
	} else {
		log.Println("[INFO] Registering slash commands skipped")
	}

	b.startJobs()

	log.Printf("[INFO] ✅ Discord bot %v is running.", botInfo.Username)
}

// resolveUsernames fetches display names for the tracked users so the
// first state blob carries something better than raw IDs.
func (b *Bot) resolveUsernames(s *discordgo.Session) map[string]string {
	users := make(map[string]string, len(b.cfg.UserIDs))
	for _, id := range b.cfg.UserIDs {
		username := "User_" + id
		if u, err := s.User(id); err == nil {
			username = u.Username
		} else {
			log.Printf("[WARN] Could not fetch user %s: %v", id, err)
		}
		users[id] = username
	}
	return users
}

func (b *Bot) depsReady() *commands.Deps {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deps
}

func (b *Bot) isTracked(userID string) bool {
	return slices.Contains(b.cfg.UserIDs, userID)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	deps := b.depsReady()
	if deps == nil {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd := commands.Get(cmdName)
	if cmd == nil || cmd.DCSlashHandler == nil {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	cmd.DCSlashHandler(&commands.SlashContext{
		Session:           s,
		InteractionCreate: i,
		Deps:              deps,
	})
}

// registerCommands replaces the guild's slash commands with the current
// registry. A single-guild bot re-registers wholesale on startup.
func (b *Bot) registerCommands() error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	wanted := make(map[string]bool)
	for _, cmd := range commands.All() {
		if cmd.DCSlashHandler != nil {
			wanted[cmd.Name] = true
		}
	}

	existing, _ := b.dg.ApplicationCommands(appID, b.cfg.GuildID)
	for _, old := range existing {
		if !wanted[old.Name] {
			log.Printf("[INFO] Deleting obsolete command: %s", old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, b.cfg.GuildID, old.ID); err != nil {
				log.Printf("[ERR] Failed to delete %s: %v", old.Name, err)
			}
		}
	}

	for _, cmd := range commands.All() {
		if cmd.DCSlashHandler == nil {
			continue
		}
		_, err := b.dg.ApplicationCommandCreate(appID, b.cfg.GuildID, &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.SlashOptions,
		})
		if err != nil {
			log.Printf("[ERR] Can't create command %s: %v", cmd.Name, err)
		} else {
			log.Printf("[DONE] Command created: %s", cmd.Name)
		}
		time.Sleep(time.Second / 40)
	}
	return nil
}
