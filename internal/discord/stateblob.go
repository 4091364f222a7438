package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

const (
	stateTitle       = "🔒 Bot State [DO NOT MODIFY]"
	backupThreadName = "🔐 State Backup [LOCKED]"
)

// Embed palette for the adapter's own messages.
const (
	colorBlue     = 0x3498db
	colorAmber    = 0xe67e22
	colorRed      = 0xe74c3c
	colorDarkGrey = 0x546e7a
)

// MessageStore persists the state blob as a pinned embed in the state
// channel, with append-only backups in a locked thread. It implements
// state.BlobStore.
type MessageStore struct {
	s         *discordgo.Session
	guildID   string
	channelID string
	clock     *timeutil.Clock

	stateMessageID string
	backupThreadID string
}

func NewMessageStore(s *discordgo.Session, guildID, channelID string, clock *timeutil.Clock) *MessageStore {
	return &MessageStore{s: s, guildID: guildID, channelID: channelID, clock: clock}
}

// FindState scans the channel pins for the bot-authored state embed.
func (st *MessageStore) FindState() (string, bool, error) {
	pins, err := st.s.ChannelMessagesPinned(st.channelID)
	if err != nil {
		return "", false, fmt.Errorf("fetch pins: %w", err)
	}

	botID := st.s.State.User.ID
	for _, pin := range pins {
		if pin.Author == nil || pin.Author.ID != botID || len(pin.Embeds) == 0 {
			continue
		}
		if pin.Embeds[0].Title == stateTitle {
			st.stateMessageID = pin.ID
			return pin.Embeds[0].Description, true, nil
		}
	}
	return "", false, nil
}

// CreateState sends and pins a fresh state message.
func (st *MessageStore) CreateState(blob string) error {
	msg, err := st.s.ChannelMessageSendEmbed(st.channelID, st.stateEmbed(blob))
	if err != nil {
		return fmt.Errorf("send state message: %w", err)
	}
	if err := st.s.ChannelMessagePin(st.channelID, msg.ID); err != nil {
		return fmt.Errorf("pin state message: %w", err)
	}
	st.stateMessageID = msg.ID
	log.Printf("[INFO] Created state message %s", msg.ID)
	return nil
}

// WriteState edits the pinned state message in place.
func (st *MessageStore) WriteState(blob string) error {
	if st.stateMessageID == "" {
		return fmt.Errorf("no state message to edit")
	}
	_, err := st.s.ChannelMessageEditEmbed(st.channelID, st.stateMessageID, st.stateEmbed(blob))
	if err != nil {
		return fmt.Errorf("edit state message: %w", err)
	}
	return nil
}

// AppendBackup posts a backup copy to the backup thread.
func (st *MessageStore) AppendBackup(blob string) error {
	if st.backupThreadID == "" {
		return fmt.Errorf("backup thread not set up")
	}
	now := st.clock.FormatDateTime(st.clock.Now())
	_, err := st.s.ChannelMessageSendEmbed(st.backupThreadID, &discordgo.MessageEmbed{
		Title:       "📦 Backup - " + now,
		Description: blob,
		Color:       colorBlue,
	})
	if err != nil {
		return fmt.Errorf("send backup: %w", err)
	}
	return nil
}

func (st *MessageStore) stateEmbed(blob string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       stateTitle,
		Description: blob,
		Color:       colorDarkGrey,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("v%d | Last updated %s", config.StateVersion, st.clock.FormatDateTime(st.clock.Now())),
		},
	}
}

// SetupBackupThread finds the backup thread among active and archived
// threads, unarchiving if needed, or creates it.
func (st *MessageStore) SetupBackupThread() error {
	if active, err := st.s.GuildThreadsActive(st.guildID); err == nil {
		for _, thread := range active.Threads {
			if thread.ParentID == st.channelID && thread.Name == backupThreadName {
				st.backupThreadID = thread.ID
				return nil
			}
		}
	}

	if archived, err := st.s.ThreadsArchived(st.channelID, nil, 50); err == nil {
		for _, thread := range archived.Threads {
			if thread.Name != backupThreadName {
				continue
			}
			st.backupThreadID = thread.ID
			unarchived := false
			if _, err := st.s.ChannelEditComplex(thread.ID, &discordgo.ChannelEdit{Archived: &unarchived}); err != nil {
				return fmt.Errorf("unarchive backup thread: %w", err)
			}
			return nil
		}
	}

	thread, err := st.s.ThreadStartComplex(st.channelID, &discordgo.ThreadStart{
		Name:                backupThreadName,
		AutoArchiveDuration: 10080,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
	if err != nil {
		return fmt.Errorf("create backup thread: %w", err)
	}
	st.backupThreadID = thread.ID

	_, err = st.s.ChannelMessageSendEmbed(thread.ID, &discordgo.MessageEmbed{
		Title: "State Backup Thread",
		Description: "This thread stores backup copies of bot state.\n" +
			"**DO NOT DELETE OR MODIFY MESSAGES IN THIS THREAD.**",
		Color: colorRed,
	})
	if err != nil {
		log.Printf("[WARN] Could not post backup thread notice: %v", err)
	}

	log.Printf("[INFO] Created backup thread %s", thread.ID)
	return nil
}
