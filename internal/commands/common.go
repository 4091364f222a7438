package commands

import (
	"log"
	"slices"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/state"
)

// Embed palette shared across commands.
const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorGold   = 0xf1c40f
	colorOrange = 0xe67e22
	colorRed    = 0xe74c3c
	colorPurple = 0x9b59b6
)

// Command categories.
const (
	categoryJourney  = "📖 Learning Journey"
	categoryProgress = "📊 Progress & Stats"
	categoryAdmin    = "🛠️ Administration"
)

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// deferResponse acknowledges an interaction so a slow handler can follow
// up within fifteen minutes instead of three seconds.
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		log.Println("[ERR] Failed to send followup:", err)
	}
}

func followupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Println("[ERR] Failed to send followup embed:", err)
	}
}

// isAdmin checks the invoking member's computed permissions.
func isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// requireAdmin responds ephemerally and returns false for non-admins.
func requireAdmin(ctx *SlashContext) bool {
	if !isAdmin(ctx.InteractionCreate) {
		respondEphemeral(ctx.Session, ctx.InteractionCreate, "❌ You don't have permission to use this command.")
		return false
	}
	return true
}

// invokerID returns the calling user's ID for guild or DM interactions.
func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func invokerName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "Unknown"
}

// requireTracked resolves the caller and verifies they are a tracked
// user, replying ephemerally otherwise.
func requireTracked(ctx *SlashContext) (string, bool) {
	id := invokerID(ctx.InteractionCreate)
	if !slices.Contains(ctx.Deps.Cfg.UserIDs, id) {
		respondEphemeral(ctx.Session, ctx.InteractionCreate, "❌ You're not a tracked user.")
		return "", false
	}
	return id, true
}

// sortedRecentEvaluations returns the user's cached evaluations for the
// last n days, oldest first.
func sortedRecentEvaluations(states *state.Manager, userID string, days int) []*state.Evaluation {
	byDate := states.CachedEvaluations(userID, days)

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]*state.Evaluation, 0, len(dates))
	for _, date := range dates {
		out = append(out, byDate[date])
	}
	return out
}

func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		out[o.Name] = o
	}
	return out
}

func stringOption(i *discordgo.InteractionCreate, name, def string) string {
	if o, ok := options(i)[name]; ok {
		return o.StringValue()
	}
	return def
}

func intOption(i *discordgo.InteractionCreate, name string, def int) int {
	if o, ok := options(i)[name]; ok {
		return int(o.IntValue())
	}
	return def
}

// userOption returns the selected user's ID, or def when absent.
func userOption(s *discordgo.Session, i *discordgo.InteractionCreate, name, def string) string {
	if o, ok := options(i)[name]; ok {
		if u := o.UserValue(s); u != nil {
			return u.ID
		}
	}
	return def
}
