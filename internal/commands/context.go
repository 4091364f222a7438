package commands

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/ai"
	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/mentor"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
	"github.com/keshon/learning-mentor/pkg/jobmgr"
)

// Deps bundles the services every command may need. The Discord layer
// builds one instance after state initialization and shares it.
type Deps struct {
	Cfg       *config.Config
	Clock     *timeutil.Clock
	States    *state.Manager
	Evaluator *evaluator.Evaluator
	Mentor    *mentor.Mentor
	AI        *ai.Client
	Jobs      *jobmgr.Manager
	StartedAt time.Time
}

// SlashContext is handed to every slash command handler.
type SlashContext struct {
	Session           *discordgo.Session
	InteractionCreate *discordgo.InteractionCreate
	Deps              *Deps
}
