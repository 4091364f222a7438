package commands

import (
	"fmt"
)

func init() {
	Register(&Command{
		Sort:           100,
		Name:           "ping",
		Description:    "Check that the bot is alive and see its latency.",
		Category:       categoryJourney,
		DCSlashHandler: pingHandler,
	})
}

func pingHandler(ctx *SlashContext) {
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	uptime := ctx.Deps.Clock.Now().Sub(ctx.Deps.StartedAt).Round(1e9)
	respond(ctx.Session, ctx.InteractionCreate,
		fmt.Sprintf("🏓 Pong! Latency: **%dms** | Uptime: **%s**", latency, uptime))
}
