package commands

func init() {
	Register(&Command{
		Sort:           470,
		Name:           "reset-day",
		Description:    "Reset today's daily flags for all users.",
		Category:       categoryAdmin,
		AdminOnly:      true,
		DCSlashHandler: resetDayHandler,
	})
}

func resetDayHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}

	if err := ctx.Deps.States.ClearDailyFlags(); err != nil {
		respondEphemeral(s, i, "❌ Error: "+err.Error())
		return
	}
	respondEphemeral(s, i, "✅ Daily flags reset successfully.")
}
