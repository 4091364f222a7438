package commands

import "log"

func init() {
	Register(&Command{
		Sort:           420,
		Name:           "backup",
		Description:    "Create a backup snapshot of the bot state.",
		Category:       categoryAdmin,
		AdminOnly:      true,
		DCSlashHandler: backupHandler,
	})
}

func backupHandler(ctx *SlashContext) {
	s, i := ctx.Session, ctx.InteractionCreate

	if !requireAdmin(ctx) {
		return
	}

	if err := ctx.Deps.States.Save(true); err != nil {
		log.Printf("[ERR] Manual backup failed: %v", err)
		respondEphemeral(s, i, "❌ Failed to create backup: "+err.Error())
		return
	}
	respondEphemeral(s, i, "✅ State backup created successfully.")
}
