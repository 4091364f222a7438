// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/discord"
)

func main() {
	log.Println("[INFO] Starting learning-mentor bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()
	if errs := cfg.Validate(); len(errs) > 0 {
		log.Println("[ERR] Configuration errors:")
		for _, err := range errs {
			log.Printf("[ERR]   - %v", err)
		}
		os.Exit(1)
	}

	log.Printf("[INFO] Guild ID: %s", cfg.GuildID)
	log.Printf("[INFO] Tracking %d user(s)", len(cfg.UserIDs))
	log.Printf("[INFO] Timezone: %s", cfg.Timezone)

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	// Wait for the bot goroutine so the final state save completes.
	<-errCh

	log.Println("[INFO] Discord bot exited cleanly")
}
