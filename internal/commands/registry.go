// Package commands holds the slash command registry. Each command file
// registers itself in init(); the Discord layer looks handlers up by name
// and pushes commands to the API from All().
package commands

import (
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Command is one slash command definition plus its handler.
type Command struct {
	Sort           int
	Name           string
	Description    string
	Category       string
	AdminOnly      bool
	SlashOptions   []*discordgo.ApplicationCommandOption
	DCSlashHandler func(*SlashContext)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*Command)
)

// Register adds a command to the registry. Duplicate names are a
// programming error and panic at init time.
func Register(cmd *Command) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[cmd.Name]; exists {
		panic("duplicate command registered: " + cmd.Name)
	}
	registry[cmd.Name] = cmd
}

// Get returns the command with the given name, or nil.
func Get(name string) *Command {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// All returns every registered command ordered by Sort then name.
func All() []*Command {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]*Command, 0, len(registry))
	for _, cmd := range registry {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sort != out[j].Sort {
			return out[i].Sort < out[j].Sort
		}
		return out[i].Name < out[j].Name
	})
	return out
}
