package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	cmd := Get("ping")
	require.NotNil(t, cmd)
	assert.Equal(t, "ping", cmd.Name)
	assert.NotNil(t, cmd.DCSlashHandler)

	assert.Nil(t, Get("no-such-command"))
}

func TestAllSortedAndComplete(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		ok := prev.Sort < cur.Sort || (prev.Sort == cur.Sort && prev.Name < cur.Name)
		assert.True(t, ok, "order broken between %s and %s", prev.Name, cur.Name)
	}

	names := make(map[string]bool, len(all))
	for _, cmd := range all {
		names[cmd.Name] = true
		assert.NotEmpty(t, cmd.Description, "%s has no description", cmd.Name)
		assert.NotEmpty(t, cmd.Category, "%s has no category", cmd.Name)
	}
	for _, want := range []string{
		"ping", "ask", "mystatus", "goal", "streak",
		"stats", "leaderboard", "badges", "concepts", "weekly",
		"evaluate-now", "simulate", "backup", "health", "cleanup",
		"set-points", "set-streak", "reset-day",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestAdminCommandsFlagged(t *testing.T) {
	for _, name := range []string{"evaluate-now", "simulate", "backup", "health", "cleanup", "set-points", "set-streak", "reset-day"} {
		cmd := Get(name)
		require.NotNil(t, cmd, name)
		assert.True(t, cmd.AdminOnly, "%s should be admin-only", name)
	}
	for _, name := range []string{"ping", "ask", "stats", "leaderboard"} {
		cmd := Get(name)
		require.NotNil(t, cmd, name)
		assert.False(t, cmd.AdminOnly, "%s should not be admin-only", name)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		Register(&Command{Name: "ping"})
	})
}
