package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/learning-mentor/internal/evaluator"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

// discordEpochMs is the Discord snowflake epoch (2015-01-01 UTC).
const discordEpochMs = 1420070400000

const collectLimit = 100

// Collector reads a user's messages for one calendar date using snowflake
// time windows. It implements evaluator.MessageSource.
type Collector struct {
	s     *discordgo.Session
	clock *timeutil.Clock
}

func NewCollector(s *discordgo.Session, clock *timeutil.Clock) *Collector {
	return &Collector{s: s, clock: clock}
}

// UserMessages returns the user's messages posted to channelID during the
// given date (local timezone), oldest first.
func (c *Collector) UserMessages(ctx context.Context, channelID, userID, date string) ([]evaluator.Log, error) {
	start, ok := c.clock.ParseDate(date)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	end := start.AddDate(0, 0, 1)

	msgs, err := c.s.ChannelMessages(channelID, collectLimit, "", snowflakeAt(start), "")
	if err != nil {
		return nil, fmt.Errorf("fetch messages from %s: %w", channelID, err)
	}

	var logs []evaluator.Log
	for _, m := range msgs {
		if m.Author == nil || m.Author.ID != userID || m.Author.Bot {
			continue
		}
		if !m.Timestamp.Before(end) || m.Timestamp.Before(start) {
			continue
		}
		logs = append(logs, evaluator.Log{Content: m.Content, Timestamp: m.Timestamp})
	}

	// The API hands these back newest first; callers want chronology.
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// snowflakeAt builds the smallest snowflake ID for a point in time.
func snowflakeAt(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpochMs)<<22, 10)
}
