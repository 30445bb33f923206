package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/messages"
	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/korjavin/prayerbot/pkg/scheduler"
)

type failingSource struct{}

func (failingSource) Fetch(context.Context, time.Time) (prayer.Schedule, error) {
	return prayer.Schedule{}, &prayer.FetchError{Op: "request", Err: errors.New("offline")}
}

func newCommands(t *testing.T) *commands {
	t.Helper()

	sched := scheduler.New(failingSource{}, scheduler.Notifiers{}, scheduler.Config{Location: time.UTC})
	t.Cleanup(sched.Stop)

	return &commands{
		ctx:       context.Background(),
		scheduler: sched,
		messages:  messages.New("Jeddah", "Saudi Arabia", time.UTC),
		logger:    logger.New("commands"),
	}
}

func TestPrayerTimesBeforeFirstRefresh(t *testing.T) {
	cmds := newCommands(t)

	assert.Equal(t, cmds.messages.NoPrayerTimes(), cmds.reply(cmdPrayerTimes, messages.Discord))
}

func TestRefreshThenPrayerTimes(t *testing.T) {
	cmds := newCommands(t)

	assert.Equal(t, "🔄 Prayer times updated for Jeddah!", cmds.reply(cmdRefresh, messages.Discord))

	reply := cmds.reply(cmdPrayerTimes, messages.Discord)
	require.Contains(t, reply, "🕌 Today's Prayer Times for Jeddah, Saudi Arabia:")
	assert.Contains(t, reply, "approximate times")
	assert.Contains(t, reply, "🔔 Next reminder:")
}

func TestHelpCommand(t *testing.T) {
	cmds := newCommands(t)

	assert.Contains(t, cmds.reply(cmdHelp, messages.Telegram), "/refreshprayertimes")
}
