package main

import (
	"context"

	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/messages"
	"github.com/korjavin/prayerbot/pkg/scheduler"
)

// Command names shared by every chat platform
const (
	cmdPrayerTimes = "prayertimes"
	cmdRefresh     = "refreshprayertimes"
	cmdHelp        = "prayerhelp"
)

var commandNames = []string{cmdPrayerTimes, cmdRefresh, cmdHelp}

// commands renders the reply for a chat command
type commands struct {
	ctx       context.Context
	scheduler *scheduler.Service
	messages  *messages.Service
	logger    *logger.Logger
}

func (c *commands) reply(command string, style messages.Style) string {
	switch command {
	case cmdPrayerTimes:
		schedule, ok := c.scheduler.Current()
		if !ok {
			return c.messages.NoPrayerTimes()
		}
		var next *scheduler.Reminder
		if pending := c.scheduler.Pending(); len(pending) > 0 {
			next = &pending[0]
		}
		return c.messages.PrayerTimes(style, schedule, next)

	case cmdRefresh:
		if err := c.scheduler.TriggerDailyRefresh(c.ctx); err != nil {
			c.logger.Error("Manual refresh failed: %v", err)
			return c.messages.RefreshFailed()
		}
		return c.messages.Refreshed()

	default:
		return c.messages.Help(style)
	}
}
