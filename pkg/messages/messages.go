package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/korjavin/prayerbot/pkg/scheduler"
)

// Style describes the markup of one chat platform
type Style struct {
	Bold          string
	CommandPrefix string
}

var (
	// Discord renders **bold** and uses !commands
	Discord = Style{Bold: "**", CommandPrefix: "!"}
	// Telegram renders *bold* in Markdown mode and uses /commands
	Telegram = Style{Bold: "*", CommandPrefix: "/"}
)

func (s Style) bold(text string) string {
	return s.Bold + text + s.Bold
}

// Service renders replies for the configured city
type Service struct {
	city     string
	country  string
	timezone string
	loc      *time.Location
}

// New creates a new message service
func New(city, country string, loc *time.Location) *Service {
	return &Service{
		city:     city,
		country:  country,
		timezone: loc.String(),
		loc:      loc,
	}
}

// PrayerTimes renders the schedule in canonical prayer order. next may be nil.
func (s *Service) PrayerTimes(style Style, schedule prayer.Schedule, next *scheduler.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕌 Today's Prayer Times for %s, %s:\n", s.city, s.country)
	for _, name := range prayer.Names() {
		if value, ok := schedule.Times[name]; ok {
			fmt.Fprintf(&b, "%s: %s\n", style.bold(string(name)), value)
		}
	}

	if schedule.Origin == prayer.OriginFallback {
		b.WriteString("\n⚠️ Prayer time service unavailable, showing approximate times.\n")
	}
	if next != nil {
		fmt.Fprintf(&b, "\n🔔 Next reminder: %s at %s\n", next.Message, next.FireAt.In(s.loc).Format("15:04"))
	}

	fmt.Fprintf(&b, "\n⏰ Timezone: %s", s.timezone)
	return b.String()
}

// NoPrayerTimes is sent before the first schedule has been armed
func (s *Service) NoPrayerTimes() string {
	return "⏳ Prayer times are not loaded yet. Please try again in a moment."
}

// Refreshed confirms a manual refresh
func (s *Service) Refreshed() string {
	return fmt.Sprintf("🔄 Prayer times updated for %s!", s.city)
}

// RefreshFailed reports a manual refresh that kept the previous reminders
func (s *Service) RefreshFailed() string {
	return "😢 Sorry, I couldn't update the prayer times. The previous reminders are still active."
}

// Help lists the commands
func (s *Service) Help(style Style) string {
	p := style.CommandPrefix
	return fmt.Sprintf(`%s
%sprayertimes - Show today's prayer times for %s
%srefreshprayertimes - Manually update prayer times
%sprayerhelp - Show this help message

%s
- 5 minutes before prayer
- At prayer time
- 10 minutes after prayer

The bot automatically joins voice channels with users to play reminders.`,
		style.bold("🕌 Islamic Prayer Reminder Bot Commands:"), p, s.city, p, p,
		style.bold("Reminders:"))
}
