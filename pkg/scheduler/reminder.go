package scheduler

import (
	"fmt"
	"time"

	"github.com/korjavin/prayerbot/pkg/prayer"
)

// Offset is a reminder position in minutes relative to the prayer
type Offset int

const (
	OffsetUpcoming Offset = -5
	OffsetNow      Offset = 0
	OffsetPast     Offset = 10
)

// Offsets lists the reminders armed for every prayer
var Offsets = []Offset{OffsetUpcoming, OffsetNow, OffsetPast}

// Duration converts the offset to a time.Duration
func (o Offset) Duration() time.Duration {
	return time.Duration(o) * time.Minute
}

// Message renders the reminder text for a prayer
func (o Offset) Message(name prayer.Name) string {
	switch {
	case o < 0:
		return fmt.Sprintf("%s prayer in %d minutes", name, -o)
	case o > 0:
		return fmt.Sprintf("%s prayer was %d minutes ago", name, o)
	default:
		return fmt.Sprintf("%s prayer time now", name)
	}
}

// Reminder is one notification planned for a prayer
type Reminder struct {
	Prayer   prayer.Name
	Offset   Offset
	PrayerAt time.Time
	FireAt   time.Time
	Message  string
	// Cycle identifies the refresh that armed the reminder
	Cycle string
}

// AtPrayerTime reports whether this is the reminder fired at the prayer itself
func (r Reminder) AtPrayerTime() bool {
	return r.Offset == OffsetNow
}

type reminderKey struct {
	prayer prayer.Name
	offset Offset
}

func (r Reminder) key() reminderKey {
	return reminderKey{prayer: r.Prayer, offset: r.Offset}
}

// Plan computes the reminders still ahead of now. A prayer whose time today is already
// behind now moves to tomorrow; a reminder whose fire instant is not after now is dropped.
func Plan(times []prayer.Time, now time.Time, loc *time.Location) []Reminder {
	reminders := make([]Reminder, 0, len(times)*len(Offsets))
	for _, t := range times {
		prayerAt := t.On(now, loc)
		if prayerAt.Before(now) {
			prayerAt = prayerAt.AddDate(0, 0, 1)
		}

		for _, offset := range Offsets {
			fireAt := prayerAt.Add(offset.Duration())
			if !fireAt.After(now) {
				continue
			}
			reminders = append(reminders, Reminder{
				Prayer:   t.Name,
				Offset:   offset,
				PrayerAt: prayerAt,
				FireAt:   fireAt,
				Message:  offset.Message(t.Name),
			})
		}
	}
	return reminders
}
