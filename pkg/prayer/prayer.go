// Package prayer resolves the five daily prayer times for a city, either from the
// Aladhan API, a same-day cache or a built-in seasonal table.
package prayer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Name identifies one of the five daily prayers
type Name string

const (
	Fajr    Name = "Fajr"
	Dhuhr   Name = "Dhuhr"
	Asr     Name = "Asr"
	Maghrib Name = "Maghrib"
	Isha    Name = "Isha"
)

var names = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Names returns the prayers in canonical daily order
func Names() []Name {
	return append([]Name(nil), names...)
}

// Origin tells where a schedule came from
type Origin string

const (
	OriginAPI      Origin = "api"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
)

// Time is a prayer at a local wall-clock time of day
type Time struct {
	Name   Name
	Hour   int
	Minute int
}

// On returns the instant of the prayer on the calendar day of date in loc
func (t Time) On(date time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Schedule maps each prayer to its "HH:MM" time for one calendar day
type Schedule struct {
	Date   time.Time       `json:"date"`
	Times  map[Name]string `json:"times"`
	Origin Origin          `json:"origin"`
}

// Source fetches the schedule for a calendar date
type Source interface {
	Fetch(ctx context.Context, date time.Time) (Schedule, error)
}

// ParseClock parses an "HH:MM" time of day
func ParseClock(value string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, errors.Errorf("invalid time of day %q", value)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// cleanTiming drops the zone suffix the API sometimes appends, e.g. "05:17 (AST)"
func cleanTiming(value string) string {
	if i := strings.Index(value, " "); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}
