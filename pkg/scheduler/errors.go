package scheduler

import (
	"fmt"

	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/pkg/errors"
)

var (
	errMissingPrayer = errors.New("missing prayer")
	errUnknownPrayer = errors.New("unknown prayer")
)

// ScheduleError reports a schedule that cannot be armed
type ScheduleError struct {
	Prayer prayer.Name
	Value  string
	Err    error
}

func (e *ScheduleError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid schedule: %s: %v", e.Prayer, e.Err)
	}
	return fmt.Sprintf("invalid schedule: %s %q: %v", e.Prayer, e.Value, e.Err)
}

func (e *ScheduleError) Unwrap() error {
	return e.Err
}

// parseSchedule validates every prayer of the schedule before anything is armed
func parseSchedule(schedule prayer.Schedule) ([]prayer.Time, error) {
	known := make(map[prayer.Name]bool)
	times := make([]prayer.Time, 0, len(schedule.Times))
	for _, name := range prayer.Names() {
		known[name] = true

		value, ok := schedule.Times[name]
		if !ok {
			return nil, &ScheduleError{Prayer: name, Err: errMissingPrayer}
		}
		hour, minute, err := prayer.ParseClock(value)
		if err != nil {
			return nil, &ScheduleError{Prayer: name, Value: value, Err: err}
		}
		times = append(times, prayer.Time{Name: name, Hour: hour, Minute: minute})
	}

	for name := range schedule.Times {
		if !known[name] {
			return nil, &ScheduleError{Prayer: name, Err: errUnknownPrayer}
		}
	}
	return times, nil
}
