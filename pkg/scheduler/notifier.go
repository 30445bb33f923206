package scheduler

import (
	"context"
	stderrors "errors"

	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/pkg/errors"
)

// Notifier receives fired reminders. atPrayerTime is set only for the reminder at the prayer itself.
type Notifier interface {
	Notify(ctx context.Context, name prayer.Name, message string, atPrayerTime bool) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, name prayer.Name, message string, atPrayerTime bool) error

func (f NotifierFunc) Notify(ctx context.Context, name prayer.Name, message string, atPrayerTime bool) error {
	return f(ctx, name, message, atPrayerTime)
}

// Notifiers fans a reminder out to every sink. A failing sink does not stop the others.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, name prayer.Name, message string, atPrayerTime bool) error {
	var errs []error
	for _, notifier := range n {
		if err := notifySafely(ctx, notifier, name, message, atPrayerTime); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func notifySafely(ctx context.Context, notifier Notifier, name prayer.Name, message string, atPrayerTime bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("notifier panic: %v", r)
		}
	}()
	return notifier.Notify(ctx, name, message, atPrayerTime)
}
