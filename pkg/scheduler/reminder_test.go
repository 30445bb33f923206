package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/prayerbot/pkg/prayer"
)

func TestOffsetMessages(t *testing.T) {
	tests := []struct {
		offset       Offset
		name         prayer.Name
		message      string
		atPrayerTime bool
	}{
		{offset: OffsetUpcoming, name: prayer.Maghrib, message: "Maghrib prayer in 5 minutes"},
		{offset: OffsetNow, name: prayer.Maghrib, message: "Maghrib prayer time now", atPrayerTime: true},
		{offset: OffsetPast, name: prayer.Maghrib, message: "Maghrib prayer was 10 minutes ago"},
		{offset: OffsetNow, name: prayer.Fajr, message: "Fajr prayer time now", atPrayerTime: true},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.offset.Message(tt.name))
			assert.Equal(t, tt.atPrayerTime, Reminder{Prayer: tt.name, Offset: tt.offset}.AtPrayerTime())
		})
	}
}

func TestNotifiersFanOut(t *testing.T) {
	rec := &recorder{}
	failing := NotifierFunc(func(context.Context, prayer.Name, string, bool) error {
		return errors.New("telegram down")
	})
	panicking := NotifierFunc(func(context.Context, prayer.Name, string, bool) error {
		panic("nil session")
	})

	err := Notifiers{failing, panicking, rec}.Notify(context.Background(), prayer.Isha, "Isha prayer time now", true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram down")
	assert.Contains(t, err.Error(), "nil session")
	assert.Equal(t, []notification{{prayer: prayer.Isha, message: "Isha prayer time now", atPrayerTime: true}}, rec.notifications())
}

func TestNotifiersEmpty(t *testing.T) {
	assert.NoError(t, Notifiers{}.Notify(context.Background(), prayer.Asr, "Asr prayer time now", true))
}
