// Package scheduler arms the daily prayer reminders.
// Every refresh replaces the whole set of timers, three per prayer: five minutes before,
// at prayer time and ten minutes after. A cron entry refreshes the schedule once a day.
package scheduler
