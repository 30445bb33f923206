package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/korjavin/prayerbot/pkg/prayer"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec refreshes the schedule at 00:01 local time
const DefaultRefreshSpec = "1 0 * * *"

// State is the lifecycle position of the scheduler
type State string

const (
	StateIdle       State = "idle"
	StateScheduling State = "scheduling"
	StateArmed      State = "armed"
	StateRefreshing State = "refreshing"
)

// Config tunes a Service. Zero values select the real clock, UTC and DefaultRefreshSpec.
type Config struct {
	Location    *time.Location
	RefreshSpec string
	Clock       Clock
}

type armedReminder struct {
	Reminder
	timer Timer
}

// Service keeps one armed timer per upcoming reminder of the current schedule
type Service struct {
	source      prayer.Source
	notifier    Notifier
	loc         *time.Location
	clock       Clock
	refreshSpec string
	logger      *logger.Logger

	// refreshMu serializes refreshes; mu guards the fields below it
	refreshMu sync.Mutex

	mu      sync.Mutex
	state   State
	armed   map[reminderKey]*armedReminder
	current *prayer.Schedule

	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	dispatch func(func())
}

// New creates a new scheduler service
func New(source prayer.Source, notifier Notifier, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RefreshSpec == "" {
		cfg.RefreshSpec = DefaultRefreshSpec
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		source:      source,
		notifier:    notifier,
		loc:         cfg.Location,
		clock:       cfg.Clock,
		refreshSpec: cfg.RefreshSpec,
		logger:      logger.New("scheduler"),
		state:       StateIdle,
		armed:       make(map[reminderKey]*armedReminder),
		ctx:         ctx,
		cancel:      cancel,
		dispatch:    func(f func()) { go f() },
	}
}

// Start arms today's reminders and registers the daily refresh
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting prayer scheduler")

	s.cron = cron.New(cron.WithLocation(s.loc))
	_, err := s.cron.AddFunc(s.refreshSpec, func() {
		s.logger.Info("Updating prayer times for new day")
		if err := s.TriggerDailyRefresh(s.ctx); err != nil {
			s.logger.Error("Daily refresh failed: %v", err)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid refresh spec %q", s.refreshSpec)
	}

	if err := s.TriggerDailyRefresh(ctx); err != nil {
		s.logger.Error("Startup refresh failed: %v", err)
	}

	s.cron.Start()
	s.logger.Info("Daily prayer time updates scheduled with %q", s.refreshSpec)
	return nil
}

// Stop stops the daily refresh and cancels every armed reminder
func (s *Service) Stop() {
	s.logger.Info("Stopping prayer scheduler")
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	s.cancelLocked()
	s.state = StateIdle
	s.mu.Unlock()

	s.cancel()
}

// TriggerDailyRefresh fetches today's schedule, falling back to the seasonal table, and re-arms
func (s *Service) TriggerDailyRefresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	today := s.clock.Now().In(s.loc)
	schedule, err := s.source.Fetch(ctx, today)
	if err != nil {
		s.logger.Warn("Prayer time fetch failed, using fallback times: %v", err)
		schedule = prayer.Fallback(today)
	}

	return s.refresh(schedule, s.clock.Now())
}

// Refresh replaces every armed reminder with the reminders of schedule still ahead of now.
// An invalid schedule returns a *ScheduleError and keeps the current reminders armed.
func (s *Service) Refresh(schedule prayer.Schedule, now time.Time) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	return s.refresh(schedule, now)
}

func (s *Service) refresh(schedule prayer.Schedule, now time.Time) error {
	times, err := parseSchedule(schedule)
	if err != nil {
		s.logger.Error("Keeping current reminders: %v", err)
		return err
	}

	reminders := Plan(times, now, s.loc)
	cycle := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		s.state = StateRefreshing
	}
	s.cancelLocked()

	s.state = StateScheduling
	for _, r := range reminders {
		r.Cycle = cycle
		s.armLocked(r, now)
	}

	snapshot := copySchedule(schedule)
	s.current = &snapshot
	s.state = StateArmed

	s.logger.Info("Armed %d reminders from %s schedule (cycle %s)", len(reminders), schedule.Origin, cycle)
	for _, r := range reminders {
		s.logger.Debug("%s reminder: %s at %s (in %v, cycle %s)", r.Prayer, r.Message,
			r.FireAt.In(s.loc).Format(time.RFC3339), r.FireAt.Sub(now).Round(time.Minute), cycle)
	}
	return nil
}

func (s *Service) armLocked(r Reminder, now time.Time) {
	a := &armedReminder{Reminder: r}
	a.timer = s.clock.AfterFunc(r.FireAt.Sub(now), func() { s.fire(a) })
	s.armed[r.key()] = a
}

func (s *Service) cancelLocked() {
	for _, a := range s.armed {
		a.timer.Stop()
	}
	s.armed = make(map[reminderKey]*armedReminder)
}

// fire delivers a reminder unless a refresh has already replaced it
func (s *Service) fire(a *armedReminder) {
	s.mu.Lock()
	if s.armed[a.key()] != a {
		s.mu.Unlock()
		return
	}
	delete(s.armed, a.key())
	s.mu.Unlock()

	s.dispatch(func() { s.deliver(a.Reminder) })
}

func (s *Service) deliver(r Reminder) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Notifier panicked on %s reminder (cycle %s): %v", r.Prayer, r.Cycle, p)
		}
	}()

	log := s.logger.With("cycle", r.Cycle)
	log.Info("Sending reminder: %s", r.Message)
	if err := s.notifier.Notify(s.ctx, r.Prayer, r.Message, r.AtPrayerTime()); err != nil {
		log.Error("Failed to deliver %s reminder: %v", r.Prayer, err)
	}
}

// Pending returns the armed reminders ordered by fire instant
func (s *Service) Pending() []Reminder {
	s.mu.Lock()
	reminders := make([]Reminder, 0, len(s.armed))
	for _, a := range s.armed {
		reminders = append(reminders, a.Reminder)
	}
	s.mu.Unlock()

	sort.Slice(reminders, func(i, j int) bool {
		if !reminders[i].FireAt.Equal(reminders[j].FireAt) {
			return reminders[i].FireAt.Before(reminders[j].FireAt)
		}
		return reminders[i].Prayer < reminders[j].Prayer
	})
	return reminders
}

// Current returns the schedule of the last successful refresh
func (s *Service) Current() (prayer.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return prayer.Schedule{}, false
	}
	return copySchedule(*s.current), true
}

// State returns the lifecycle state
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func copySchedule(schedule prayer.Schedule) prayer.Schedule {
	times := make(map[prayer.Name]string, len(schedule.Times))
	for name, value := range schedule.Times {
		times[name] = value
	}
	schedule.Times = times
	return schedule
}
