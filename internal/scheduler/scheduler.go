package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/XavierBriggs/Athena/internal/registry"
	"github.com/XavierBriggs/Athena/internal/store"
	"github.com/XavierBriggs/Athena/pkg/contracts"
	"github.com/XavierBriggs/Athena/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const alternateSuffix = "_alternate"

// OddsWriter persists a refreshed odds snapshot
type OddsWriter interface {
	UpsertOdds(ctx context.Context, events []models.Event, odds []models.RawOdds) error
}

// StatusUpdater advances event lifecycles (upcoming, live, completed)
type StatusUpdater interface {
	UpdateEventStatuses(ctx context.Context) (store.EventStatusCounts, error)
}

// Scheduler refreshes player prop odds for every registered sport on cron schedules
type Scheduler struct {
	adapter       contracts.VendorAdapter
	writer        OddsWriter
	sportRegistry *registry.SportRegistry
	cron          *cron.Cron
	refreshSpec   string
	statusUpdater StatusUpdater
	statusSpec    string
	log           *logrus.Entry
	now           func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithRefreshSchedule overrides every sport's regular refresh cron spec
func WithRefreshSchedule(spec string) Option {
	return func(s *Scheduler) {
		s.refreshSpec = strings.TrimSpace(spec)
	}
}

// WithStatusUpdates runs the event status updater on its own cron spec
func WithStatusUpdates(updater StatusUpdater, spec string) Option {
	return func(s *Scheduler) {
		s.statusUpdater = updater
		s.statusSpec = spec
	}
}

// WithLogger sets the scheduler's log entry
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Scheduler) {
		s.log = entry
	}
}

// RefreshStats summarizes one refresh run
type RefreshStats struct {
	EventsDue    int
	EventsFailed int
	Odds         int
	Rejected     int
}

// NewScheduler creates a props refresh scheduler
func NewScheduler(
	adapter contracts.VendorAdapter,
	writer OddsWriter,
	sportRegistry *registry.SportRegistry,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		adapter:       adapter,
		writer:        writer,
		sportRegistry: sportRegistry,
		log:           logrus.NewEntry(logrus.StandardLogger()),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	cronLog := cron.PrintfLogger(s.log)
	s.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	return s
}

// Start schedules the refresh jobs of every sport and runs one refresh immediately
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	sports := s.sportRegistry.GetAll()
	if len(sports) == 0 {
		return fmt.Errorf("no sports registered")
	}

	ctx, cancel := context.WithCancel(ctx)

	var scheduled []contracts.SportModule
	for _, sport := range sports {
		if !sport.ShouldRefreshProps() {
			s.log.WithField("sport", sport.GetSportKey()).Info("props refresh disabled")
			continue
		}
		if err := s.schedule(ctx, sport); err != nil {
			cancel()
			return err
		}
		scheduled = append(scheduled, sport)
	}

	if s.statusUpdater != nil {
		if _, err := s.cron.AddFunc(s.statusSpec, func() { s.runStatusUpdate(ctx) }); err != nil {
			cancel()
			return fmt.Errorf("schedule event status updates %q: %w", s.statusSpec, err)
		}
	}

	s.cron.Start()
	s.cancel = cancel
	s.running = true

	for _, sport := range scheduled {
		s.wg.Add(1)
		go func(sport contracts.SportModule) {
			defer s.wg.Done()
			s.runRefresh(ctx, sport, false)
		}(sport)
	}

	s.log.WithField("sports", len(scheduled)).Info("props refresh scheduler started")
	return nil
}

// Stop cancels in-flight refreshes and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()

	s.running = false
	s.log.Info("props refresh scheduler stopped")
}

func (s *Scheduler) schedule(ctx context.Context, sport contracts.SportModule) error {
	spec := sport.GetPropsRefreshSchedule()
	if s.refreshSpec != "" {
		spec = s.refreshSpec
	}

	if _, err := s.cron.AddFunc(spec, func() { s.runRefresh(ctx, sport, false) }); err != nil {
		return fmt.Errorf("schedule %s props refresh %q: %w", sport.GetSportKey(), spec, err)
	}

	if ramp := sport.GetPropsRampSchedule(); ramp != "" {
		if _, err := s.cron.AddFunc(ramp, func() { s.runRefresh(ctx, sport, true) }); err != nil {
			return fmt.Errorf("schedule %s ramp refresh %q: %w", sport.GetSportKey(), ramp, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"sport":    sport.GetSportKey(),
		"schedule": spec,
		"ramp":     sport.GetPropsRampSchedule(),
	}).Info("scheduled props refresh")
	return nil
}

func (s *Scheduler) runRefresh(ctx context.Context, sport contracts.SportModule, rampOnly bool) {
	start := s.now()
	stats, err := s.RefreshProps(ctx, sport, rampOnly)

	entry := s.log.WithFields(logrus.Fields{
		"sport":         sport.GetSportKey(),
		"ramp":          rampOnly,
		"events_due":    stats.EventsDue,
		"events_failed": stats.EventsFailed,
		"odds":          stats.Odds,
		"rejected":      stats.Rejected,
		"duration":      time.Since(start).String(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		entry.WithError(err).Error("props refresh failed")
		return
	}
	entry.Info("props refresh complete")
}

func (s *Scheduler) runStatusUpdate(ctx context.Context) {
	if _, err := s.statusUpdater.UpdateEventStatuses(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("event status update failed")
	}
}

// RefreshProps fetches the prop odds of every event due for a refresh and
// writes the valid ones as the latest snapshot. rampOnly narrows the run to
// events close enough to tipoff for the sport's ramp schedule.
func (s *Scheduler) RefreshProps(ctx context.Context, sport contracts.SportModule, rampOnly bool) (RefreshStats, error) {
	var stats RefreshStats

	events, err := s.adapter.FetchEvents(ctx, sport.GetSportKey())
	if err != nil {
		return stats, fmt.Errorf("fetch events: %w", err)
	}

	due := s.eventsDue(sport, events, rampOnly)
	stats.EventsDue = len(due)
	if len(due) == 0 {
		return stats, nil
	}

	markets := s.marketKeys(sport)
	written := make([]models.Event, 0, len(due))
	var odds []models.RawOdds

	for _, evt := range due {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := s.adapter.FetchEventOdds(ctx, &models.FetchEventOddsOptions{
			Sport:   sport.GetSportKey(),
			EventID: evt.EventID,
			Regions: sport.GetRegions(),
			Markets: markets,
		})
		if err != nil {
			stats.EventsFailed++
			s.log.WithError(err).WithField("event_id", evt.EventID).Warn("fetch event odds failed")
			continue
		}

		if len(result.Events) > 0 {
			written = append(written, result.Events...)
		} else {
			written = append(written, evt)
		}

		for _, o := range result.Odds {
			if err := sport.ValidateOdds(o); err != nil {
				stats.Rejected++
				s.log.WithError(err).WithField("event_id", o.EventID).Debug("rejected odds")
				continue
			}
			odds = append(odds, o)
		}
	}

	if stats.EventsFailed == len(due) {
		return stats, fmt.Errorf("all %d event odds fetches failed", len(due))
	}

	if err := s.writer.UpsertOdds(ctx, written, odds); err != nil {
		return stats, fmt.Errorf("upsert odds: %w", err)
	}
	stats.Odds = len(odds)

	return stats, nil
}

// eventsDue keeps upcoming events inside the sport's discovery window
func (s *Scheduler) eventsDue(sport contracts.SportModule, events []models.Event, rampOnly bool) []models.Event {
	now := s.now()
	windowEnd := now.Add(time.Duration(sport.GetDiscoveryWindowHours()) * time.Hour)

	due := make([]models.Event, 0, len(events))
	for _, evt := range events {
		if !evt.CommenceTime.After(now) || !evt.CommenceTime.Before(windowEnd) {
			continue
		}
		if rampOnly && !sport.InRampWindow(evt.CommenceTime.Sub(now).Hours()) {
			continue
		}
		due = append(due, evt)
	}
	return due
}

// marketKeys lists the sport's prop markets plus their alternate-line variants
// the vendor can serve
func (s *Scheduler) marketKeys(sport contracts.SportModule) []string {
	markets := sport.GetPropsMarkets()
	keys := make([]string, 0, 2*len(markets))
	for _, m := range markets {
		for _, key := range []string{string(m), string(m) + alternateSuffix} {
			if s.adapter.SupportsMarket(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}
