package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/storage"
	"github.com/tipbase-server/internal/types"
)

// ResultsMonitor periodically scans the tip collection and announces tips
// whose every fixture has kicked off. Each settled tip is announced exactly
// once; announced ids are remembered under their own storage key. Fixtures
// themselves are never mutated.
type ResultsMonitor struct {
	tips          *TipsService
	notifications *NotificationService
	kv            storage.KV
	cfg           config.MonitorConfig
	log           *logging.Logger
	sched         gocron.Scheduler

	now func() time.Time
}

// NewResultsMonitor creates a new results monitor
func NewResultsMonitor(tips *TipsService, notifications *NotificationService, kv storage.KV, cfg config.MonitorConfig, log *logging.Logger) *ResultsMonitor {
	if log == nil {
		log = logging.Global()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &ResultsMonitor{
		tips:          tips,
		notifications: notifications,
		kv:            kv,
		cfg:           cfg,
		log:           log.WithField("service", "results-monitor"),
		now:           time.Now,
	}
}

// Start schedules the periodic sweep
func (m *ResultsMonitor) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(m.cfg.Interval),
		gocron.NewTask(func() {
			if err := m.Sweep(ctx); err != nil {
				m.log.WithError(err).Warn("results sweep failed")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule results sweep: %w", err)
	}

	m.sched = sched
	sched.Start()
	m.log.WithField("interval", m.cfg.Interval.String()).Info("results monitor started")
	return nil
}

// Stop shuts the scheduler down
func (m *ResultsMonitor) Stop() error {
	if m.sched == nil {
		return nil
	}
	return m.sched.Shutdown()
}

// Sweep announces every newly settled tip. It is also callable directly,
// which is how tests drive it.
func (m *ResultsMonitor) Sweep(ctx context.Context) error {
	tips, err := m.tips.List(ctx)
	if err != nil {
		return err
	}

	var seen []string
	if _, err := storage.GetJSON(ctx, m.kv, storage.KeyResultsSeen, &seen); err != nil {
		return err
	}
	seenSet := make(map[string]bool, len(seen))
	for _, id := range seen {
		seenSet[id] = true
	}

	now := m.now()
	announced := 0
	for _, tip := range tips {
		if seenSet[tip.ID] || !tip.Settled(now) {
			continue
		}

		title := "Results are in"
		message := fmt.Sprintf("All %d fixtures from your tip have finished. Check how your picks performed.", len(tip.Fixtures))
		if _, err := m.notifications.Add(ctx, types.NotificationTipsterResults, title, message); err != nil {
			return err
		}

		seen = append([]string{tip.ID}, seen...)
		seenSet[tip.ID] = true
		announced++
	}

	if announced == 0 {
		return nil
	}

	// The seen list obeys the same cap as the collections it mirrors.
	if max := m.tips.cfg.MaxStored; len(seen) > max {
		seen = seen[:max]
	}
	if err := storage.SetJSON(ctx, m.kv, storage.KeyResultsSeen, seen); err != nil {
		return err
	}

	m.log.WithField("announced", announced).Info("settled tips announced")
	return nil
}
