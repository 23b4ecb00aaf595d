// Package app wires the monitor together and drives one pass: gate, fetch,
// clean, diff, persist, deliver, journal.
package app

import (
	"fmt"

	"pumon/internal/config"
	"pumon/internal/history"
	"pumon/internal/monitor"
	"pumon/internal/notify"
	"pumon/internal/puapi"
	"pumon/internal/schedule"
	"pumon/internal/snapshot"
	"pumon/pkg/logx"
)

type App struct {
	cfg *config.Config
	log logx.Logger

	client  *puapi.Client
	store   *snapshot.Store
	core    *monitor.Core
	gate    schedule.Gate
	sender  *notify.Dispatcher
	journal *history.Journal
}

func New(cfg *config.Config, log logx.Logger) (*App, error) {
	sender, err := notify.New(cfg, log)
	if err != nil {
		return nil, err
	}
	journal, err := history.Open(cfg.History.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}

	return &App{
		cfg:    cfg,
		log:    log,
		client: puapi.New(cfg, log),
		store:  snapshot.NewStore(cfg.Snapshot.Path, log),
		core: monitor.New(monitor.Thresholds{
			CapacityLimit:  cfg.Large.CapacityLimit,
			DurationDays:   cfg.Large.DurationDays,
			MaxDetailCount: cfg.Large.MaxDetailCount,
			NotifyBatch:    cfg.Large.NotifyBatch,
		}),
		gate:    schedule.FromConfig(cfg),
		sender:  sender,
		journal: journal,
	}, nil
}

func (a *App) Close() error {
	return a.journal.Close()
}
