package app

import (
	"context"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"pumon/internal/schedule"
	"pumon/pkg/logx"
)

// RunDaemon schedules RunOnce on the configured cron spec until ctx is
// cancelled. Under systemd it reports readiness and services the watchdog;
// elsewhere the sd_notify calls are no-ops.
func (a *App) RunDaemon(ctx context.Context) error {
	spec := a.cfg.Schedule.DaemonSpec
	trig, err := schedule.NewTrigger(spec, func() {
		if err := a.RunOnce(ctx); err != nil {
			a.log.Error("pass failed", logx.Err(err))
		}
	}, a.log.With(logx.String("component", "schedule")))
	if err != nil {
		return err
	}

	trig.Start()
	a.log.Info("daemon started", logx.String("spec", spec))
	_, _ = sd.SdNotify(false, sd.SdNotifyReady)

	if interval, err := sd.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go watchdogLoop(ctx, interval/2)
	}

	<-ctx.Done()
	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	trig.Stop()
	a.log.Info("daemon stopped")
	return nil
}

func watchdogLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = sd.SdNotify(false, sd.SdNotifyWatchdog)
		}
	}
}
