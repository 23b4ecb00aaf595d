package app

import (
	"context"
	"fmt"
	"time"

	"pumon/internal/activity"
	"pumon/internal/history"
	"pumon/pkg/logx"
)

// RunOnce performs one complete pass. It returns nil when nothing was due.
//
// Ordering invariant: the snapshot is persisted before any delivery attempt,
// so a failed delivery can never cause already-reflected growth to be
// re-notified on the next run.
func (a *App) RunOnce(ctx context.Context) error {
	st := a.store.Load()
	now := time.Now()

	dec := a.gate.Decide(now, st)
	if !dec.Any() {
		a.log.Info("no category due, sleeping",
			logx.String("clock", now.Format("15:04")))
		return nil
	}
	a.log.Info("pass starting",
		logx.Bool("tribe", dec.Tribe), logx.Bool("public", dec.Public))

	var all []string
	var records []history.RunRecord

	if dec.Tribe {
		started := time.Now()
		acts, ferr := a.fetchTribe(ctx)
		res := a.core.ProcessTribe(acts, st.Entries(activity.CategoryTribe))
		st.SetEntries(activity.CategoryTribe, res.Entries)
		st.SetLastRun(activity.CategoryTribe, now)
		all = append(all, res.Messages...)
		records = append(records, history.RunRecord{
			At:       started,
			Category: string(activity.CategoryTribe),
			Fetched:  len(acts),
			Notified: len(res.Messages),
			Err:      errText(ferr),
			TookMS:   time.Since(started).Milliseconds(),
		})
	}

	if dec.Public {
		started := time.Now()
		acts, ferr := a.fetchPublic(ctx)
		res := a.core.ProcessPublic(acts, st.Entries(activity.CategoryPublic))
		st.SetEntries(activity.CategoryPublic, res.Entries)
		st.SetLastRun(activity.CategoryPublic, now)
		all = append(all, res.Messages...)
		records = append(records, history.RunRecord{
			At:       started,
			Category: string(activity.CategoryPublic),
			Fetched:  len(acts),
			Notified: len(res.Messages),
			Err:      errText(ferr),
			TookMS:   time.Since(started).Milliseconds(),
		})
	}

	// Persist first. If this fails the run fails and nothing is delivered:
	// delivering without the new state would double-notify next run.
	if err := a.store.Save(st); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	failed := 0
	if len(all) > 0 {
		failed = a.sender.Dispatch(ctx, all)
		a.log.Info("pass delivered",
			logx.Int("messages", len(all)), logx.Int("failed_sinks", failed))
	} else {
		a.log.Info("no changes worth notifying")
	}

	for i := range records {
		records[i].Failed = failed
		a.journal.Record(ctx, records[i])
	}
	return nil
}

func errText(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
