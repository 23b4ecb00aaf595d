// Package schedule decides when the monitor actually runs: the pure
// per-invocation gate, and the cron trigger used in daemon mode.
package schedule

import (
	"time"

	"pumon/internal/activity"
	"pumon/internal/config"
	"pumon/internal/snapshot"
)

// Gate is the run-condition check. It is a pure function of wall-clock time
// and the two last-run timestamps.
type Gate struct {
	// WindowStart/WindowEnd bound the daily active window, inclusive both
	// ends. Outside it nothing runs regardless of elapsed intervals.
	WindowStart config.Clock
	WindowEnd   config.Clock

	// Minimum elapsed time since each category's last successful run.
	TribeInterval  time.Duration
	PublicInterval time.Duration
}

// Decision is an independent boolean per category. The categories never gate
// each other.
type Decision struct {
	Tribe  bool
	Public bool
}

func (d Decision) Any() bool { return d.Tribe || d.Public }

// FromConfig builds the gate from validated config.
func FromConfig(cfg *config.Config) Gate {
	start, _ := config.ParseClock("schedule.window_start", cfg.Schedule.WindowStart)
	end, _ := config.ParseClock("schedule.window_end", cfg.Schedule.WindowEnd)
	return Gate{
		WindowStart:    start,
		WindowEnd:      end,
		TribeInterval:  cfg.TribeInterval(),
		PublicInterval: cfg.PublicInterval(),
	}
}

// Decide evaluates both gates against local wall-clock time and the
// snapshot's last-run stamps.
func (g Gate) Decide(now time.Time, st *snapshot.State) Decision {
	cur := config.Minutes(now)
	if cur < g.WindowStart || cur > g.WindowEnd {
		return Decision{}
	}
	return Decision{
		Tribe:  due(now, st, activity.CategoryTribe, g.TribeInterval),
		Public: due(now, st, activity.CategoryPublic, g.PublicInterval),
	}
}

func due(now time.Time, st *snapshot.State, cat activity.Category, interval time.Duration) bool {
	last, ok := st.LastRun(cat)
	if !ok {
		// Never ran (or unreadable stamp): always due.
		return true
	}
	return now.Sub(last) >= interval
}
