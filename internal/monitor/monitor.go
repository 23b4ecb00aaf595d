// Package monitor is the change-detection core: it compares a fresh batch of
// cleaned activities against the prior snapshot, decides what to notify and
// in which rendering, and returns the updated counter state.
//
// The core is pure: no network, no disk. Wall-clock time enters only through
// the injected clock and is used solely for update stamps.
package monitor

import (
	"fmt"
	"time"

	"pumon/internal/activity"
	"pumon/internal/snapshot"
)

// Thresholds tunes large-activity classification and throttling.
type Thresholds struct {
	// CapacityLimit: an activity must allow more signups than this to be large.
	CapacityLimit int
	// DurationDays: ... and its event span or signup window must exceed this.
	DurationDays int
	// MaxDetailCount caps detailed notifications per large activity.
	MaxDetailCount int
	// NotifyBatch is the accumulated growth that triggers a summary ping once
	// the detail budget is spent.
	NotifyBatch int
}

// Result is one category's processing outcome. Entries contains exactly the
// activities present in the fresh batch; whether the caller replaces or
// merges the category mapping is the caller's decision.
type Result struct {
	Messages []string
	Entries  map[string]snapshot.Entry
}

type Core struct {
	th  Thresholds
	now func() time.Time
}

func New(th Thresholds) *Core {
	return &Core{th: th, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (c *Core) WithClock(now func() time.Time) *Core {
	cp := *c
	cp.now = now
	return &cp
}

// IsLarge classifies a public activity as large-scale. The result depends
// only on the record's capacity and window fields, never on counter state.
func (c *Core) IsLarge(a *activity.Activity) bool {
	if a.AllowUserCount <= c.th.CapacityLimit {
		return false
	}
	actDays := activity.DaySpan(a.Start, a.End)
	joinDays := activity.DaySpan(a.JoinStart, a.JoinEnd)
	limit := float64(c.th.DurationDays)
	return actDays > limit || joinDays > limit
}

// ProcessTribe handles the tribe feed. Tribe activities are never throttled:
// anything new or growing gets a detailed notification.
func (c *Core) ProcessTribe(fresh []activity.Activity, prior map[string]snapshot.Entry) Result {
	res := Result{Entries: make(map[string]snapshot.Entry, len(fresh))}
	stamp := snapshot.FormatStamp(c.now())

	for i := range fresh {
		a := fresh[i]
		id := a.ID.String()
		old, seen := prior[id]

		lastJoined := 0
		if seen {
			lastJoined = old.State.LastJoined
		}
		delta := a.JoinUserCount - lastJoined

		var header string
		switch {
		case !seen:
			header = "🆕 **发现我的社团新活动**"
		case delta > 0:
			header = fmt.Sprintf("📈 **社团活动动态 (新增 +%d人)**", delta)
		}
		if header != "" {
			res.Messages = append(res.Messages, header+"\n"+Render(&a, true))
		}

		res.Entries[id] = snapshot.Entry{
			Activity: a,
			State: snapshot.Counters{
				LastJoined: a.JoinUserCount,
				UpdateTime: stamp,
			},
		}
	}
	return res
}

// ProcessPublic handles the public feed with the four-state throttling
// policy for large activities:
//
//  1. delta <= 0: silent; counters carry, last_joined refreshes.
//  2. not large: detailed notification showing this run's delta.
//  3. large with detail budget left: detailed notification showing the
//     accumulated increase; one budget credit consumed, accumulator reset.
//  4. budget spent: accumulate silently until NotifyBatch is reached, then a
//     single summary notification flushes the accumulated increase.
func (c *Core) ProcessPublic(fresh []activity.Activity, prior map[string]snapshot.Entry) Result {
	res := Result{Entries: make(map[string]snapshot.Entry, len(fresh))}
	stamp := snapshot.FormatStamp(c.now())

	for i := range fresh {
		a := fresh[i]
		id := a.ID.String()
		old, seen := prior[id]

		var lastJoined, detailCount, accIncrease int
		if seen {
			lastJoined = old.State.LastJoined
			detailCount = old.State.DetailCount
			accIncrease = old.State.AccIncrease
		}
		delta := a.JoinUserCount - lastJoined
		isLarge := c.IsLarge(&a)

		notify := false
		detailed := true
		shown := delta

		if delta > 0 {
			if !isLarge {
				notify = true
				accIncrease = 0
			} else {
				currentAcc := accIncrease + delta
				switch {
				case detailCount < c.th.MaxDetailCount:
					notify = true
					shown = currentAcc
					detailCount++
					accIncrease = 0
				case currentAcc >= c.th.NotifyBatch:
					notify = true
					detailed = false
					shown = currentAcc
					accIncrease = 0
				default:
					accIncrease = currentAcc
				}
			}
		}

		if notify {
			header := fmt.Sprintf("🔥 **火热报名中 (新增 +%d人)**", shown)
			res.Messages = append(res.Messages, header+"\n"+Render(&a, detailed))
		}

		res.Entries[id] = snapshot.Entry{
			Activity: a,
			State: snapshot.Counters{
				LastJoined:  a.JoinUserCount,
				DetailCount: detailCount,
				AccIncrease: accIncrease,
				IsLarge:     isLarge,
				UpdateTime:  stamp,
			},
		}
	}
	return res
}
