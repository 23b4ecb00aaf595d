// Package snapshot persists the prior-run state: per-activity counters for
// both categories plus each category's last successful run timestamp.
//
// The file is a cache, not a source of truth: a missing or corrupt file
// resets to an empty state instead of failing the run.
package snapshot

import (
	"time"

	"pumon/internal/activity"
)

// Stamp layout used throughout the cache file, local time.
const stampLayout = "2006-01-02 15:04:05"

// Counters is the bookkeeping carried forward across runs, separate from the
// activity's business fields.
//
// Tribe entries only ever use LastJoined and UpdateTime; the throttling
// fields stay zero because tribe activities are never rate-limited.
type Counters struct {
	// LastJoined is the signup count observed as of the previous run.
	LastJoined int `json:"last_joined"`
	// DetailCount is how many detailed notifications this activity has
	// consumed while classified large (capped).
	DetailCount int `json:"detail_count,omitempty"`
	// AccIncrease is signup growth accumulated but not yet flushed.
	AccIncrease int `json:"acc_increase,omitempty"`
	// IsLarge caches the classification result; it is recomputed each run and
	// never trusted across runs.
	IsLarge bool `json:"is_large,omitempty"`
	// UpdateTime is the stamp of the last mutation.
	UpdateTime string `json:"update_time"`
}

// Entry is one activity plus its counter state.
type Entry struct {
	Activity activity.Activity `json:"activity"`
	State    Counters          `json:"state"`
}

// State is the whole persisted file.
type State struct {
	TribeLastRun  string           `json:"tribe_last_run,omitempty"`
	PublicLastRun string           `json:"public_last_run,omitempty"`
	Tribe         map[string]Entry `json:"tribe"`
	Public        map[string]Entry `json:"public"`
}

// NewState returns an empty initialized state.
func NewState() *State {
	return &State{
		Tribe:  map[string]Entry{},
		Public: map[string]Entry{},
	}
}

func (s *State) init() {
	if s.Tribe == nil {
		s.Tribe = map[string]Entry{}
	}
	if s.Public == nil {
		s.Public = map[string]Entry{}
	}
}

// Entries returns the category's mapping.
func (s *State) Entries(cat activity.Category) map[string]Entry {
	if cat == activity.CategoryTribe {
		return s.Tribe
	}
	return s.Public
}

// SetEntries replaces the category's mapping with the core's returned map,
// pruning entries for activities absent from the fresh fetch.
func (s *State) SetEntries(cat activity.Category, m map[string]Entry) {
	if m == nil {
		m = map[string]Entry{}
	}
	if cat == activity.CategoryTribe {
		s.Tribe = m
	} else {
		s.Public = m
	}
}

// LastRun parses the category's last-run stamp. ok is false on the first run
// or when the stamp is unreadable; callers then treat the category as due.
func (s *State) LastRun(cat activity.Category) (time.Time, bool) {
	raw := s.PublicLastRun
	if cat == activity.CategoryTribe {
		raw = s.TribeLastRun
	}
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(stampLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetLastRun stamps the category's last successful run.
func (s *State) SetLastRun(cat activity.Category, t time.Time) {
	if cat == activity.CategoryTribe {
		s.TribeLastRun = FormatStamp(t)
	} else {
		s.PublicLastRun = FormatStamp(t)
	}
}

// FormatStamp renders a time in the cache file's stamp layout.
func FormatStamp(t time.Time) string {
	return t.Format(stampLayout)
}
