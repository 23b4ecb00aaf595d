package config

// Config is the whole process configuration.
//
// It is constructed once by Load and never mutated afterwards; components
// receive it (or a section of it) by reference. All durations are Go duration
// strings (e.g. "500ms", "10s", "20m").
type Config struct {
	Auth     AuthConfig     `json:"auth"`
	API      APIConfig      `json:"api"`
	Filters  FilterConfig   `json:"filters"`
	Large    LargeConfig    `json:"large"`
	Schedule ScheduleConfig `json:"schedule"`
	Notify   NotifyConfig   `json:"notify"`
	Snapshot SnapshotConfig `json:"snapshot"`
	History  HistoryConfig  `json:"history"`
	Logging  LoggingConfig  `json:"logging"`
}

// AuthConfig carries the upstream credential.
//
// Token is sent verbatim in the Authorization header ("Bearer ..." included).
// Expiry shows up as 401/403 and is fatal for the affected calls; the operator
// refreshes the token out-of-band.
type AuthConfig struct {
	Token     string `json:"token"`
	UserAgent string `json:"user_agent,omitempty"`
}

type APIConfig struct {
	BaseURL string `json:"base_url,omitempty"`

	// Timeout is the per-request timeout (default "8s").
	Timeout string `json:"timeout,omitempty"`
	// RetryMax is the total attempt count per request, first try included
	// (default 2: one try plus one retry).
	RetryMax int `json:"retry_max,omitempty"`
	// RatePerSec paces outbound calls to avoid upstream throttling (default 1).
	RatePerSec int `json:"rate_per_sec,omitempty"`

	ListLimit       int `json:"list_limit,omitempty"`        // public listing page size (default 30)
	TribeLimit      int `json:"tribe_limit,omitempty"`       // how many of my tribes to scan (default 10)
	TribeEventLimit int `json:"tribe_event_limit,omitempty"` // events fetched per tribe (default 4)
}

// FilterConfig scopes which activities the operating account cares about.
type FilterConfig struct {
	// AllowYears is the account's cohort IDs; required by the listing API and
	// intersected against each activity's allowed-year list.
	AllowYears []int64 `json:"allow_years"`
	// TargetCollegeID drops public activities restricted to other colleges.
	TargetCollegeID int64 `json:"target_college_id,omitempty"`
	// Keywords is a deny-list matched as case-sensitive substrings of the
	// activity name.
	Keywords []string `json:"keywords,omitempty"`
}

// LargeConfig tunes large-activity classification and notification throttling.
type LargeConfig struct {
	CapacityLimit  int `json:"capacity_limit,omitempty"`   // default 700
	DurationDays   int `json:"duration_days,omitempty"`    // default 10
	MaxDetailCount int `json:"max_detail_count,omitempty"` // default 3
	NotifyBatch    int `json:"notify_batch,omitempty"`     // default 80
}

type ScheduleConfig struct {
	// WindowStart/WindowEnd bound the daily active window, "HH:MM" local time,
	// inclusive both ends. Defaults: "07:30" and "22:00".
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`

	// Minimum elapsed time since each category's last successful run.
	TribeInterval  string `json:"tribe_interval,omitempty"`  // default "20m"
	PublicInterval string `json:"public_interval,omitempty"` // default "30m"

	// DaemonSpec is the robfig/cron spec used by -daemon mode (default "@every 5m").
	DaemonSpec string `json:"daemon_spec,omitempty"`
}

type NotifyConfig struct {
	// PushURL receives a base64-encoded form POST; empty falls back to stdout
	// unless Telegram is configured.
	PushURL  string          `json:"push_url,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

type SnapshotConfig struct {
	Path string `json:"path,omitempty"` // default "./pu_monitor_cache.json"
}

// HistoryConfig controls the optional sqlite run journal.
// An empty path disables it.
type HistoryConfig struct {
	Path string `json:"path,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console *bool       `json:"console,omitempty"` // pointer: omitted defaults to true
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}
