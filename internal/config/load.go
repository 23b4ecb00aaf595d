package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://apis.pocketuni.net/apis"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
)

var reHHMM = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Load reads, decodes, defaults and validates the config file.
//
// Both YAML and JSON are accepted; YAML is coerced to JSON so a single strict
// decoder (DisallowUnknownFields) catches typos in either format.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	jb, format, err := coerceToJSONBytes(path, raw)
	if err != nil {
		return nil, fmt.Errorf("parse config (%s): %w", format, err)
	}

	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config (%s): %w", format, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Auth.UserAgent) == "" {
		c.Auth.UserAgent = defaultUserAgent
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.API.Timeout) == "" {
		c.API.Timeout = "8s"
	}
	if c.API.RetryMax <= 0 {
		c.API.RetryMax = 2
	}
	if c.API.RatePerSec <= 0 {
		c.API.RatePerSec = 1
	}
	if c.API.ListLimit <= 0 {
		c.API.ListLimit = 30
	}
	if c.API.TribeLimit <= 0 {
		c.API.TribeLimit = 10
	}
	if c.API.TribeEventLimit <= 0 {
		c.API.TribeEventLimit = 4
	}

	if c.Large.CapacityLimit <= 0 {
		c.Large.CapacityLimit = 700
	}
	if c.Large.DurationDays <= 0 {
		c.Large.DurationDays = 10
	}
	if c.Large.MaxDetailCount <= 0 {
		c.Large.MaxDetailCount = 3
	}
	if c.Large.NotifyBatch <= 0 {
		c.Large.NotifyBatch = 80
	}

	if strings.TrimSpace(c.Schedule.WindowStart) == "" {
		c.Schedule.WindowStart = "07:30"
	}
	if strings.TrimSpace(c.Schedule.WindowEnd) == "" {
		c.Schedule.WindowEnd = "22:00"
	}
	if strings.TrimSpace(c.Schedule.TribeInterval) == "" {
		c.Schedule.TribeInterval = "20m"
	}
	if strings.TrimSpace(c.Schedule.PublicInterval) == "" {
		c.Schedule.PublicInterval = "30m"
	}
	if strings.TrimSpace(c.Schedule.DaemonSpec) == "" {
		c.Schedule.DaemonSpec = "@every 5m"
	}

	if strings.TrimSpace(c.Snapshot.Path) == "" {
		c.Snapshot.Path = "./pu_monitor_cache.json"
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Console == nil {
		t := true
		c.Logging.Console = &t
	}
}

// Validate returns the first problem found, qualified with its config path.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Token) == "" {
		return fmt.Errorf("auth.token: required")
	}
	if len(c.Filters.AllowYears) == 0 {
		return fmt.Errorf("filters.allow_years: at least one year ID is required by the listing API")
	}
	if _, err := ParseDurationField("api.timeout", c.API.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("schedule.tribe_interval", c.Schedule.TribeInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("schedule.public_interval", c.Schedule.PublicInterval); err != nil {
		return err
	}
	if _, err := ParseClock("schedule.window_start", c.Schedule.WindowStart); err != nil {
		return err
	}
	if _, err := ParseClock("schedule.window_end", c.Schedule.WindowEnd); err != nil {
		return err
	}
	if tg := c.Notify.Telegram; tg != nil {
		if strings.TrimSpace(tg.Token) == "" {
			return fmt.Errorf("notify.telegram.token: required when the telegram section is present")
		}
		if tg.ChatID == 0 {
			return fmt.Errorf("notify.telegram.chat_id: required when the telegram section is present")
		}
	}
	return nil
}

// Clock is a minutes-since-midnight wall clock value.
type Clock int

// ParseClock parses a "HH:MM" field.
func ParseClock(path, raw string) (Clock, error) {
	s := strings.TrimSpace(raw)
	m := reHHMM.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%s: invalid time %q (use HH:MM like \"07:30\")", path, raw)
	}
	var hh, mm int
	fmt.Sscanf(m[1], "%d", &hh)
	fmt.Sscanf(m[2], "%d", &mm)
	return Clock(hh*60 + mm), nil
}

// Minutes converts a time.Time's local wall clock to minutes since midnight.
func Minutes(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// APITimeout returns the validated per-request timeout.
func (c *Config) APITimeout() time.Duration {
	d, _ := ParseDurationOrDefault("api.timeout", c.API.Timeout, 8*time.Second)
	return d
}

// TribeInterval returns the validated tribe run interval.
func (c *Config) TribeInterval() time.Duration {
	d, _ := ParseDurationOrDefault("schedule.tribe_interval", c.Schedule.TribeInterval, 20*time.Minute)
	return d
}

// PublicInterval returns the validated public run interval.
func (c *Config) PublicInterval() time.Duration {
	d, _ := ParseDurationOrDefault("schedule.public_interval", c.Schedule.PublicInterval, 30*time.Minute)
	return d
}

// ConsoleEnabled resolves the logging.console tri-state.
func (c *Config) ConsoleEnabled() bool {
	return c.Logging.Console == nil || *c.Logging.Console
}
