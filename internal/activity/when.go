package activity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const whenLayout = "2006-01-02 15:04:05"

// Epoch values above this magnitude are milliseconds, not seconds.
const msThreshold = 10_000_000_000

// When is a timestamp the API emits as either a numeric epoch (seconds or
// milliseconds, disambiguated by magnitude) or a "2006-01-02 15:04:05"
// string. Unparseable values keep their raw text for display and resolve to
// epoch 0 for arithmetic.
type When struct {
	t   time.Time
	ok  bool
	raw string
}

// WhenFromUnix builds a When from epoch seconds. Zero yields the zero When.
func WhenFromUnix(sec int64) When {
	if sec == 0 {
		return When{}
	}
	return When{t: time.Unix(sec, 0), ok: true}
}

// WhenFromString builds a When from a fixed-layout timestamp string.
func WhenFromString(s string) When {
	var w When
	w.setString(s)
	return w
}

func (w *When) setString(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		*w = When{}
		return
	}
	if t, err := time.ParseInLocation(whenLayout, s, time.Local); err == nil {
		*w = When{t: t, ok: true, raw: s}
		return
	}
	*w = When{raw: s}
}

func (w *When) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*w = When{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		w.setString(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// Not a timestamp we understand; keep the text for display.
		*w = When{raw: string(b)}
		return nil
	}
	if f == 0 {
		*w = When{}
		return nil
	}
	sec := int64(f)
	if sec > msThreshold {
		sec /= 1000
	}
	*w = When{t: time.Unix(sec, 0), ok: true}
	return nil
}

func (w When) MarshalJSON() ([]byte, error) {
	if w.raw != "" {
		return json.Marshal(w.raw)
	}
	if !w.ok {
		return []byte("null"), nil
	}
	return json.Marshal(w.t.Unix())
}

func (w When) IsZero() bool { return !w.ok && w.raw == "" }

// Unix returns epoch seconds, 0 when the value is absent or unparseable.
func (w When) Unix() int64 {
	if !w.ok {
		return 0
	}
	return w.t.Unix()
}

// Display renders "MM-DD HH:MM" for notifications; raw text passes through
// and absent values render "-".
func (w When) Display() string {
	if w.ok {
		return w.t.Format("01-02 15:04")
	}
	if w.raw != "" {
		return w.raw
	}
	return "-"
}

// DaySpan returns the distance from start to end in days. Absent endpoints
// count as epoch 0, matching the upstream contract.
func DaySpan(start, end When) float64 {
	return float64(end.Unix()-start.Unix()) / 86400.0
}
