// Package activity defines the canonical activity model and the cleaning and
// filtering rules applied to raw upstream records.
package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Category separates the two independent feeds.
type Category string

const (
	CategoryPublic Category = "public"
	CategoryTribe  Category = "tribe"
)

// ID is an activity or group identifier.
//
// The upstream API emits these as JSON numbers in most deployments but as
// quoted strings in some; both decode to the numeric value.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	s := string(b)
	if s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", string(b))
	}
	*id = ID(v)
	return nil
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Scalar is a display-only value that the API emits inconsistently as a
// string or a number (credit, PU amount, the legacy single "tag" field).
// It round-trips as a string and renders verbatim.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid scalar %q", string(b))
	}
	*s = Scalar(n.String())
	return nil
}

// Display renders the value, or "-" when absent.
func (s Scalar) Display() string {
	if strings.TrimSpace(string(s)) == "" {
		return "-"
	}
	return string(s)
}

// GroupRef is an {id, name} pair (tribe, college, cohort year, tag).
type GroupRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Activity is the canonical cleaned record carried through the core and the
// snapshot. Field names mirror the upstream whitelist so cache files stay
// readable next to raw API payloads.
type Activity struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	JoinStart      When `json:"joinStartTime"`
	JoinEnd        When `json:"joinEndTime"`
	AllowUserCount int  `json:"allowUserCount"`
	JoinUserCount  int  `json:"joinUserCount"`
	SignInCount    int  `json:"signInUserCount"`

	Start        When `json:"startTime"`
	End          When `json:"endTime"`
	SignInStart  When `json:"signStartTime"`
	SignOutStart When `json:"signOutStartTime"`

	Credit   Scalar `json:"credit"`
	PuAmount Scalar `json:"puAmount"`

	Tags       []string   `json:"tags,omitempty"`
	AllowTribe []GroupRef `json:"allowTribe,omitempty"`

	AttachTitle string `json:"attachTitle,omitempty"`
	AttachURL   string `json:"attachName,omitempty"`

	Status      int    `json:"status"`
	StatusName  string `json:"statusName"`
	CreatorName string `json:"creatorName"`

	// Provenance: empty for public activities, the tribe label and name for
	// tribe-feed activities.
	SourceType string `json:"sourceType,omitempty"`
	SourceName string `json:"sourceName,omitempty"`
}

// Detail is the raw per-activity record returned by the info endpoint
// (data.baseInfo), before projection and eligibility filtering.
type Detail struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	JoinStartTime    When `json:"joinStartTime"`
	JoinEndTime      When `json:"joinEndTime"`
	AllowUserCount   int  `json:"allowUserCount"`
	JoinUserCount    int  `json:"joinUserCount"`
	SignInUserCount  int  `json:"signInUserCount"`
	StartTime        When `json:"startTime"`
	EndTime          When `json:"endTime"`
	SignStartTime    When `json:"signStartTime"`
	SignOutStartTime When `json:"signOutStartTime"`

	Credit   Scalar `json:"credit"`
	PuAmount Scalar `json:"puAmount"`

	// Tag is a legacy single-label field some deployments still emit; Tags is
	// the usual {id,name} list. Projection merges both.
	Tag  Scalar     `json:"tag"`
	Tags []GroupRef `json:"tags"`

	AllowTribe   []GroupRef `json:"allowTribe"`
	AllowCollege []GroupRef `json:"allowCollege"`
	AllowYears   []GroupRef `json:"allowYears"`

	AttachTitle string `json:"attachTitle"`
	AttachName  string `json:"attachName"`

	Status      int    `json:"status"`
	StatusName  string `json:"statusName"`
	CreatorName string `json:"creatorName"`
}
