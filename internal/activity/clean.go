package activity

import (
	"regexp"
	"strings"
)

// Status labels that mark an activity as over (including "ended pending
// review"), used both for the public ended-list subtraction and the per-tribe
// event scan.
var endedStatusNames = map[string]struct{}{
	"已结束":   {},
	"已完结":   {},
	"完结待审核": {},
}

// IsEndedStatus reports whether a status label means the activity is over.
func IsEndedStatus(name string) bool {
	_, ok := endedStatusNames[name]
	return ok
}

var ctrlRuns = regexp.MustCompile(`[\r\n\t]+`)

// NormalizeText collapses runs of carriage returns, line feeds and tabs into
// a single space and trims the result. Multi-line descriptions become one
// line without words gluing together.
func NormalizeText(s string) string {
	return strings.TrimSpace(ctrlRuns.ReplaceAllString(s, " "))
}

// Rules is the eligibility filter set for one category.
type Rules struct {
	// Keywords is a title deny-list; any case-sensitive substring match drops
	// the activity before its detail is ever fetched.
	Keywords []string

	// DropRestricted drops any activity with a non-empty restricting-group
	// list. True for the public feed (group-exclusive activities belong to
	// some other group's feed), false for the tribe feed.
	DropRestricted bool

	// TargetCollegeID drops activities whose non-empty allowed-college list
	// does not contain it. Zero disables the check only when the activity
	// itself carries no college restriction.
	TargetCollegeID int64

	// AllowYears drops activities whose non-empty allowed-year list has no
	// intersection with it.
	AllowYears []int64
}

// MatchesKeyword reports whether the activity name hits the deny-list.
func (r Rules) MatchesKeyword(name string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Drop reasons reported by Eligible, used for the cleaning report counters.
const (
	DropNone    = ""
	DropTribe   = "tribe"
	DropCollege = "college"
	DropYear    = "year"
)

// Eligible runs the multi-stage audience filter against a raw detail record.
// It returns DropNone or the first failing stage.
func (r Rules) Eligible(d *Detail) string {
	if r.DropRestricted && len(d.AllowTribe) > 0 {
		return DropTribe
	}
	if len(d.AllowCollege) > 0 {
		found := false
		for _, c := range d.AllowCollege {
			if int64(c.ID) == r.TargetCollegeID && c.ID != 0 {
				found = true
				break
			}
		}
		if !found {
			return DropCollege
		}
	}
	if len(d.AllowYears) > 0 {
		found := false
		for _, y := range d.AllowYears {
			for _, mine := range r.AllowYears {
				if int64(y.ID) == mine && y.ID != 0 {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return DropYear
		}
	}
	return DropNone
}

// Project builds the canonical Activity from a raw detail record.
//
// listID is the list-endpoint ID and is authoritative: the detail endpoint
// sometimes returns a null or missing ID, so whatever it says is discarded.
// sourceType/sourceName carry tribe provenance ("" for public activities).
func Project(d *Detail, listID ID, sourceType, sourceName string) Activity {
	a := Activity{
		ID:          listID,
		Name:        d.Name,
		Description: NormalizeText(d.Description),

		JoinStart:      d.JoinStartTime,
		JoinEnd:        d.JoinEndTime,
		AllowUserCount: d.AllowUserCount,
		JoinUserCount:  d.JoinUserCount,
		SignInCount:    d.SignInUserCount,

		Start:        d.StartTime,
		End:          d.EndTime,
		SignInStart:  d.SignStartTime,
		SignOutStart: d.SignOutStartTime,

		Credit:   d.Credit,
		PuAmount: d.PuAmount,

		AllowTribe: d.AllowTribe,

		AttachTitle: d.AttachTitle,
		AttachURL:   d.AttachName,

		Status:      d.Status,
		StatusName:  d.StatusName,
		CreatorName: d.CreatorName,

		SourceType: sourceType,
		SourceName: sourceName,
	}

	for _, t := range d.Tags {
		if t.Name != "" {
			a.Tags = append(a.Tags, t.Name)
		}
	}
	if len(a.Tags) == 0 && strings.TrimSpace(string(d.Tag)) != "" {
		a.Tags = append(a.Tags, string(d.Tag))
	}

	return a
}
