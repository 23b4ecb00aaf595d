package activity

import (
	"encoding/json"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hello\nworld", "hello world"},
		{"a\r\n\t b", "a  b"},
		{"  \n多行\n\n介绍\t文本\r\n  ", "多行 介绍 文本"},
		{"", ""},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Fatalf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKeywordFilterIsCaseSensitiveSubstring(t *testing.T) {
	r := Rules{Keywords: []string{"讲座", "Test"}}
	if !r.MatchesKeyword("学术讲座预告") {
		t.Fatalf("substring hit expected")
	}
	if r.MatchesKeyword("test event") {
		t.Fatalf("match must be case-sensitive")
	}
	if r.MatchesKeyword("普通活动") {
		t.Fatalf("no keyword should match")
	}
	if (Rules{}).MatchesKeyword("anything") {
		t.Fatalf("empty deny-list matches nothing")
	}
}

func TestEligibleRestrictingGroups(t *testing.T) {
	d := &Detail{AllowTribe: []GroupRef{{ID: 9, Name: "他人社团"}}}

	pub := Rules{DropRestricted: true}
	if got := pub.Eligible(d); got != DropTribe {
		t.Fatalf("public rules must drop group-restricted activities, got %q", got)
	}

	tribe := Rules{DropRestricted: false}
	if got := tribe.Eligible(d); got != DropNone {
		t.Fatalf("tribe rules must preserve group-restricted activities, got %q", got)
	}
}

func TestEligibleCollegeAndYear(t *testing.T) {
	r := Rules{TargetCollegeID: 100, AllowYears: []int64{2024, 2025}}

	// College allow-list excluding ours.
	d := &Detail{AllowCollege: []GroupRef{{ID: 200, Name: "别的学院"}}}
	if got := r.Eligible(d); got != DropCollege {
		t.Fatalf("got %q, want college drop", got)
	}

	// College allow-list including ours, year list disjoint.
	d = &Detail{
		AllowCollege: []GroupRef{{ID: 100, Name: "本学院"}},
		AllowYears:   []GroupRef{{ID: 2023}},
	}
	if got := r.Eligible(d); got != DropYear {
		t.Fatalf("got %q, want year drop", got)
	}

	// Intersecting year list passes.
	d.AllowYears = append(d.AllowYears, GroupRef{ID: 2025})
	if got := r.Eligible(d); got != DropNone {
		t.Fatalf("got %q, want pass", got)
	}

	// Empty allow-lists restrict nothing.
	if got := r.Eligible(&Detail{}); got != DropNone {
		t.Fatalf("unrestricted activity must pass, got %q", got)
	}
}

func TestProjectForcesListID(t *testing.T) {
	d := &Detail{
		ID:          0, // detail endpoint returned nothing useful
		Name:        "活动",
		Description: "第一行\n第二行",
		Tags:        []GroupRef{{ID: 1, Name: "志愿"}},
	}
	a := Project(d, 777, "社团", "摄影协会")

	if a.ID != 777 {
		t.Fatalf("list-endpoint ID is authoritative, got %v", a.ID)
	}
	if a.Description != "第一行 第二行" {
		t.Fatalf("description not normalized: %q", a.Description)
	}
	if a.SourceType != "社团" || a.SourceName != "摄影协会" {
		t.Fatalf("provenance lost: %q %q", a.SourceType, a.SourceName)
	}
	if len(a.Tags) != 1 || a.Tags[0] != "志愿" {
		t.Fatalf("tags = %v", a.Tags)
	}
}

func TestProjectLegacySingleTag(t *testing.T) {
	d := &Detail{Name: "活动", Tag: "竞赛"}
	a := Project(d, 1, "", "")
	if len(a.Tags) != 1 || a.Tags[0] != "竞赛" {
		t.Fatalf("legacy tag field should surface, got %v", a.Tags)
	}
}

func TestIDDecodesNumberAndString(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte("12345"), &id); err != nil || id != 12345 {
		t.Fatalf("numeric id: %v %v", id, err)
	}
	if err := json.Unmarshal([]byte(`"678"`), &id); err != nil || id != 678 {
		t.Fatalf("quoted id: %v %v", id, err)
	}
	if err := json.Unmarshal([]byte("null"), &id); err != nil || id != 0 {
		t.Fatalf("null id: %v %v", id, err)
	}
}

func TestScalarDecodesStringAndNumber(t *testing.T) {
	var s Scalar
	if err := json.Unmarshal([]byte(`"2.0"`), &s); err != nil || s != "2.0" {
		t.Fatalf("string scalar: %q %v", s, err)
	}
	if err := json.Unmarshal([]byte("10"), &s); err != nil || s != "10" {
		t.Fatalf("number scalar: %q %v", s, err)
	}
	if (Scalar("")).Display() != "-" {
		t.Fatalf("empty scalar should display \"-\"")
	}
}

func TestIsEndedStatus(t *testing.T) {
	for _, name := range []string{"已结束", "已完结", "完结待审核"} {
		if !IsEndedStatus(name) {
			t.Fatalf("%q should count as ended", name)
		}
	}
	if IsEndedStatus("报名中") {
		t.Fatalf("active status flagged as ended")
	}
}
