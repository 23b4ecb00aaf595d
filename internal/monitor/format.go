package monitor

import (
	"fmt"
	"strings"

	"pumon/internal/activity"
)

// Render builds the chat-markup body for one activity.
//
// detailed=true emits the full card (description, windows, organizer, status,
// attachment); detailed=false emits the abbreviated card used for throttled
// large activities.
func Render(a *activity.Activity, detailed bool) string {
	name := a.Name
	if name == "" {
		name = "无标题"
	}
	source := ""
	if a.SourceType != "" {
		source = "【" + a.SourceType + "】"
	}
	titleLine := "### " + source + name

	joinInfo := fmt.Sprintf("上限 %d | 已报名 %d | 已签到 %d",
		a.AllowUserCount, a.JoinUserCount, a.SignInCount)
	creditInfo := a.Credit.Display() + " / " + a.PuAmount.Display()

	if !detailed {
		return titleLine + "\n" +
			"> " + shortDesc(a.Description) + "\n" +
			"*报名人数：* " + joinInfo + "\n" +
			"*学分 / PU银豆：* " + creditInfo
	}

	desc := a.Description
	if desc == "" {
		desc = "无详细介绍"
	}

	var b strings.Builder
	b.WriteString(titleLine)
	b.WriteString("\n")
	b.WriteString(desc)
	b.WriteString("\n\n")
	b.WriteString("*报名时间：* " + a.JoinStart.Display() + " ~ " + a.JoinEnd.Display() + "\n")
	b.WriteString("*报名人数：* " + joinInfo + "\n")
	b.WriteString("*活动时间：* " + a.Start.Display() + " ~ " + a.End.Display() + "\n")
	b.WriteString("*状态：* " + displayOr(a.StatusName) + "\n")
	b.WriteString("*主办/所属：* " + organizer(a) + "\n")
	b.WriteString("*学分 / PU银豆：* " + creditInfo)
	if line := attachment(a); line != "" {
		b.WriteString("\n" + line)
	}
	return b.String()
}

// shortDesc truncates to the first 10 characters (runes: descriptions are
// mostly CJK) with an ellipsis marker.
func shortDesc(desc string) string {
	if desc == "" {
		return "无介绍......"
	}
	r := []rune(desc)
	if len(r) > 10 {
		r = r[:10]
	}
	return string(r) + "......"
}

// organizer prefers restricting-group names, then tags, appending the
// creator name when present.
func organizer(a *activity.Activity) string {
	var names []string
	for _, t := range a.AllowTribe {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	group := strings.Join(names, ", ")
	if group == "" {
		group = strings.Join(a.Tags, ", ")
	}

	switch {
	case group != "" && a.CreatorName != "":
		return group + " / " + a.CreatorName
	case group != "":
		return group
	case a.CreatorName != "":
		return a.CreatorName
	default:
		return "-"
	}
}

func attachment(a *activity.Activity) string {
	if a.AttachTitle == "" && a.AttachURL == "" {
		return ""
	}
	title := a.AttachTitle
	if title == "" {
		title = "附件下载"
	}
	if a.AttachURL == "" {
		return "*附件：* " + title
	}
	return fmt.Sprintf("*附件：* [%s](%s)", title, a.AttachURL)
}

func displayOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
