package meeting

import (
	"fmt"
	"strings"
)

// ActionItem is one agenda bullet attributed to its meeting.
type ActionItem struct {
	Meeting string `json:"meeting"`
	Item    string `json:"item"`
}

// ActionItems flattens every meeting agenda into action items, in meeting
// order.
func ActionItems(plan Plan) []ActionItem {
	var out []ActionItem
	for _, m := range plan.Meetings {
		for _, line := range strings.Split(m.Agenda, "\n") {
			item := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
			if item == "" {
				continue
			}
			out = append(out, ActionItem{Meeting: m.Title, Item: item})
		}
	}
	return out
}

// FormatPlan renders plan as plain text with a title line and header lines
// ending in ':', ready for the layout engine.
func FormatPlan(plan Plan) string {
	var sb strings.Builder
	sb.WriteString("Meeting Plan\n\n")
	a := plan.Analysis
	if a.Urgency != "" || a.Complexity != "" || len(a.KeyRequirements) > 0 {
		sb.WriteString("Project Analysis:\n")
		if a.Urgency != "" {
			fmt.Fprintf(&sb, "Urgency: %s\n", a.Urgency)
		}
		if a.Complexity != "" {
			fmt.Fprintf(&sb, "Complexity: %s\n", a.Complexity)
		}
		if len(a.KeyRequirements) > 0 {
			fmt.Fprintf(&sb, "Key requirements: %s\n", strings.Join(a.KeyRequirements, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Meetings:\n")
	for i, m := range plan.Meetings {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%d. %s:\n", i+1, m.Title)
		fmt.Fprintf(&sb, "When: %s (%d min), %s priority\n", m.SuggestedTime.Format("Mon 2 Jan 2006 15:04"), m.DurationMinutes, m.Priority)
		attendees := make([]string, len(m.AttendeeNames))
		for j, name := range m.AttendeeNames {
			attendees[j] = name
			if j < len(m.AttendeeRoles) && m.AttendeeRoles[j] != "" {
				attendees[j] += " (" + m.AttendeeRoles[j] + ")"
			}
		}
		fmt.Fprintf(&sb, "Attendees: %s\n", strings.Join(attendees, ", "))
		fmt.Fprintf(&sb, "Link: %s\n", m.TeamsLink)
		if m.Agenda != "" {
			sb.WriteString(m.Agenda)
			sb.WriteString("\n")
		}
	}
	if items := ActionItems(plan); len(items) > 0 {
		sb.WriteString("\nAction Items:\n")
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s (%s)\n", it.Item, it.Meeting)
		}
	}
	return sb.String()
}
