// Package meeting proposes follow-up meetings for a creative brief and
// derives action items from their agendas.
package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hyperifyio/gobrief/internal/llm"
)

// ErrNoTeam is returned when there is nobody to invite.
var ErrNoTeam = errors.New("team roster is empty")

// DefaultLinkBase prefixes generated meeting links.
const DefaultLinkBase = "https://teams.microsoft.com/l/meetup-join/"

const systemPrompt = "You plan project meetings for a marketing team. Reply with JSON only."

// Analysis is the model's reading of the brief.
type Analysis struct {
	Urgency         string   `json:"urgency" validate:"omitempty,oneof=high medium low"`
	Complexity      string   `json:"complexity" validate:"omitempty,oneof=high medium low"`
	KeyRequirements []string `json:"key_requirements"`
}

// Meeting is one scheduled meeting with its resolved attendees.
type Meeting struct {
	Title               string    `json:"title"`
	Attendees           []string  `json:"attendees"`
	AttendeeNames       []string  `json:"attendee_names"`
	AttendeeRoles       []string  `json:"attendee_roles"`
	AttendeeDepartments []string  `json:"attendee_departments"`
	SuggestedTime       time.Time `json:"suggested_time"`
	DurationMinutes     int       `json:"duration_minutes"`
	TeamsLink           string    `json:"teams_link"`
	Agenda              string    `json:"agenda"`
	MeetingType         string    `json:"meeting_type"`
	Priority            string    `json:"priority"`
}

// Plan is the scheduler output. Fallback is set when the model could not be
// used and a single kickoff meeting was substituted.
type Plan struct {
	Analysis Analysis  `json:"analysis"`
	Meetings []Meeting `json:"meetings"`
	Fallback bool      `json:"fallback"`
}

type proposal struct {
	Type            string   `json:"type" validate:"required"`
	Priority        string   `json:"priority" validate:"omitempty,oneof=high medium low"`
	AttendeeIndices []int    `json:"attendee_indices" validate:"required,min=1"`
	Title           string   `json:"title" validate:"required"`
	AgendaBullets   []string `json:"agenda_bullets" validate:"dive,required"`
	DurationMinutes int      `json:"duration_minutes" validate:"gte=0,lte=480"`
	Timing          string   `json:"timing"`
}

type proposalSet struct {
	Analysis Analysis   `json:"project_analysis"`
	Meetings []proposal `json:"meetings" validate:"required,min=1,dive"`
}

// Scheduler turns a brief and a roster into a Plan with one oracle call.
type Scheduler struct {
	Oracle llm.Oracle
	// Now defaults to time.Now.
	Now func() time.Time
	// LinkBase defaults to DefaultLinkBase.
	LinkBase string
}

var validate = validator.New()

// NewScheduler returns a Scheduler bound to o.
func NewScheduler(o llm.Oracle) *Scheduler {
	return &Scheduler{Oracle: o, Now: time.Now, LinkBase: DefaultLinkBase}
}

// Schedule proposes meetings for brief. Oracle failures and unusable
// answers are logged and replaced by the fallback kickoff plan; only an
// empty team is an error.
func (s *Scheduler) Schedule(ctx context.Context, brief string, team []TeamMember) (Plan, error) {
	if len(team) == 0 {
		return Plan{}, ErrNoTeam
	}
	if s.Oracle == nil {
		log.Warn().Msg("meeting oracle not configured; using fallback plan")
		return s.fallback(team), nil
	}
	raw, err := s.Oracle.Complete(ctx, systemPrompt, buildPrompt(brief, team), llm.Options{Temperature: 0.3, MaxTokens: 1500})
	if err != nil {
		log.Warn().Err(err).Msg("meeting scheduling failed; using fallback plan")
		return s.fallback(team), nil
	}
	set, err := parse(raw)
	if err != nil {
		log.Warn().Err(err).Msg("meeting response unusable; using fallback plan")
		return s.fallback(team), nil
	}
	plan := Plan{Analysis: set.Analysis}
	for _, p := range set.Meetings {
		members := lo.FilterMap(p.AttendeeIndices, func(i int, _ int) (TeamMember, bool) {
			if i < 0 || i >= len(team) {
				return TeamMember{}, false
			}
			return team[i], true
		})
		members = lo.UniqBy(members, func(m TeamMember) string { return m.Email })
		if len(members) == 0 {
			log.Debug().Str("title", p.Title).Msg("dropping meeting without valid attendees")
			continue
		}
		duration := p.DurationMinutes
		if duration == 0 {
			duration = 60
		}
		plan.Meetings = append(plan.Meetings, s.newMeeting(p.Title, members, p.Timing, duration,
			formatAgenda(p.AgendaBullets), p.Type, lo.CoalesceOrEmpty(p.Priority, "medium")))
	}
	if len(plan.Meetings) == 0 {
		log.Warn().Msg("no meeting had valid attendees; using fallback plan")
		return s.fallback(team), nil
	}
	return plan, nil
}

func parse(raw string) (proposalSet, error) {
	var set proposalSet
	body := stripFences(raw)
	if body == "" {
		return set, errors.New("empty response")
	}
	if err := json.Unmarshal([]byte(body), &set); err != nil {
		return set, fmt.Errorf("decode meetings: %w", err)
	}
	if err := validate.Struct(set); err != nil {
		return set, fmt.Errorf("validate meetings: %w", err)
	}
	return set, nil
}

// stripFences returns the outermost JSON object in s, tolerating Markdown
// code fences and chatter around it.
func stripFences(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func (s *Scheduler) fallback(team []TeamMember) Plan {
	members := team
	if len(members) > 3 {
		members = members[:3]
	}
	agenda := formatAgenda([]string{"Review project requirements", "Discuss timeline", "Assign responsibilities"})
	return Plan{
		Meetings: []Meeting{s.newMeeting("Project Kickoff Meeting", members, "2_days", 60, agenda, "kickoff", "medium")},
		Fallback: true,
	}
}

func (s *Scheduler) newMeeting(title string, members []TeamMember, timing string, duration int, agenda, kind, priority string) Meeting {
	return Meeting{
		Title:               title,
		Attendees:           lo.Map(members, func(m TeamMember, _ int) string { return m.Email }),
		AttendeeNames:       lo.Map(members, func(m TeamMember, _ int) string { return m.Name }),
		AttendeeRoles:       lo.Map(members, func(m TeamMember, _ int) string { return m.Role }),
		AttendeeDepartments: lo.Map(members, func(m TeamMember, _ int) string { return m.Department }),
		SuggestedTime:       SuggestedTime(s.now(), timing),
		DurationMinutes:     duration,
		TeamsLink:           s.link(),
		Agenda:              agenda,
		MeetingType:         kind,
		Priority:            priority,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scheduler) link() string {
	base := s.LinkBase
	if base == "" {
		base = DefaultLinkBase
	}
	return base + uuid.NewString()[:12]
}

var timingDays = map[string]int{"asap": 1, "2_days": 2, "1_week": 7}

// SuggestedTime is 10:00 on the day of now, moved forward by the timing
// offset. Unknown timings wait three days.
func SuggestedTime(now time.Time, timing string) time.Time {
	days, ok := timingDays[timing]
	if !ok {
		days = 3
	}
	base := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location())
	return base.AddDate(0, 0, days)
}

func formatAgenda(bullets []string) string {
	return strings.Join(lo.Map(bullets, func(b string, _ int) string { return "• " + strings.TrimSpace(b) }), "\n")
}

func buildPrompt(brief string, team []TeamMember) string {
	var sb strings.Builder
	sb.WriteString("Analyze this brief and generate a complete meeting schedule. ")
	sb.WriteString("Choose attendees from the available team based on how relevant their role and department are to the brief.\n\n")
	sb.WriteString("BRIEF:\n")
	sb.WriteString(brief)
	sb.WriteString("\n\nAVAILABLE TEAM:\n")
	sb.WriteString(summarizeTeam(team))
	sb.WriteString(`

Respond with JSON of this exact structure:
{
  "project_analysis": {"urgency": "high|medium|low", "complexity": "high|medium|low", "key_requirements": ["brand_work"]},
  "meetings": [
    {"type": "kickoff|creative_review|approval|status_update", "priority": "high|medium|low",
     "attendee_indices": [0, 1], "title": "Meeting Title", "agenda_bullets": ["Point 1", "Point 2"],
     "duration_minutes": 60, "timing": "asap|2_days|1_week"}
  ]
}

Rules:
- Select 2-5 meetings based on brief complexity
- Use attendee indices from the team list
- Keep agendas focused (3-5 bullets)`)
	return sb.String()
}
