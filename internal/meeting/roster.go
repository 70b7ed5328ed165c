package meeting

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// TeamMember is one person the scheduler may invite.
type TeamMember struct {
	Name        string   `yaml:"name" json:"name"`
	Email       string   `yaml:"email" json:"email"`
	Role        string   `yaml:"role" json:"role"`
	Department  string   `yaml:"department" json:"department"`
	Specialties []string `yaml:"specialties" json:"specialties"`
}

//go:embed default_team.yaml
var defaultTeam []byte

// DefaultRoster returns the built-in demo team used when no roster file is
// configured.
func DefaultRoster() []TeamMember {
	team, err := ParseRoster(defaultTeam)
	if err != nil {
		panic(err)
	}
	return team
}

type rosterFile struct {
	Team []TeamMember `yaml:"team"`
}

// LoadRoster reads a YAML roster of the form `team: [{name, email, ...}]`.
func LoadRoster(path string) ([]TeamMember, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(b)
}

// ParseRoster decodes roster YAML. Members without a name or email are
// rejected since they cannot be invited.
func ParseRoster(b []byte) ([]TeamMember, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	for i, m := range rf.Team {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" {
			return nil, fmt.Errorf("parse roster: member %d needs name and email", i)
		}
	}
	return rf.Team, nil
}

// ByDepartment returns members of the given department, ignoring case.
func ByDepartment(team []TeamMember, department string) []TeamMember {
	return lo.Filter(team, func(m TeamMember, _ int) bool {
		return strings.EqualFold(m.Department, department)
	})
}

// BySpecialty returns members listing the given specialty.
func BySpecialty(team []TeamMember, specialty string) []TeamMember {
	return lo.Filter(team, func(m TeamMember, _ int) bool {
		return lo.Contains(m.Specialties, specialty)
	})
}

var executiveMarkers = []string{"VP", "Chief", "Director"}

// Executives returns members whose role names a VP, Chief or Director.
func Executives(team []TeamMember) []TeamMember {
	return lo.Filter(team, func(m TeamMember, _ int) bool {
		return lo.SomeBy(executiveMarkers, func(s string) bool { return strings.Contains(m.Role, s) })
	})
}

func summarizeTeam(team []TeamMember) string {
	lines := lo.Map(team, func(m TeamMember, i int) string {
		specialties := "General"
		if len(m.Specialties) > 0 {
			specialties = strings.Join(m.Specialties, ", ")
		}
		return fmt.Sprintf("%d: %s - %s (%s) - %s", i, m.Name, m.Role, m.Department, specialties)
	})
	return strings.Join(lines, "\n")
}
