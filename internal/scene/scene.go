package scene

import (
	"strconv"
	"strings"
	"time"
)

// ScrimList is the root of a reveal: list metadata plus the ordered teams.
// Team order is slot order.
type ScrimList struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Date          string    `yaml:"date,omitempty"` // YYYY-MM-DD
	OrganizerName string    `yaml:"organizer_name,omitempty"`
	ScrimTime     string    `yaml:"scrim_time,omitempty"`
	Teams         []Team    `yaml:"teams"`
	CreatedAt     time.Time `yaml:"created_at,omitempty"`
}

// Team is one roster entry. ID must be unique within a list and stable
// across edits; the logo resolver keys on it.
type Team struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Logo    string       `yaml:"logo,omitempty"` // URL, data: URL or file path
	Members []TeamMember `yaml:"members,omitempty"`
}

type TeamMember struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// HasLogo reports whether the team references a logo source.
func (t Team) HasLogo() bool {
	return strings.TrimSpace(t.Logo) != ""
}

// VisibleMembers returns the members whose names are not blank.
func (t Team) VisibleMembers() []TeamMember {
	out := make([]TeamMember, 0, len(t.Members))
	for _, m := range t.Members {
		if strings.TrimSpace(m.Name) != "" {
			out = append(out, m)
		}
	}
	return out
}

// DisplayName is the uppercased team name, or "TEAM N" for a blank name
// where N is the 1-based slot number.
func (t Team) DisplayName(slot int) string {
	if t.Name == "" {
		return "TEAM " + strconv.Itoa(slot+1)
	}
	return strings.ToUpper(t.Name)
}

// Title is the uppercased list name with the "SCRIM LIST" fallback.
func (l *ScrimList) Title() string {
	if l == nil || l.Name == "" {
		return "SCRIM LIST"
	}
	return strings.ToUpper(l.Name)
}

func (l *ScrimList) HasOrganizer() bool { return l != nil && l.OrganizerName != "" }
func (l *ScrimList) HasTime() bool      { return l != nil && l.ScrimTime != "" }
func (l *ScrimList) HasDate() bool      { return l != nil && l.Date != "" }

// FormattedDate renders Date as "Jan 2, 2006". Unparsable dates are
// returned unchanged.
func (l *ScrimList) FormattedDate() string {
	if !l.HasDate() {
		return ""
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(l.Date))
	if err != nil {
		return l.Date
	}
	return d.Format("Jan 2, 2006")
}

// Clone returns a deep copy so callers can hand a snapshot to the renderer
// while continuing to edit the original.
func (l *ScrimList) Clone() *ScrimList {
	if l == nil {
		return nil
	}
	c := *l
	c.Teams = make([]Team, len(l.Teams))
	for i, t := range l.Teams {
		t.Members = append([]TeamMember(nil), t.Members...)
		c.Teams[i] = t
	}
	return &c
}
