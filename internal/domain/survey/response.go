package survey

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleProfessor
}

// Response is one submitted survey instance. ID and SubmittedAt are assigned by the store.
type Response struct {
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	SubmittedAt time.Time `json:"submitted_at"`
	Fields      Fields    `json:"fields"`
}

// ResponseSet keeps responses per role in insertion order.
type ResponseSet struct {
	Students   []Response `json:"students"`
	Professors []Response `json:"professors"`
}

func (s ResponseSet) Len() int {
	return len(s.Students) + len(s.Professors)
}

func (s ResponseSet) ByRole(role Role) []Response {
	switch role {
	case RoleStudent:
		return s.Students
	case RoleProfessor:
		return s.Professors
	default:
		return nil
	}
}

// Latest returns the most recently appended response for role.
func (s ResponseSet) Latest(role Role) (Response, bool) {
	seq := s.ByRole(role)
	if len(seq) == 0 {
		return Response{}, false
	}
	return seq[len(seq)-1], true
}

// LatestSubmittedAt is the newest timestamp across both roles, zero when empty.
func (s ResponseSet) LatestSubmittedAt() time.Time {
	var latest time.Time
	for _, role := range []Role{RoleStudent, RoleProfessor} {
		if r, ok := s.Latest(role); ok && r.SubmittedAt.After(latest) {
			latest = r.SubmittedAt
		}
	}
	return latest
}

// With returns a copy of the set with r appended to its role's sequence.
func (s ResponseSet) With(r Response) ResponseSet {
	out := ResponseSet{
		Students:   append(make([]Response, 0, len(s.Students)+1), s.Students...),
		Professors: append(make([]Response, 0, len(s.Professors)+1), s.Professors...),
	}
	switch r.Role {
	case RoleStudent:
		out.Students = append(out.Students, r)
	case RoleProfessor:
		out.Professors = append(out.Professors, r)
	}
	return out
}

// Document is the single persisted unit: all responses plus their cached summary.
type Document struct {
	ResponseSet
	Summary Summary `json:"summary"`
}

func EmptyDocument() Document {
	return Document{
		ResponseSet: ResponseSet{Students: []Response{}, Professors: []Response{}},
		Summary:     NewSummary(),
	}
}

// Stats is the quick read-only projection served to dashboards.
type Stats struct {
	TotalParticipants int              `json:"totalParticipants"`
	Students          int              `json:"students"`
	Professors        int              `json:"professors"`
	SystemsRanking    map[Category]int `json:"systemsRanking"`
	LatestStudent     *Response        `json:"latestStudent"`
	LatestProfessor   *Response        `json:"latestProfessor"`
}

type SubmissionEvent struct {
	Type        string    `json:"type"`
	ID          uuid.UUID `json:"id"`
	Role        Role      `json:"role"`
	SubmittedAt time.Time `json:"submitted_at"`
	Stats       *Stats    `json:"stats,omitempty"`
}

const EventSurveySubmitted = "survey.submitted"
