package survey

import "maps"

// Category is one of the three e-learning systems respondents rank.
type Category string

const (
	CategoryAttendance Category = "attendance_system"
	CategoryLecture    Category = "lecture_system"
	CategoryExam       Category = "exam_system"
)

// Preference fields carrying a category label: the first on student forms, the second on
// professor forms.
const (
	FieldMostEffective = "most_effective"
	FieldMostImpactful = "most_impactful"
)

var Categories = []Category{CategoryAttendance, CategoryLecture, CategoryExam}

var categoryLabels = map[Category]string{
	CategoryAttendance: "نظام التحضير الآلي",
	CategoryLecture:    "نظام إدارة المحاضرات",
	CategoryExam:       "نظام مراقبة الاختبارات",
}

func (c Category) Label() string { return categoryLabels[c] }

// CategoryForLabel matches label exactly against the fixed form options.
func CategoryForLabel(label string) (Category, bool) {
	for _, c := range Categories {
		if categoryLabels[c] == label {
			return c, true
		}
	}
	return "", false
}

type Summary struct {
	TotalStudents   int              `json:"total_students"`
	TotalProfessors int              `json:"total_professors"`
	Ranking         map[Category]int `json:"systems_ranking"`
}

// NewSummary returns a zeroed summary with every category present.
func NewSummary() Summary {
	ranking := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		ranking[c] = 0
	}
	return Summary{Ranking: ranking}
}

func (s Summary) Clone() Summary {
	out := s
	out.Ranking = maps.Clone(s.Ranking)
	return out
}

// Equal compares by value; key order of the ranking is irrelevant.
func (s Summary) Equal(o Summary) bool {
	return s.TotalStudents == o.TotalStudents &&
		s.TotalProfessors == o.TotalProfessors &&
		maps.Equal(s.Ranking, o.Ranking)
}
