package survey

import (
	types "github.com/yungbote/survey-backend/internal/domain"
)

// preferenceFields are checked independently. A response naming the same system in both
// counts twice for it; validated forms only ever carry one of the two.
var preferenceFields = []string{types.FieldMostEffective, types.FieldMostImpactful}

// Aggregate recomputes the summary of set from scratch. Order of responses does not matter.
func Aggregate(set types.ResponseSet) types.Summary {
	sum := types.NewSummary()
	sum.TotalStudents = len(set.Students)
	sum.TotalProfessors = len(set.Professors)
	for _, seq := range [][]types.Response{set.Students, set.Professors} {
		for i := range seq {
			countPreferences(sum.Ranking, seq[i].Fields)
		}
	}
	return sum
}

func countPreferences(ranking map[types.Category]int, fields types.Fields) {
	for _, key := range preferenceFields {
		label, ok := fields.String(key)
		if !ok {
			continue
		}
		if c, ok := types.CategoryForLabel(label); ok {
			ranking[c]++
		}
	}
}

// Matches reports whether summary equals a fresh recomputation over set.
func Matches(set types.ResponseSet, summary types.Summary) bool {
	return Aggregate(set).Equal(summary)
}
