package survey

import (
	"slices"
	"testing"

	types "github.com/yungbote/survey-backend/internal/domain"
)

func response(role types.Role, fields types.Fields) types.Response {
	return types.Response{Role: role, Fields: fields}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(types.ResponseSet{})
	if !got.Equal(types.NewSummary()) {
		t.Fatalf("expected zeroed summary, got %+v", got)
	}
	if len(got.Ranking) != len(types.Categories) {
		t.Fatalf("expected every category present, got %v", got.Ranking)
	}
}

func TestAggregateCountsBothPreferenceFields(t *testing.T) {
	set := types.ResponseSet{
		Students: []types.Response{
			response(types.RoleStudent, types.Fields{types.FieldMostEffective: types.StringValue(types.CategoryExam.Label())}),
			response(types.RoleStudent, types.Fields{types.FieldMostEffective: types.StringValue(types.CategoryLecture.Label())}),
		},
		Professors: []types.Response{
			response(types.RoleProfessor, types.Fields{types.FieldMostImpactful: types.StringValue(types.CategoryExam.Label())}),
		},
	}
	got := Aggregate(set)
	if got.TotalStudents != 2 || got.TotalProfessors != 1 {
		t.Fatalf("totals: got=%d/%d", got.TotalStudents, got.TotalProfessors)
	}
	want := map[types.Category]int{
		types.CategoryAttendance: 0,
		types.CategoryLecture:    1,
		types.CategoryExam:       2,
	}
	for c, n := range want {
		if got.Ranking[c] != n {
			t.Fatalf("%s: got=%d want=%d", c, got.Ranking[c], n)
		}
	}
}

func TestAggregateIgnoresUnrecognizedValues(t *testing.T) {
	set := types.ResponseSet{Students: []types.Response{
		response(types.RoleStudent, types.Fields{types.FieldMostEffective: types.StringValue("نظام آخر")}),
		response(types.RoleStudent, types.Fields{types.FieldMostEffective: types.NumberValue(1)}),
		response(types.RoleStudent, types.Fields{types.FieldMostEffective: types.BoolValue(true)}),
		response(types.RoleStudent, types.Fields{"other": types.StringValue(types.CategoryExam.Label())}),
		response(types.RoleStudent, nil),
	}}
	got := Aggregate(set)
	if got.TotalStudents != 5 {
		t.Fatalf("total: got=%d", got.TotalStudents)
	}
	for c, n := range got.Ranking {
		if n != 0 {
			t.Fatalf("%s: expected 0, got %d", c, n)
		}
	}
}

// Observed behaviour kept on purpose: the two preference fields are counted independently.
func TestAggregateSameCategoryInBothFieldsCountsTwice(t *testing.T) {
	label := types.StringValue(types.CategoryAttendance.Label())
	set := types.ResponseSet{Students: []types.Response{
		response(types.RoleStudent, types.Fields{
			types.FieldMostEffective: label,
			types.FieldMostImpactful: label,
		}),
	}}
	got := Aggregate(set)
	if got.Ranking[types.CategoryAttendance] != 2 {
		t.Fatalf("expected double count, got %d", got.Ranking[types.CategoryAttendance])
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	var students []types.Response
	for i, c := range []types.Category{types.CategoryExam, types.CategoryAttendance, types.CategoryExam, types.CategoryLecture} {
		f := types.Fields{types.FieldMostEffective: types.StringValue(c.Label())}
		if i%2 == 0 {
			f[types.FieldMostImpactful] = types.StringValue(types.CategoryLecture.Label())
		}
		students = append(students, response(types.RoleStudent, f))
	}
	forward := Aggregate(types.ResponseSet{Students: students})
	reversed := slices.Clone(students)
	slices.Reverse(reversed)
	backward := Aggregate(types.ResponseSet{Students: reversed})
	if !forward.Equal(backward) {
		t.Fatalf("order changed result: %+v vs %+v", forward, backward)
	}
	if !Matches(types.ResponseSet{Students: reversed}, forward) {
		t.Fatalf("Matches disagreed with Aggregate")
	}
}
