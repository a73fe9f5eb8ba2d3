package domain

import "github.com/yungbote/survey-backend/internal/domain/survey"

type (
	Role            = survey.Role
	Value           = survey.Value
	ValueKind       = survey.ValueKind
	Fields          = survey.Fields
	Response        = survey.Response
	ResponseSet     = survey.ResponseSet
	Document        = survey.Document
	Summary         = survey.Summary
	Category        = survey.Category
	Stats           = survey.Stats
	SubmissionEvent = survey.SubmissionEvent
)

const (
	KindInvalid = survey.KindInvalid

	RoleStudent   = survey.RoleStudent
	RoleProfessor = survey.RoleProfessor

	CategoryAttendance = survey.CategoryAttendance
	CategoryLecture    = survey.CategoryLecture
	CategoryExam       = survey.CategoryExam

	FieldMostEffective = survey.FieldMostEffective
	FieldMostImpactful = survey.FieldMostImpactful

	EventSurveySubmitted = survey.EventSurveySubmitted
)

var (
	Categories          = survey.Categories
	ErrUnsupportedValue = survey.ErrUnsupportedValue

	CategoryForLabel = survey.CategoryForLabel
	NewSummary       = survey.NewSummary
	EmptyDocument    = survey.EmptyDocument
	StringValue      = survey.StringValue
	NumberValue      = survey.NumberValue
	BoolValue        = survey.BoolValue
)
