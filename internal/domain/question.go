package domain

import "sort"

type QuestionType string

const (
	QuestionShortText  QuestionType = "short_text"
	QuestionLongText   QuestionType = "long_text"
	QuestionEmail      QuestionType = "email"
	QuestionNumber     QuestionType = "number"
	QuestionDate       QuestionType = "date"
	QuestionTime       QuestionType = "time"
	QuestionSelect     QuestionType = "select"
	QuestionCheckbox   QuestionType = "checkbox"
	QuestionRadio      QuestionType = "radio"
	QuestionYesNo      QuestionType = "yes_no"
	QuestionFileUpload QuestionType = "file_upload"
)

// RequiresOptions reports whether the question type must carry a
// non-empty options list.
func (t QuestionType) RequiresOptions() bool {
	return t == QuestionSelect || t == QuestionCheckbox || t == QuestionRadio
}

// IsMultiValued reports whether answers are a list rather than a single
// string.
func (t QuestionType) IsMultiValued() bool {
	return t == QuestionCheckbox
}

// EventQuestion is a custom registration question attached to an event.
// The question set is fixed once the event is created.
type EventQuestion struct {
	ID          uint         `json:"id"`
	EventID     uint         `json:"event_id"`
	Label       string       `json:"label"`
	Type        QuestionType `json:"type"`
	IsRequired  bool         `json:"is_required"`
	Options     []string     `json:"options"`
	Placeholder string       `json:"placeholder"`
	SortOrder   int          `json:"sort_order"`
}

// SortQuestions orders questions by SortOrder for display.
func SortQuestions(questions []EventQuestion) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].SortOrder < questions[j].SortOrder
	})
}
