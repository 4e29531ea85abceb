package dto

import "time"

// ChoiceViewDTO is the student-facing view of a choice; the correct flag is
// deliberately absent.
type ChoiceViewDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionViewDTO struct {
	ID          uint            `json:"id"`
	Text        string          `json:"text"`
	Type        string          `json:"type"`
	Marks       int             `json:"marks"`
	Tag         string          `json:"tag"`
	OrderInQuiz int             `json:"order_in_quiz"`
	Choices     []ChoiceViewDTO `json:"choices,omitempty"`
}

// QuizStartDTO is the read-only projection returned when a student starts a
// quiz. Starting creates no record.
type QuizStartDTO struct {
	QuizID      uint              `json:"quiz_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	MaxMarks    int               `json:"max_marks"`
	CloseAt     time.Time         `json:"close_at"`
	Questions   []QuestionViewDTO `json:"questions"`
}

// ResponseSubmitDTO carries one answer in a quiz submission. Exactly one of
// Answer and ChoiceIDs must be populated, matching the question type.
type ResponseSubmitDTO struct {
	QuestionID uint    `json:"question_id" binding:"required"`
	Answer     *string `json:"answer,omitempty"`
	ChoiceIDs  []uint  `json:"choice_ids,omitempty"`
}

type QuizSubmissionDTO struct {
	Responses []ResponseSubmitDTO `json:"responses" binding:"required,dive"`
}

type ResponseDetailDTO struct {
	ID           uint    `json:"id"`
	QuestionID   uint    `json:"question_id"`
	QuestionText string  `json:"question_text"`
	Type         string  `json:"type"`
	Marks        int     `json:"marks"`
	Marked       bool    `json:"marked"`
	Mark         *int    `json:"mark,omitempty"` // withheld until the attempt is revealable
	Answer       *string `json:"answer,omitempty"`
	ChoiceIDs    []uint  `json:"choice_ids,omitempty"`
}

type AttemptDetailDTO struct {
	ID          uint                `json:"id"`
	QuizID      uint                `json:"quiz_id"`
	QuizTitle   string              `json:"quiz_title"`
	MaxMarks    int                 `json:"max_marks"`
	Mark        *int                `json:"mark,omitempty"` // withheld until the attempt is revealable
	SubmittedAt time.Time           `json:"submitted_at"`
	Responses   []ResponseDetailDTO `json:"responses"`
}

// AttemptRefDTO reports whether an attempt exists for a (student, quiz) pair.
type AttemptRefDTO struct {
	AttemptID *uint `json:"attempt_id,omitempty"`
}
