package dto

// TagSummaryDTO counts, per course tag, how often a student succeeded at or
// needs improvement on tagged questions and assignments.
type TagSummaryDTO struct {
	SuccessTags     map[string]int `json:"success_tags"`
	ImprovementTags map[string]int `json:"improvement_tags"`
}

type QuizGradeDTO struct {
	QuizID       uint     `json:"quiz_id"`
	Title        string   `json:"title"`
	MaxMarks     int      `json:"max_marks"`
	MarksAwarded *float64 `json:"marks_awarded,omitempty"` // present only once revealable
}

type AssignmentGradeDTO struct {
	AssignmentID   uint    `json:"assignment_id"`
	Title          string  `json:"title"`
	MarksAvailable int     `json:"marks_available"`
	MarksAwarded   *int    `json:"marks_awarded,omitempty"` // present once graded, no deadline gate
	Comment        *string `json:"comment,omitempty"`
}

type GradeSummaryDTO struct {
	Quizzes     []QuizGradeDTO       `json:"quizzes"`
	Assignments []AssignmentGradeDTO `json:"assignments"`
}

type IncorrectChoiceDTO struct {
	ID      uint   `json:"id"`
	Text    string `json:"text"`
	Chosen  bool   `json:"chosen"`
	Correct *bool  `json:"correct,omitempty"` // revealed only after the quiz closes
}

type IncorrectQuestionDTO struct {
	QuestionID  uint                 `json:"question_id"`
	Text        string               `json:"text"`
	Tag         string               `json:"tag"`
	Type        string               `json:"type"`
	Marks       int                  `json:"marks"`
	MarkAwarded int                  `json:"mark_awarded"`
	Choices     []IncorrectChoiceDTO `json:"choices,omitempty"`
}

type StudentSummaryRowDTO struct {
	StudentID   uint            `json:"student_id"`
	StudentName string          `json:"student_name"`
	Tags        TagSummaryDTO   `json:"tags"`
	Grades      GradeSummaryDTO `json:"grades"`
}

// CommonlyMissedDTO is one entry of the course-wide missed-question map,
// counting how many students got the question wrong.
type CommonlyMissedDTO struct {
	QuestionID uint                 `json:"question_id"`
	Text       string               `json:"text"`
	Tag        string               `json:"tag"`
	Count      int                  `json:"count"`
	Choices    []IncorrectChoiceDTO `json:"choices,omitempty"`
}

type CourseSummaryDTO struct {
	CourseID       uint                   `json:"course_id"`
	TagTotals      TagSummaryDTO          `json:"tag_totals"`
	Students       []StudentSummaryRowDTO `json:"students"`
	CommonlyMissed []CommonlyMissedDTO    `json:"commonly_missed"`
}
