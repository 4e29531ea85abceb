package dto

import "time"

type GradeResponseDTO struct {
	Mark *int `json:"mark" binding:"required"`
}

type GradeSubmissionDTO struct {
	Mark            *int     `json:"mark" binding:"required"`
	Comment         *string  `json:"comment,omitempty"`
	SuccessTags     []string `json:"success_tags,omitempty"`
	ImprovementTags []string `json:"improvement_tags,omitempty"`
}

type UngradedResponseDTO struct {
	ResponseID  uint    `json:"response_id"`
	AttemptID   uint    `json:"attempt_id"`
	StudentID   uint    `json:"student_id"`
	StudentName string  `json:"student_name"`
	Answer      *string `json:"answer,omitempty"`
}

// UngradedQuestionGroupDTO groups pending responses by question so an admin
// grades all answers to one question together.
type UngradedQuestionGroupDTO struct {
	QuestionID   uint                  `json:"question_id"`
	QuestionText string                `json:"question_text"`
	Marks        int                   `json:"marks"`
	Tag          string                `json:"tag"`
	Responses    []UngradedResponseDTO `json:"responses"`
}

type UngradedSubmissionDTO struct {
	SubmissionID uint      `json:"submission_id"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name"`
	Title        string    `json:"title"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
