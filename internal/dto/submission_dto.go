package dto

import "time"

type SubmissionDTO struct {
	ID              uint      `json:"id"`
	AssignmentID    uint      `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title,omitempty"`
	Title           string    `json:"title"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Mark            *int      `json:"mark,omitempty"`
	Comment         *string   `json:"comment,omitempty"`
	SuccessTags     []string  `json:"success_tags,omitempty"`
	ImprovementTags []string  `json:"improvement_tags,omitempty"`
}

type SubmissionDownloadDTO struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
