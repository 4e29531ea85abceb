package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssignmentSubmission is one uploaded answer to an assignment. A student may
// submit more than once; the most recent submission is the authoritative one.
// Mark presence is the "graded" flag.
type AssignmentSubmission struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	EnrolmentID  uint       `json:"enrolment_id" gorm:"not null;index"`
	AssignmentID uint       `json:"assignment_id" gorm:"not null;index"`
	Assignment   Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	Title        string     `json:"title" gorm:"not null"`
	FileHandle   string     `json:"file_handle" gorm:"not null"` // opaque blob-store key

	Mark            *int                        `json:"mark,omitempty"`
	Comment         *string                     `json:"comment,omitempty" gorm:"type:text"`
	SuccessTags     datatypes.JSONSlice[string] `json:"success_tags,omitempty"`
	ImprovementTags datatypes.JSONSlice[string] `json:"improvement_tags,omitempty"`

	SubmittedAt time.Time      `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Graded reports whether an admin has assigned a mark.
func (s *AssignmentSubmission) Graded() bool { return s.Mark != nil }
