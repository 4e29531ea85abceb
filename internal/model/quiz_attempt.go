package model

import (
	"time"

	"gorm.io/gorm"
)

// QuizAttempt is the single, terminal record of a student's answers to one
// quiz. The composite unique index rejects a second attempt for the same
// (enrolment, quiz) pair at the storage layer, which also settles the
// concurrent double-submit race.
type QuizAttempt struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	EnrolmentID uint      `json:"enrolment_id" gorm:"not null;uniqueIndex:idx_enrolment_quiz"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_enrolment_quiz"`
	Quiz        Quiz      `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Mark        int       `json:"mark" gorm:"not null;default:0"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`

	Responses []QuestionResponse `json:"responses,omitempty" gorm:"foreignKey:QuizAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
