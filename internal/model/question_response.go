package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionResponse holds one answer within an attempt. Exactly one of
// {ChoiceIDs, Answer} is populated, matching the parent question's type.
// Choice responses are marked at submission time; open responses stay
// unmarked until an admin grades them.
type QuestionResponse struct {
	ID            uint                      `gorm:"primarykey" json:"id"`
	QuizAttemptID uint                      `json:"quiz_attempt_id" gorm:"not null;index"`
	QuestionID    uint                      `json:"question_id" gorm:"not null;index"`
	Question      Question                  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Marked        bool                      `json:"marked" gorm:"default:false"`
	Mark          int                       `json:"mark" gorm:"not null;default:0"`
	Answer        *string                   `json:"answer,omitempty" gorm:"type:text"`
	ChoiceIDs     datatypes.JSONSlice[uint] `json:"choice_ids,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
