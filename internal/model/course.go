package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is read-only from the attempt engine's perspective; the engine only
// consumes its tag vocabulary and kudos configuration.
type Course struct {
	ID          uint                        `gorm:"primarykey" json:"id"`
	Title       string                      `json:"title" gorm:"not null"`
	Description string                      `json:"description,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags,omitempty"`

	// Kudos reward amounts applied when assessments complete.
	KudosQuizCompletion int `json:"kudos_quiz_completion" gorm:"default:10"`
	KudosTaskCompletion int `json:"kudos_task_completion" gorm:"default:5"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
