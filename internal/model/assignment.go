package model

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	CourseID       uint   `json:"course_id" gorm:"not null;index"`
	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description,omitempty"`
	MarksAvailable int    `json:"marks_available" gorm:"not null"`
	TaskID         *uint  `json:"task_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
