package model

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CourseID    uint       `json:"course_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	OpenAt      time.Time  `json:"open_at" gorm:"not null"`
	CloseAt     time.Time  `json:"close_at" gorm:"not null"`
	MaxMarks    int        `json:"max_marks" gorm:"not null"`
	TaskID      *uint      `json:"task_id,omitempty"` // linked workload task, if any
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
