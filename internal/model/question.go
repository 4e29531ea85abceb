package model

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeChoice QuestionType = "choice"
	QuestionTypeOpen   QuestionType = "open"
)

type Question struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	QuizID      uint         `json:"quiz_id" gorm:"not null;index"`
	Text        string       `json:"text" gorm:"type:text;not null"`
	Type        QuestionType `json:"type" gorm:"not null"`
	Marks       int          `json:"marks" gorm:"not null"`
	Tag         string       `json:"tag" gorm:"not null"` // drawn from the course tag vocabulary
	OrderInQuiz int          `json:"order_in_quiz" gorm:"not null"`
	Choices     []Choice     `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Choice struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null"`
	Correct    bool   `json:"correct" gorm:"default:false"` // hidden from students until the quiz closes

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
