package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrolment joins a student to a course and owns that student's attempts,
// submissions and earned kudos. Attempt and submission collections are
// append-only.
type Enrolment struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	CourseID    uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_course_student"`
	Course      Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	StudentID   uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_course_student"`
	Student     User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	KudosEarned int    `json:"kudos_earned" gorm:"default:0"`

	Attempts    []QuizAttempt          `json:"attempts,omitempty" gorm:"foreignKey:EnrolmentID"`
	Submissions []AssignmentSubmission `json:"submissions,omitempty" gorm:"foreignKey:EnrolmentID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
