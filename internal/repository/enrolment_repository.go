package repository

import (
	"github.com/hollyoake/coursemark/internal/model"
	"gorm.io/gorm"
)

type EnrolmentRepository interface {
	FindByID(id uint) (*model.Enrolment, error)
	FindByCourseAndStudent(courseID, studentID uint) (*model.Enrolment, error)
	FindAllByCourse(courseID uint) ([]model.Enrolment, error)
	AddKudos(enrolmentID, studentID uint, amount int) error
}

type enrolmentRepository struct {
	db *gorm.DB
}

func NewEnrolmentRepository(db *gorm.DB) EnrolmentRepository {
	return &enrolmentRepository{db: db}
}

func (r *enrolmentRepository) FindByID(id uint) (*model.Enrolment, error) {
	var enrolment model.Enrolment
	if err := r.db.First(&enrolment, id).Error; err != nil {
		return nil, err
	}
	return &enrolment, nil
}

func (r *enrolmentRepository) FindByCourseAndStudent(courseID, studentID uint) (*model.Enrolment, error) {
	var enrolment model.Enrolment
	err := r.db.
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrolment).Error
	if err != nil {
		return nil, err
	}
	return &enrolment, nil
}

func (r *enrolmentRepository) FindAllByCourse(courseID uint) ([]model.Enrolment, error) {
	var enrolments []model.Enrolment
	err := r.db.
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&enrolments).Error
	return enrolments, err
}

// AddKudos credits both the enrolment's running counter and the student's
// overall balance in one transaction.
func (r *enrolmentRepository) AddKudos(enrolmentID, studentID uint, amount int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Enrolment{}).
			Where("id = ?", enrolmentID).
			UpdateColumn("kudos_earned", gorm.Expr("kudos_earned + ?", amount)).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", studentID).
			UpdateColumn("kudos", gorm.Expr("kudos + ?", amount)).Error
	})
}
