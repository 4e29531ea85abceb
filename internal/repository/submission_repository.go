package repository

import (
	"github.com/hollyoake/coursemark/internal/model"
	"gorm.io/gorm"
)

// UngradedSubmissionRow joins a pending submission with its author.
type UngradedSubmissionRow struct {
	Submission  model.AssignmentSubmission
	StudentID   uint
	StudentName string
}

type SubmissionRepository interface {
	Create(submission *model.AssignmentSubmission) error
	Update(submission *model.AssignmentSubmission) error
	FindByID(id uint) (*model.AssignmentSubmission, error)
	FindAllByEnrolment(enrolmentID uint) ([]model.AssignmentSubmission, error)
	FindUngradedByAssignment(assignmentID uint) ([]UngradedSubmissionRow, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(submission *model.AssignmentSubmission) error {
	return r.db.Create(submission).Error
}

func (r *submissionRepository) Update(submission *model.AssignmentSubmission) error {
	return r.db.Save(submission).Error
}

func (r *submissionRepository) FindByID(id uint) (*model.AssignmentSubmission, error) {
	var submission model.AssignmentSubmission
	if err := r.db.Preload("Assignment").First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindAllByEnrolment(enrolmentID uint) ([]model.AssignmentSubmission, error) {
	var submissions []model.AssignmentSubmission
	err := r.db.
		Preload("Assignment").
		Where("enrolment_id = ?", enrolmentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) FindUngradedByAssignment(assignmentID uint) ([]UngradedSubmissionRow, error) {
	var submissions []model.AssignmentSubmission
	err := r.db.
		Where("assignment_id = ? AND mark IS NULL", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	rows := make([]UngradedSubmissionRow, 0, len(submissions))
	for _, sub := range submissions {
		var enrolment model.Enrolment
		if err := r.db.Preload("Student").First(&enrolment, sub.EnrolmentID).Error; err != nil {
			return nil, err
		}
		rows = append(rows, UngradedSubmissionRow{
			Submission:  sub,
			StudentID:   enrolment.StudentID,
			StudentName: enrolment.Student.Name,
		})
	}
	return rows, nil
}
