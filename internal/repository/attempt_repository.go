package repository

import (
	"errors"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/model"
	"gorm.io/gorm"
)

// UngradedResponseRow is the flattened shape of one pending response joined
// with the student who wrote it.
type UngradedResponseRow struct {
	Response    model.QuestionResponse
	AttemptID   uint
	StudentID   uint
	StudentName string
}

type AttemptRepository interface {
	// Create persists the attempt together with all of its responses in one
	// insert. A duplicate (enrolment, quiz) pair comes back as AlreadyAttempted.
	Create(attempt *model.QuizAttempt) error
	// FindByEnrolmentAndQuiz returns (nil, nil) when no attempt exists.
	FindByEnrolmentAndQuiz(enrolmentID, quizID uint) (*model.QuizAttempt, error)
	FindByIDWithDetails(id uint) (*model.QuizAttempt, error)
	FindAllByEnrolment(enrolmentID uint) ([]model.QuizAttempt, error)
	FindUngradedByQuiz(quizID uint) ([]UngradedResponseRow, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.QuizAttempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.KindAlreadyAttempted,
				"an attempt already exists for enrolment %d and quiz %d", attempt.EnrolmentID, attempt.QuizID)
		}
		return err
	}
	return nil
}

func (r *attemptRepository) FindByEnrolmentAndQuiz(enrolmentID, quizID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.db.
		Where("enrolment_id = ? AND quiz_id = ?", enrolmentID, quizID).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.db.
		Preload("Quiz").
		Preload("Responses.Question.Choices").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByEnrolment(enrolmentID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.
		Preload("Quiz").
		Preload("Responses.Question.Choices").
		Where("enrolment_id = ?", enrolmentID).
		Order("submitted_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindUngradedByQuiz(quizID uint) ([]UngradedResponseRow, error) {
	var responses []model.QuestionResponse
	err := r.db.
		Preload("Question").
		Joins("JOIN quiz_attempts ON quiz_attempts.id = question_responses.quiz_attempt_id").
		Where("quiz_attempts.quiz_id = ? AND question_responses.marked = ?", quizID, false).
		Find(&responses).Error
	if err != nil {
		return nil, err
	}

	rows := make([]UngradedResponseRow, 0, len(responses))
	for _, resp := range responses {
		var attempt model.QuizAttempt
		if err := r.db.First(&attempt, resp.QuizAttemptID).Error; err != nil {
			return nil, err
		}
		var enrolment model.Enrolment
		if err := r.db.Preload("Student").First(&enrolment, attempt.EnrolmentID).Error; err != nil {
			return nil, err
		}
		rows = append(rows, UngradedResponseRow{
			Response:    resp,
			AttemptID:   attempt.ID,
			StudentID:   enrolment.StudentID,
			StudentName: enrolment.Student.Name,
		})
	}
	return rows, nil
}
