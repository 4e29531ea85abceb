package service

import (
	"context"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// GradingService tracks which responses and submissions still need a mark and
// applies admin-supplied marks with bounds checking. Grading is idempotent: a
// mark may be revised by grading again.
type GradingService interface {
	GradeQuestionResponse(caller auth.Caller, courseID, responseID uint, mark int) error
	GradeAssignmentSubmission(caller auth.Caller, courseID, submissionID uint, req dto.GradeSubmissionDTO) error
	ListUngradedResponses(caller auth.Caller, courseID, quizID uint) ([]dto.UngradedQuestionGroupDTO, error)
	ListUngradedSubmissions(caller auth.Caller, courseID, assignmentID uint) ([]dto.UngradedSubmissionDTO, error)
}

type gradingService struct {
	responseRepo   repository.ResponseRepository
	submissionRepo repository.SubmissionRepository
	attemptRepo    repository.AttemptRepository
	summaryCache   cache.SummaryCache
}

func NewGradingService(
	responseRepo repository.ResponseRepository,
	submissionRepo repository.SubmissionRepository,
	attemptRepo repository.AttemptRepository,
	summaryCache cache.SummaryCache,
) GradingService {
	return &gradingService{
		responseRepo:   responseRepo,
		submissionRepo: submissionRepo,
		attemptRepo:    attemptRepo,
		summaryCache:   summaryCache,
	}
}

func requireAdmin(caller auth.Caller) error {
	if !caller.IsAdmin {
		return apperr.New(apperr.KindUnauthorized, "caller %d is not an admin", caller.UserID)
	}
	return nil
}

func (s *gradingService) GradeQuestionResponse(caller auth.Caller, courseID, responseID uint, mark int) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	response, err := s.responseRepo.FindByID(responseID)
	if err != nil {
		return wrapLookup(err, "response %d not found", responseID)
	}
	if mark < 0 || mark > response.Question.Marks {
		return apperr.New(apperr.KindMarkOutOfRange,
			"mark %d outside [0, %d] for question %d", mark, response.Question.Marks, response.QuestionID)
	}

	response.Mark = mark
	response.Marked = true
	if err := s.responseRepo.Update(response); err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "failed to save mark for response %d", responseID)
	}
	log.Info().Uint("responseID", responseID).Int("mark", mark).Msg("Question response graded")
	s.summaryCache.InvalidateCourse(context.Background(), courseID)
	return nil
}

func (s *gradingService) GradeAssignmentSubmission(caller auth.Caller, courseID, submissionID uint, req dto.GradeSubmissionDTO) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return wrapLookup(err, "submission %d not found", submissionID)
	}
	if req.Mark == nil {
		return apperr.New(apperr.KindMissingResponseField, "submission %d: no mark supplied", submissionID)
	}
	if *req.Mark < 0 || *req.Mark > submission.Assignment.MarksAvailable {
		return apperr.New(apperr.KindMarkOutOfRange,
			"mark %d outside [0, %d] for assignment %d", *req.Mark, submission.Assignment.MarksAvailable, submission.AssignmentID)
	}

	// Tag vocabulary membership is validated when assignments and questions
	// are authored, not here.
	submission.Mark = req.Mark
	submission.Comment = req.Comment
	submission.SuccessTags = datatypes.JSONSlice[string](req.SuccessTags)
	submission.ImprovementTags = datatypes.JSONSlice[string](req.ImprovementTags)
	if err := s.submissionRepo.Update(submission); err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "failed to save grade for submission %d", submissionID)
	}
	log.Info().Uint("submissionID", submissionID).Int("mark", *req.Mark).Msg("Assignment submission graded")
	s.summaryCache.InvalidateCourse(context.Background(), courseID)
	return nil
}

func (s *gradingService) ListUngradedResponses(caller auth.Caller, courseID, quizID uint) ([]dto.UngradedQuestionGroupDTO, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	rows, err := s.attemptRepo.FindUngradedByQuiz(quizID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "ungraded scan failed for quiz %d", quizID)
	}

	// Group by question so all answers to one question are graded together.
	groupIndex := make(map[uint]int)
	var groups []dto.UngradedQuestionGroupDTO
	for _, row := range rows {
		idx, ok := groupIndex[row.Response.QuestionID]
		if !ok {
			groups = append(groups, dto.UngradedQuestionGroupDTO{
				QuestionID:   row.Response.QuestionID,
				QuestionText: row.Response.Question.Text,
				Marks:        row.Response.Question.Marks,
				Tag:          row.Response.Question.Tag,
			})
			idx = len(groups) - 1
			groupIndex[row.Response.QuestionID] = idx
		}
		groups[idx].Responses = append(groups[idx].Responses, dto.UngradedResponseDTO{
			ResponseID:  row.Response.ID,
			AttemptID:   row.AttemptID,
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			Answer:      row.Response.Answer,
		})
	}
	return groups, nil
}

func (s *gradingService) ListUngradedSubmissions(caller auth.Caller, courseID, assignmentID uint) ([]dto.UngradedSubmissionDTO, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	rows, err := s.submissionRepo.FindUngradedByAssignment(assignmentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "ungraded scan failed for assignment %d", assignmentID)
	}

	result := make([]dto.UngradedSubmissionDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.UngradedSubmissionDTO{
			SubmissionID: row.Submission.ID,
			StudentID:    row.StudentID,
			StudentName:  row.StudentName,
			Title:        row.Submission.Title,
			SubmittedAt:  row.Submission.SubmittedAt,
		})
	}
	return result, nil
}
