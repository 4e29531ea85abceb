package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/model"
	"github.com/hollyoake/coursemark/internal/repository"
	"github.com/hollyoake/coursemark/internal/storage"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
)

// SubmissionService is the assignment counterpart of the attempt lifecycle.
// A student may submit the same assignment more than once; each call appends
// a new submission and the most recent one is authoritative.
type SubmissionService interface {
	SubmitAssignment(caller auth.Caller, courseID, assignmentID uint, title, filename string, file io.Reader) (*dto.SubmissionDTO, error)
	ListMySubmissions(caller auth.Caller, courseID uint) ([]dto.SubmissionDTO, error)
	GetDownloadURL(caller auth.Caller, submissionID uint) (*dto.SubmissionDownloadDTO, error)
}

type submissionService struct {
	assignmentRepo repository.AssignmentRepository
	enrolmentRepo  repository.EnrolmentRepository
	submissionRepo repository.SubmissionRepository
	blobStore      storage.BlobStore
	taskCompleter  TaskCompleter
	summaryCache   cache.SummaryCache
}

func NewSubmissionService(
	assignmentRepo repository.AssignmentRepository,
	enrolmentRepo repository.EnrolmentRepository,
	submissionRepo repository.SubmissionRepository,
	blobStore storage.BlobStore,
	taskCompleter TaskCompleter,
	summaryCache cache.SummaryCache,
) SubmissionService {
	return &submissionService{
		assignmentRepo: assignmentRepo,
		enrolmentRepo:  enrolmentRepo,
		submissionRepo: submissionRepo,
		blobStore:      blobStore,
		taskCompleter:  taskCompleter,
		summaryCache:   summaryCache,
	}
}

func (s *submissionService) SubmitAssignment(caller auth.Caller, courseID, assignmentID uint, title, filename string, file io.Reader) (*dto.SubmissionDTO, error) {
	enrolment, err := s.enrolmentRepo.FindByCourseAndStudent(courseID, caller.UserID)
	if err != nil {
		return nil, wrapLookup(err, "student %d is not enrolled in course %d", caller.UserID, courseID)
	}
	assignment, err := s.assignmentRepo.FindByID(assignmentID)
	if err != nil {
		return nil, wrapLookup(err, "assignment %d not found", assignmentID)
	}
	if assignment.CourseID != courseID {
		return nil, apperr.New(apperr.KindNotFound, "assignment %d does not belong to course %d", assignmentID, courseID)
	}

	handle := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	if _, err := s.blobStore.Put(handle, file); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "failed to store file for assignment %d", assignmentID)
	}

	submission := model.AssignmentSubmission{
		EnrolmentID:  enrolment.ID,
		AssignmentID: assignment.ID,
		Title:        title,
		FileHandle:   handle,
	}
	if err := s.submissionRepo.Create(&submission); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "failed to persist submission for assignment %d", assignmentID)
	}
	log.Info().Uint("submissionID", submission.ID).Uint("assignmentID", assignment.ID).Msg("Assignment submission recorded")

	if assignment.TaskID != nil {
		if err := s.taskCompleter.CompleteTask(caller.UserID, courseID, *assignment.TaskID); err != nil {
			log.Warn().Err(err).Uint("taskID", *assignment.TaskID).Msg("Linked task completion failed, continuing")
		}
	}
	s.summaryCache.InvalidateCourse(context.Background(), courseID)

	result := submissionDTO(&submission)
	result.AssignmentTitle = assignment.Title
	return result, nil
}

func (s *submissionService) ListMySubmissions(caller auth.Caller, courseID uint) ([]dto.SubmissionDTO, error) {
	enrolment, err := s.enrolmentRepo.FindByCourseAndStudent(courseID, caller.UserID)
	if err != nil {
		return nil, wrapLookup(err, "student %d is not enrolled in course %d", caller.UserID, courseID)
	}
	submissions, err := s.submissionRepo.FindAllByEnrolment(enrolment.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "submission scan failed for enrolment %d", enrolment.ID)
	}

	result := make([]dto.SubmissionDTO, 0, len(submissions))
	for i := range submissions {
		item := submissionDTO(&submissions[i])
		item.AssignmentTitle = submissions[i].Assignment.Title
		result = append(result, *item)
	}
	return result, nil
}

func (s *submissionService) GetDownloadURL(caller auth.Caller, submissionID uint) (*dto.SubmissionDownloadDTO, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		return nil, wrapLookup(err, "submission %d not found", submissionID)
	}
	if !caller.IsAdmin {
		enrolment, err := s.enrolmentRepo.FindByID(submission.EnrolmentID)
		if err != nil {
			return nil, wrapLookup(err, "enrolment %d not found", submission.EnrolmentID)
		}
		if enrolment.StudentID != caller.UserID {
			return nil, apperr.New(apperr.KindUnauthorized, "submission %d belongs to another student", submissionID)
		}
	}
	url, err := s.blobStore.DownloadURL(submission.FileHandle)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "failed to resolve download for submission %d", submissionID)
	}
	return &dto.SubmissionDownloadDTO{URL: url}, nil
}

func submissionDTO(submission *model.AssignmentSubmission) *dto.SubmissionDTO {
	var d dto.SubmissionDTO
	if err := copier.Copy(&d, submission); err != nil {
		log.Error().Err(err).Uint("submissionID", submission.ID).Msg("Failed to copy submission to DTO")
	}
	d.SuccessTags = submission.SuccessTags
	d.ImprovementTags = submission.ImprovementTags
	return &d
}
