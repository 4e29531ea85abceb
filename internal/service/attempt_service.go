package service

import (
	"context"
	"errors"
	"time"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/model"
	"github.com/hollyoake/coursemark/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService governs the NoAttempt -> Attempted state machine for one
// (student, quiz) pair. Starting a quiz is a read-only projection; the attempt
// record is created atomically with the full set of answers at finish time.
type AttemptService interface {
	StartQuiz(caller auth.Caller, courseID, quizID uint) (*dto.QuizStartDTO, error)
	FinishQuiz(caller auth.Caller, courseID, quizID uint, req dto.QuizSubmissionDTO) (*dto.AttemptDetailDTO, error)
	GetAttemptID(caller auth.Caller, courseID, quizID uint) (*dto.AttemptRefDTO, error)
	GetAttemptDetails(caller auth.Caller, courseID, attemptID uint) (*dto.AttemptDetailDTO, error)
}

type attemptService struct {
	quizRepo      repository.QuizRepository
	courseRepo    repository.CourseRepository
	enrolmentRepo repository.EnrolmentRepository
	attemptRepo   repository.AttemptRepository
	taskCompleter TaskCompleter
	summaryCache  cache.SummaryCache
	now           func() time.Time
}

func NewAttemptService(
	quizRepo repository.QuizRepository,
	courseRepo repository.CourseRepository,
	enrolmentRepo repository.EnrolmentRepository,
	attemptRepo repository.AttemptRepository,
	taskCompleter TaskCompleter,
	summaryCache cache.SummaryCache,
) AttemptService {
	return &attemptService{
		quizRepo:      quizRepo,
		courseRepo:    courseRepo,
		enrolmentRepo: enrolmentRepo,
		attemptRepo:   attemptRepo,
		taskCompleter: taskCompleter,
		summaryCache:  summaryCache,
		now:           time.Now,
	}
}

// wrapLookup turns a repository read error into NotFound or PersistenceFailure.
func wrapLookup(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, format, args...)
	}
	return apperr.Wrap(apperr.KindPersistence, err, format, args...)
}

// checkWindow enforces the quiz open/close window. The boundary instants
// themselves are valid: only now < open and now > close disqualify.
func (s *attemptService) checkWindow(quiz *model.Quiz) error {
	now := s.now()
	if now.Before(quiz.OpenAt) {
		return apperr.New(apperr.KindNotOpenYet, "quiz %d opens at %s", quiz.ID, quiz.OpenAt)
	}
	if now.After(quiz.CloseAt) {
		return apperr.New(apperr.KindAlreadyClosed, "quiz %d closed at %s", quiz.ID, quiz.CloseAt)
	}
	return nil
}

func (s *attemptService) loadQuizForCourse(courseID, quizID uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		return nil, wrapLookup(err, "quiz %d not found", quizID)
	}
	if quiz.CourseID != courseID {
		return nil, apperr.New(apperr.KindNotFound, "quiz %d does not belong to course %d", quizID, courseID)
	}
	return quiz, nil
}

func (s *attemptService) loadEnrolment(courseID, studentID uint) (*model.Enrolment, error) {
	enrolment, err := s.enrolmentRepo.FindByCourseAndStudent(courseID, studentID)
	if err != nil {
		return nil, wrapLookup(err, "student %d is not enrolled in course %d", studentID, courseID)
	}
	return enrolment, nil
}

func (s *attemptService) StartQuiz(caller auth.Caller, courseID, quizID uint) (*dto.QuizStartDTO, error) {
	enrolment, err := s.loadEnrolment(courseID, caller.UserID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuizForCourse(courseID, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(quiz); err != nil {
		return nil, err
	}

	existing, err := s.attemptRepo.FindByEnrolmentAndQuiz(enrolment.ID, quiz.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "attempt lookup failed for quiz %d", quiz.ID)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindAlreadyAttempted, "quiz %d already attempted", quiz.ID)
	}

	resp := dto.QuizStartDTO{
		QuizID:      quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		MaxMarks:    quiz.MaxMarks,
		CloseAt:     quiz.CloseAt,
	}
	for _, q := range quiz.Questions {
		view := dto.QuestionViewDTO{
			ID:          q.ID,
			Text:        q.Text,
			Type:        string(q.Type),
			Marks:       q.Marks,
			Tag:         q.Tag,
			OrderInQuiz: q.OrderInQuiz,
		}
		for _, c := range q.Choices {
			view.Choices = append(view.Choices, dto.ChoiceViewDTO{ID: c.ID, Text: c.Text})
		}
		resp.Questions = append(resp.Questions, view)
	}
	return &resp, nil
}

func (s *attemptService) FinishQuiz(caller auth.Caller, courseID, quizID uint, req dto.QuizSubmissionDTO) (*dto.AttemptDetailDTO, error) {
	enrolment, err := s.loadEnrolment(courseID, caller.UserID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.loadQuizForCourse(courseID, quizID)
	if err != nil {
		return nil, err
	}
	// Window and uniqueness are re-validated here: time may have passed since
	// StartQuiz, and a concurrent submission may have landed.
	if err := s.checkWindow(quiz); err != nil {
		return nil, err
	}
	existing, err := s.attemptRepo.FindByEnrolmentAndQuiz(enrolment.ID, quiz.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "attempt lookup failed for quiz %d", quiz.ID)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindAlreadyAttempted, "quiz %d already attempted", quiz.ID)
	}

	questionMap := make(map[uint]model.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questionMap[q.ID] = q
	}

	attempt := model.QuizAttempt{
		EnrolmentID: enrolment.ID,
		QuizID:      quiz.ID,
		SubmittedAt: s.now(),
	}
	for _, respDTO := range req.Responses {
		question, exists := questionMap[respDTO.QuestionID]
		if !exists {
			return nil, apperr.New(apperr.KindNotFound, "question %d is not part of quiz %d", respDTO.QuestionID, quiz.ID)
		}
		response, err := buildResponse(&question, respDTO)
		if err != nil {
			return nil, err
		}
		attempt.Mark += response.Mark
		attempt.Responses = append(attempt.Responses, *response)
	}

	// Attempt and responses are one association create, so a failure leaves no
	// orphaned responses and a duplicate key surfaces as AlreadyAttempted.
	if err := s.attemptRepo.Create(&attempt); err != nil {
		if apperr.Is(err, apperr.KindAlreadyAttempted) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindPersistence, err, "failed to persist attempt for quiz %d", quiz.ID)
	}
	log.Info().Uint("attemptID", attempt.ID).Uint("quizID", quiz.ID).Int("mark", attempt.Mark).Msg("Quiz attempt recorded")

	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return nil, wrapLookup(err, "course %d not found", courseID)
	}
	if err := s.enrolmentRepo.AddKudos(enrolment.ID, caller.UserID, course.KudosQuizCompletion); err != nil {
		// The attempt stands; the missing credit is surfaced, not rolled back.
		return nil, apperr.Wrap(apperr.KindPersistence, err, "attempt %d recorded but kudos award failed", attempt.ID)
	}

	if quiz.TaskID != nil {
		if err := s.taskCompleter.CompleteTask(caller.UserID, courseID, *quiz.TaskID); err != nil {
			log.Warn().Err(err).Uint("taskID", *quiz.TaskID).Msg("Linked task completion failed, continuing")
		}
	}
	s.summaryCache.InvalidateCourse(context.Background(), courseID)

	return s.attemptDetail(caller, &attempt, quiz)
}

// buildResponse validates one submitted answer against its question and scores
// choice responses. Open responses stay unmarked for the grading workflow.
func buildResponse(question *model.Question, respDTO dto.ResponseSubmitDTO) (*model.QuestionResponse, error) {
	hasAnswer := respDTO.Answer != nil && *respDTO.Answer != ""
	hasChoices := len(respDTO.ChoiceIDs) > 0

	if !hasAnswer && !hasChoices {
		return nil, apperr.New(apperr.KindMissingResponseField, "question %d: no answer or choices supplied", question.ID)
	}
	if hasAnswer && hasChoices {
		return nil, apperr.New(apperr.KindTypeMismatch, "question %d: both answer and choices supplied", question.ID)
	}

	response := model.QuestionResponse{QuestionID: question.ID}
	switch question.Type {
	case model.QuestionTypeChoice:
		if !hasChoices {
			return nil, apperr.New(apperr.KindTypeMismatch, "question %d expects choice ids", question.ID)
		}
		response.ChoiceIDs = respDTO.ChoiceIDs
		response.Mark = ScoreChoiceResponse(question, respDTO.ChoiceIDs)
		response.Marked = true
	case model.QuestionTypeOpen:
		if !hasAnswer {
			return nil, apperr.New(apperr.KindTypeMismatch, "question %d expects a free-text answer", question.ID)
		}
		response.Answer = respDTO.Answer
	default:
		return nil, apperr.New(apperr.KindTypeMismatch, "question %d has unknown type %q", question.ID, question.Type)
	}
	return &response, nil
}

func (s *attemptService) GetAttemptID(caller auth.Caller, courseID, quizID uint) (*dto.AttemptRefDTO, error) {
	enrolment, err := s.loadEnrolment(courseID, caller.UserID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.FindByEnrolmentAndQuiz(enrolment.ID, quizID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "attempt lookup failed for quiz %d", quizID)
	}
	ref := dto.AttemptRefDTO{}
	if attempt != nil {
		ref.AttemptID = &attempt.ID
	}
	return &ref, nil
}

func (s *attemptService) GetAttemptDetails(caller auth.Caller, courseID, attemptID uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		return nil, wrapLookup(err, "attempt %d not found", attemptID)
	}
	if !caller.IsAdmin {
		enrolment, err := s.loadEnrolment(courseID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if attempt.EnrolmentID != enrolment.ID {
			return nil, apperr.New(apperr.KindUnauthorized, "attempt %d belongs to another student", attemptID)
		}
	}
	return s.attemptDetail(caller, attempt, &attempt.Quiz)
}

// attemptDetail projects an attempt, withholding marks until every response is
// marked and either the caller is an admin or the quiz window has closed.
func (s *attemptService) attemptDetail(caller auth.Caller, attempt *model.QuizAttempt, quiz *model.Quiz) (*dto.AttemptDetailDTO, error) {
	reveal := attemptRevealable(attempt, quiz, caller.IsAdmin, s.now())

	detail := dto.AttemptDetailDTO{
		ID:          attempt.ID,
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		MaxMarks:    quiz.MaxMarks,
		SubmittedAt: attempt.SubmittedAt,
	}
	if reveal {
		mark := attempt.Mark
		detail.Mark = &mark
	}

	questionMap := make(map[uint]model.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questionMap[q.ID] = q
	}
	for _, resp := range attempt.Responses {
		question := resp.Question
		if question.ID == 0 {
			question = questionMap[resp.QuestionID]
		}
		respDTO := dto.ResponseDetailDTO{
			ID:           resp.ID,
			QuestionID:   resp.QuestionID,
			QuestionText: question.Text,
			Type:         string(question.Type),
			Marks:        question.Marks,
			Marked:       resp.Marked,
			Answer:       resp.Answer,
			ChoiceIDs:    resp.ChoiceIDs,
		}
		if reveal {
			mark := resp.Mark
			respDTO.Mark = &mark
		}
		detail.Responses = append(detail.Responses, respDTO)
	}
	return &detail, nil
}

func attemptRevealable(attempt *model.QuizAttempt, quiz *model.Quiz, isAdmin bool, now time.Time) bool {
	for _, resp := range attempt.Responses {
		if !resp.Marked {
			return false
		}
	}
	return isAdmin || now.After(quiz.CloseAt)
}
