package service

import (
	"context"
	"time"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/model"
	"github.com/hollyoake/coursemark/internal/repository"
	"github.com/rs/zerolog/log"
)

// SummaryService derives tag mastery and grade analytics from the fully
// marked attempt and submission state, per student or rolled up course-wide.
type SummaryService interface {
	GetStudentTagSummary(caller auth.Caller, courseID, studentID uint) (*dto.TagSummaryDTO, error)
	GetStudentGradeSummary(caller auth.Caller, courseID, studentID uint) (*dto.GradeSummaryDTO, error)
	GetStudentIncorrectQuestions(caller auth.Caller, courseID, studentID uint) ([]dto.IncorrectQuestionDTO, error)
	GetCourseSummary(caller auth.Caller, courseID uint) (*dto.CourseSummaryDTO, error)
}

type summaryService struct {
	enrolmentRepo  repository.EnrolmentRepository
	attemptRepo    repository.AttemptRepository
	submissionRepo repository.SubmissionRepository
	summaryCache   cache.SummaryCache
	now            func() time.Time
}

func NewSummaryService(
	enrolmentRepo repository.EnrolmentRepository,
	attemptRepo repository.AttemptRepository,
	submissionRepo repository.SubmissionRepository,
	summaryCache cache.SummaryCache,
) SummaryService {
	return &summaryService{
		enrolmentRepo:  enrolmentRepo,
		attemptRepo:    attemptRepo,
		submissionRepo: submissionRepo,
		summaryCache:   summaryCache,
		now:            time.Now,
	}
}

// requireSelfOrAdmin lets a student read only their own analytics.
func requireSelfOrAdmin(caller auth.Caller, studentID uint) error {
	if !caller.IsAdmin && caller.UserID != studentID {
		return apperr.New(apperr.KindUnauthorized, "caller %d may not view student %d", caller.UserID, studentID)
	}
	return nil
}

func (s *summaryService) loadStudentData(courseID, studentID uint) ([]model.QuizAttempt, []model.AssignmentSubmission, error) {
	enrolment, err := s.enrolmentRepo.FindByCourseAndStudent(courseID, studentID)
	if err != nil {
		return nil, nil, wrapLookup(err, "student %d is not enrolled in course %d", studentID, courseID)
	}
	attempts, err := s.attemptRepo.FindAllByEnrolment(enrolment.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, err, "attempt scan failed for enrolment %d", enrolment.ID)
	}
	submissions, err := s.submissionRepo.FindAllByEnrolment(enrolment.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, err, "submission scan failed for enrolment %d", enrolment.ID)
	}
	return attempts, submissions, nil
}

func (s *summaryService) GetStudentTagSummary(caller auth.Caller, courseID, studentID uint) (*dto.TagSummaryDTO, error) {
	if err := requireSelfOrAdmin(caller, studentID); err != nil {
		return nil, err
	}
	attempts, submissions, err := s.loadStudentData(courseID, studentID)
	if err != nil {
		return nil, err
	}
	summary := tagSummary(attempts, submissions)
	return &summary, nil
}

// tagSummary counts, per tag, fully-marked responses at full marks as
// successes and the rest as improvements, then folds in graded submission
// tags. Unmarked responses and ungraded submissions contribute nothing.
func tagSummary(attempts []model.QuizAttempt, submissions []model.AssignmentSubmission) dto.TagSummaryDTO {
	summary := dto.TagSummaryDTO{
		SuccessTags:     map[string]int{},
		ImprovementTags: map[string]int{},
	}
	for _, attempt := range attempts {
		for _, resp := range attempt.Responses {
			if !resp.Marked {
				continue
			}
			if resp.Mark == resp.Question.Marks {
				summary.SuccessTags[resp.Question.Tag]++
			} else {
				summary.ImprovementTags[resp.Question.Tag]++
			}
		}
	}
	for _, sub := range submissions {
		if !sub.Graded() {
			continue
		}
		for _, tag := range sub.SuccessTags {
			summary.SuccessTags[tag]++
		}
		for _, tag := range sub.ImprovementTags {
			summary.ImprovementTags[tag]++
		}
	}
	return summary
}

func (s *summaryService) GetStudentGradeSummary(caller auth.Caller, courseID, studentID uint) (*dto.GradeSummaryDTO, error) {
	if err := requireSelfOrAdmin(caller, studentID); err != nil {
		return nil, err
	}
	attempts, submissions, err := s.loadStudentData(courseID, studentID)
	if err != nil {
		return nil, err
	}
	summary := gradeSummary(attempts, submissions, caller.IsAdmin, s.now())
	return &summary, nil
}

// gradeSummary builds the per-assessment grade rows. A quiz mark is revealed
// only once every response is marked and either the caller is privileged or
// the quiz window has closed; assignment marks reveal as soon as they exist.
func gradeSummary(attempts []model.QuizAttempt, submissions []model.AssignmentSubmission, isAdmin bool, now time.Time) dto.GradeSummaryDTO {
	summary := dto.GradeSummaryDTO{
		Quizzes:     []dto.QuizGradeDTO{},
		Assignments: []dto.AssignmentGradeDTO{},
	}
	for _, attempt := range attempts {
		row := dto.QuizGradeDTO{
			QuizID:   attempt.QuizID,
			Title:    attempt.Quiz.Title,
			MaxMarks: attempt.Quiz.MaxMarks,
		}
		if attemptRevealable(&attempt, &attempt.Quiz, isAdmin, now) {
			awarded := scaledAttemptMark(&attempt)
			row.MarksAwarded = &awarded
		}
		summary.Quizzes = append(summary.Quizzes, row)
	}
	for _, sub := range submissions {
		row := dto.AssignmentGradeDTO{
			AssignmentID:   sub.AssignmentID,
			Title:          sub.Assignment.Title,
			MarksAvailable: sub.Assignment.MarksAvailable,
		}
		if sub.Graded() {
			row.MarksAwarded = sub.Mark
			row.Comment = sub.Comment
		}
		summary.Assignments = append(summary.Assignments, row)
	}
	return summary
}

// scaledAttemptMark maps the raw response marks onto the quiz's mark scale:
// (sum of response marks / sum of question max marks) * quiz max marks.
func scaledAttemptMark(attempt *model.QuizAttempt) float64 {
	var awarded, available int
	for _, resp := range attempt.Responses {
		awarded += resp.Mark
		available += resp.Question.Marks
	}
	if available == 0 {
		return 0
	}
	return float64(awarded) / float64(available) * float64(attempt.Quiz.MaxMarks)
}

func (s *summaryService) GetStudentIncorrectQuestions(caller auth.Caller, courseID, studentID uint) ([]dto.IncorrectQuestionDTO, error) {
	if err := requireSelfOrAdmin(caller, studentID); err != nil {
		return nil, err
	}
	attempts, _, err := s.loadStudentData(courseID, studentID)
	if err != nil {
		return nil, err
	}
	return incorrectQuestions(attempts, caller.IsAdmin, s.now()), nil
}

// incorrectQuestions lists every marked response below full marks. Choice
// correctness is revealed only once the quiz has closed, or to admins.
func incorrectQuestions(attempts []model.QuizAttempt, revealCorrect bool, now time.Time) []dto.IncorrectQuestionDTO {
	var result []dto.IncorrectQuestionDTO
	for _, attempt := range attempts {
		closed := now.After(attempt.Quiz.CloseAt)
		for _, resp := range attempt.Responses {
			if !resp.Marked || resp.Mark == resp.Question.Marks {
				continue
			}
			detail := dto.IncorrectQuestionDTO{
				QuestionID:  resp.QuestionID,
				Text:        resp.Question.Text,
				Tag:         resp.Question.Tag,
				Type:        string(resp.Question.Type),
				Marks:       resp.Question.Marks,
				MarkAwarded: resp.Mark,
			}
			if resp.Question.Type == model.QuestionTypeChoice {
				chosen := make(map[uint]bool, len(resp.ChoiceIDs))
				for _, id := range resp.ChoiceIDs {
					chosen[id] = true
				}
				for _, choice := range resp.Question.Choices {
					choiceDTO := dto.IncorrectChoiceDTO{
						ID:     choice.ID,
						Text:   choice.Text,
						Chosen: chosen[choice.ID],
					}
					if revealCorrect || closed {
						correct := choice.Correct
						choiceDTO.Correct = &correct
					}
					detail.Choices = append(detail.Choices, choiceDTO)
				}
			}
			result = append(result, detail)
		}
	}
	return result
}

func (s *summaryService) GetCourseSummary(caller auth.Caller, courseID uint) (*dto.CourseSummaryDTO, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	ctx := context.Background()
	if cached, ok := s.summaryCache.GetCourseSummary(ctx, courseID); ok {
		return cached, nil
	}

	enrolments, err := s.enrolmentRepo.FindAllByCourse(courseID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "enrolment scan failed for course %d", courseID)
	}

	summary := dto.CourseSummaryDTO{
		CourseID: courseID,
		TagTotals: dto.TagSummaryDTO{
			SuccessTags:     map[string]int{},
			ImprovementTags: map[string]int{},
		},
		Students:       []dto.StudentSummaryRowDTO{},
		CommonlyMissed: []dto.CommonlyMissedDTO{},
	}

	missedIndex := make(map[uint]int)
	now := s.now()
	for _, enrolment := range enrolments {
		attempts, err := s.attemptRepo.FindAllByEnrolment(enrolment.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, err, "attempt scan failed for enrolment %d", enrolment.ID)
		}
		submissions, err := s.submissionRepo.FindAllByEnrolment(enrolment.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, err, "submission scan failed for enrolment %d", enrolment.ID)
		}

		tags := tagSummary(attempts, submissions)
		for tag, count := range tags.SuccessTags {
			summary.TagTotals.SuccessTags[tag] += count
		}
		for tag, count := range tags.ImprovementTags {
			summary.TagTotals.ImprovementTags[tag] += count
		}

		summary.Students = append(summary.Students, dto.StudentSummaryRowDTO{
			StudentID:   enrolment.StudentID,
			StudentName: enrolment.Student.Name,
			Tags:        tags,
			// Admin override: closed-window gating is bypassed for the rollup.
			Grades: gradeSummary(attempts, submissions, true, now),
		})

		collectMissed(&summary, missedIndex, attempts)
	}

	s.summaryCache.SetCourseSummary(ctx, courseID, &summary)
	log.Info().Uint("courseID", courseID).Int("students", len(summary.Students)).Msg("Course summary computed")
	return &summary, nil
}

// collectMissed folds one student's incorrect responses into the deduplicated
// commonly-missed map, incrementing the per-question count.
func collectMissed(summary *dto.CourseSummaryDTO, index map[uint]int, attempts []model.QuizAttempt) {
	for _, attempt := range attempts {
		for _, resp := range attempt.Responses {
			if !resp.Marked || resp.Mark == resp.Question.Marks {
				continue
			}
			idx, ok := index[resp.QuestionID]
			if !ok {
				entry := dto.CommonlyMissedDTO{
					QuestionID: resp.QuestionID,
					Text:       resp.Question.Text,
					Tag:        resp.Question.Tag,
				}
				// Admin context: correctness is revealed unconditionally.
				for _, choice := range resp.Question.Choices {
					correct := choice.Correct
					entry.Choices = append(entry.Choices, dto.IncorrectChoiceDTO{
						ID:      choice.ID,
						Text:    choice.Text,
						Correct: &correct,
					})
				}
				summary.CommonlyMissed = append(summary.CommonlyMissed, entry)
				idx = len(summary.CommonlyMissed) - 1
				index[resp.QuestionID] = idx
			}
			summary.CommonlyMissed[idx].Count++
		}
	}
}
