package service

import (
	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/model"
	"github.com/hollyoake/coursemark/internal/repository"
	"gorm.io/gorm"
)

/* In-memory fakes satisfying the repository interfaces. */

type fakeQuizRepo struct {
	quizzes map[uint]*model.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[uint]*model.Quiz{}}
}

func (r *fakeQuizRepo) FindByID(id uint) (*model.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	return r.FindByID(id)
}

type fakeCourseRepo struct {
	courses map[uint]*model.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[uint]*model.Course{}}
}

func (r *fakeCourseRepo) FindByID(id uint) (*model.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

type kudosAward struct {
	enrolmentID uint
	studentID   uint
	amount      int
}

type fakeEnrolmentRepo struct {
	enrolments map[uint]*model.Enrolment
	awards     []kudosAward
}

func newFakeEnrolmentRepo() *fakeEnrolmentRepo {
	return &fakeEnrolmentRepo{enrolments: map[uint]*model.Enrolment{}}
}

func (r *fakeEnrolmentRepo) FindByID(id uint) (*model.Enrolment, error) {
	enrolment, ok := r.enrolments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return enrolment, nil
}

func (r *fakeEnrolmentRepo) FindByCourseAndStudent(courseID, studentID uint) (*model.Enrolment, error) {
	for _, e := range r.enrolments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrolmentRepo) FindAllByCourse(courseID uint) ([]model.Enrolment, error) {
	var result []model.Enrolment
	for id := uint(1); id <= uint(len(r.enrolments))+100; id++ {
		if e, ok := r.enrolments[id]; ok && e.CourseID == courseID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *fakeEnrolmentRepo) AddKudos(enrolmentID, studentID uint, amount int) error {
	enrolment, ok := r.enrolments[enrolmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	enrolment.KudosEarned += amount
	r.awards = append(r.awards, kudosAward{enrolmentID: enrolmentID, studentID: studentID, amount: amount})
	return nil
}

type fakeAttemptRepo struct {
	attempts map[uint]*model.QuizAttempt
	quizzes  *fakeQuizRepo
	nextID   uint
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: map[uint]*model.QuizAttempt{}, nextID: 1}
}

func (r *fakeAttemptRepo) Create(attempt *model.QuizAttempt) error {
	for _, existing := range r.attempts {
		if existing.EnrolmentID == attempt.EnrolmentID && existing.QuizID == attempt.QuizID {
			return apperr.New(apperr.KindAlreadyAttempted,
				"an attempt already exists for enrolment %d and quiz %d", attempt.EnrolmentID, attempt.QuizID)
		}
	}
	attempt.ID = r.nextID
	r.nextID++
	for i := range attempt.Responses {
		attempt.Responses[i].ID = r.nextID
		attempt.Responses[i].QuizAttemptID = attempt.ID
		r.nextID++
	}
	stored := *attempt
	r.hydrate(&stored)
	r.attempts[attempt.ID] = &stored
	return nil
}

// hydrate fills the associations the real repository preloads.
func (r *fakeAttemptRepo) hydrate(attempt *model.QuizAttempt) {
	if r.quizzes == nil {
		return
	}
	quiz, ok := r.quizzes.quizzes[attempt.QuizID]
	if !ok {
		return
	}
	attempt.Quiz = *quiz
	for i := range attempt.Responses {
		for _, q := range quiz.Questions {
			if q.ID == attempt.Responses[i].QuestionID {
				attempt.Responses[i].Question = q
			}
		}
	}
}

func (r *fakeAttemptRepo) FindByEnrolmentAndQuiz(enrolmentID, quizID uint) (*model.QuizAttempt, error) {
	for _, a := range r.attempts {
		if a.EnrolmentID == enrolmentID && a.QuizID == quizID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAttemptRepo) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	attempt, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (r *fakeAttemptRepo) FindAllByEnrolment(enrolmentID uint) ([]model.QuizAttempt, error) {
	var result []model.QuizAttempt
	for id := uint(1); id < r.nextID; id++ {
		if a, ok := r.attempts[id]; ok && a.EnrolmentID == enrolmentID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeAttemptRepo) FindUngradedByQuiz(quizID uint) ([]repository.UngradedResponseRow, error) {
	var rows []repository.UngradedResponseRow
	for id := uint(1); id < r.nextID; id++ {
		attempt, ok := r.attempts[id]
		if !ok || attempt.QuizID != quizID {
			continue
		}
		for _, resp := range attempt.Responses {
			if !resp.Marked {
				rows = append(rows, repository.UngradedResponseRow{
					Response:  resp,
					AttemptID: attempt.ID,
					StudentID: attempt.EnrolmentID, // fixture convention: student id mirrors enrolment id
				})
			}
		}
	}
	return rows, nil
}

type fakeResponseRepo struct {
	responses map[uint]*model.QuestionResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: map[uint]*model.QuestionResponse{}}
}

func (r *fakeResponseRepo) FindByID(id uint) (*model.QuestionResponse, error) {
	response, ok := r.responses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return response, nil
}

func (r *fakeResponseRepo) Update(response *model.QuestionResponse) error {
	r.responses[response.ID] = response
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]*model.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[uint]*model.Assignment{}}
}

func (r *fakeAssignmentRepo) FindByID(id uint) (*model.Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]*model.AssignmentSubmission
	nextID      uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]*model.AssignmentSubmission{}, nextID: 1}
}

func (r *fakeSubmissionRepo) Create(submission *model.AssignmentSubmission) error {
	submission.ID = r.nextID
	r.nextID++
	stored := *submission
	r.submissions[submission.ID] = &stored
	return nil
}

func (r *fakeSubmissionRepo) Update(submission *model.AssignmentSubmission) error {
	r.submissions[submission.ID] = submission
	return nil
}

func (r *fakeSubmissionRepo) FindByID(id uint) (*model.AssignmentSubmission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *fakeSubmissionRepo) FindAllByEnrolment(enrolmentID uint) ([]model.AssignmentSubmission, error) {
	var result []model.AssignmentSubmission
	for id := uint(1); id < r.nextID; id++ {
		if s, ok := r.submissions[id]; ok && s.EnrolmentID == enrolmentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *fakeSubmissionRepo) FindUngradedByAssignment(assignmentID uint) ([]repository.UngradedSubmissionRow, error) {
	var rows []repository.UngradedSubmissionRow
	for id := uint(1); id < r.nextID; id++ {
		if s, ok := r.submissions[id]; ok && s.AssignmentID == assignmentID && s.Mark == nil {
			rows = append(rows, repository.UngradedSubmissionRow{Submission: *s, StudentID: s.EnrolmentID})
		}
	}
	return rows, nil
}

type recordingTaskCompleter struct {
	completed []uint
}

func (t *recordingTaskCompleter) CompleteTask(studentID, courseID, taskID uint) error {
	t.completed = append(t.completed, taskID)
	return nil
}
