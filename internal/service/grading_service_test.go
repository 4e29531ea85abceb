package service

import (
	"testing"
	"time"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/model"
)

func admin() auth.Caller { return auth.Caller{UserID: 99, IsAdmin: true} }

func intPtr(n int) *int { return &n }

type gradingFixture struct {
	service     GradingService
	responses   *fakeResponseRepo
	submissions *fakeSubmissionRepo
	attempts    *fakeAttemptRepo
}

func newGradingFixture() *gradingFixture {
	f := &gradingFixture{
		responses:   newFakeResponseRepo(),
		submissions: newFakeSubmissionRepo(),
		attempts:    newFakeAttemptRepo(),
	}
	f.service = NewGradingService(f.responses, f.submissions, f.attempts, cache.NoopSummaryCache{})
	return f
}

func (f *gradingFixture) seedOpenResponse(id uint, maxMarks int) {
	f.responses.responses[id] = &model.QuestionResponse{
		ID:         id,
		QuestionID: id,
		Answer:     strPtr("a written answer"),
		Question:   model.Question{ID: id, Type: model.QuestionTypeOpen, Marks: maxMarks, Tag: "writing", Text: "Explain"},
	}
}

func (f *gradingFixture) seedSubmission(id uint, marksAvailable int) {
	sub := &model.AssignmentSubmission{
		ID:           id,
		AssignmentID: 1,
		EnrolmentID:  1,
		Title:        "Essay draft",
		SubmittedAt:  testNow,
		Assignment:   model.Assignment{ID: 1, Title: "Essay", MarksAvailable: marksAvailable},
	}
	f.submissions.submissions[id] = sub
	if id >= f.submissions.nextID {
		f.submissions.nextID = id + 1
	}
}

func TestGradeQuestionResponse(t *testing.T) {
	f := newGradingFixture()
	f.seedOpenResponse(11, 10)

	if err := f.service.GradeQuestionResponse(admin(), fixtureCourseID, 11, 7); err != nil {
		t.Fatalf("GradeQuestionResponse: %v", err)
	}
	graded := f.responses.responses[11]
	if !graded.Marked || graded.Mark != 7 {
		t.Errorf("response = marked %v mark %d, want marked with 7", graded.Marked, graded.Mark)
	}

	// Regrading revises the mark in place.
	if err := f.service.GradeQuestionResponse(admin(), fixtureCourseID, 11, 4); err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if f.responses.responses[11].Mark != 4 {
		t.Errorf("mark after regrade = %d, want 4", f.responses.responses[11].Mark)
	}
}

func TestGradeQuestionResponseBounds(t *testing.T) {
	f := newGradingFixture()
	f.seedOpenResponse(11, 10)

	for _, mark := range []int{-1, 11} {
		if err := f.service.GradeQuestionResponse(admin(), fixtureCourseID, 11, mark); !apperr.Is(err, apperr.KindMarkOutOfRange) {
			t.Errorf("mark %d: error = %v, want MarkOutOfRange", mark, err)
		}
	}
	// The boundary marks themselves are valid.
	for _, mark := range []int{0, 10} {
		if err := f.service.GradeQuestionResponse(admin(), fixtureCourseID, 11, mark); err != nil {
			t.Errorf("mark %d: %v", mark, err)
		}
	}
}

func TestGradeQuestionResponseAccess(t *testing.T) {
	f := newGradingFixture()
	f.seedOpenResponse(11, 10)

	if err := f.service.GradeQuestionResponse(student(), fixtureCourseID, 11, 5); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("student grading: error = %v, want Unauthorized", err)
	}
	if f.responses.responses[11].Marked {
		t.Error("unauthorized call must not mark the response")
	}
	if err := f.service.GradeQuestionResponse(admin(), fixtureCourseID, 404, 5); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown response: error = %v, want NotFound", err)
	}
}

func TestGradeAssignmentSubmission(t *testing.T) {
	f := newGradingFixture()
	f.seedSubmission(3, 20)

	req := dto.GradeSubmissionDTO{
		Mark:            intPtr(7),
		Comment:         strPtr("Strong thesis, cite your sources"),
		SuccessTags:     []string{"argumentation"},
		ImprovementTags: []string{"referencing"},
	}
	if err := f.service.GradeAssignmentSubmission(admin(), fixtureCourseID, 3, req); err != nil {
		t.Fatalf("GradeAssignmentSubmission: %v", err)
	}

	sub := f.submissions.submissions[3]
	if !sub.Graded() || *sub.Mark != 7 {
		t.Fatalf("submission mark = %v, want 7", sub.Mark)
	}
	if sub.Comment == nil || *sub.Comment != *req.Comment {
		t.Errorf("comment not stored: %v", sub.Comment)
	}
	if len(sub.SuccessTags) != 1 || sub.SuccessTags[0] != "argumentation" {
		t.Errorf("success tags = %v", sub.SuccessTags)
	}
	if len(sub.ImprovementTags) != 1 || sub.ImprovementTags[0] != "referencing" {
		t.Errorf("improvement tags = %v", sub.ImprovementTags)
	}

	// Regrading replaces mark and tags wholesale.
	if err := f.service.GradeAssignmentSubmission(admin(), fixtureCourseID, 3, dto.GradeSubmissionDTO{Mark: intPtr(12)}); err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if *f.submissions.submissions[3].Mark != 12 {
		t.Errorf("mark after regrade = %d, want 12", *f.submissions.submissions[3].Mark)
	}
	if len(f.submissions.submissions[3].SuccessTags) != 0 {
		t.Errorf("tags should be replaced on regrade, got %v", f.submissions.submissions[3].SuccessTags)
	}
}

func TestGradeAssignmentSubmissionBounds(t *testing.T) {
	f := newGradingFixture()
	f.seedSubmission(3, 20)

	for _, mark := range []int{-1, 21} {
		err := f.service.GradeAssignmentSubmission(admin(), fixtureCourseID, 3, dto.GradeSubmissionDTO{Mark: intPtr(mark)})
		if !apperr.Is(err, apperr.KindMarkOutOfRange) {
			t.Errorf("mark %d: error = %v, want MarkOutOfRange", mark, err)
		}
	}
	if err := f.service.GradeAssignmentSubmission(student(), fixtureCourseID, 3, dto.GradeSubmissionDTO{Mark: intPtr(5)}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("student grading: error = %v, want Unauthorized", err)
	}
}

func TestListUngradedResponses(t *testing.T) {
	f := newGradingFixture()

	// Two attempts at quiz 1, each mixing a pending open answer with an
	// already scored choice answer. The same open question appears in both.
	f.attempts.attempts[1] = &model.QuizAttempt{
		ID: 1, EnrolmentID: 1, QuizID: 1,
		Responses: []model.QuestionResponse{
			{ID: 10, QuestionID: 5, Answer: strPtr("first answer"),
				Question: model.Question{ID: 5, Text: "Explain recursion", Type: model.QuestionTypeOpen, Marks: 5, Tag: "writing"}},
			{ID: 11, QuestionID: 6, Marked: true, Mark: 3,
				Question: model.Question{ID: 6, Type: model.QuestionTypeChoice, Marks: 3}},
		},
	}
	f.attempts.attempts[2] = &model.QuizAttempt{
		ID: 2, EnrolmentID: 2, QuizID: 1,
		Responses: []model.QuestionResponse{
			{ID: 20, QuestionID: 5, Answer: strPtr("second answer"),
				Question: model.Question{ID: 5, Text: "Explain recursion", Type: model.QuestionTypeOpen, Marks: 5, Tag: "writing"}},
		},
	}
	f.attempts.nextID = 30

	groups, err := f.service.ListUngradedResponses(admin(), fixtureCourseID, 1)
	if err != nil {
		t.Fatalf("ListUngradedResponses: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 question group, got %d", len(groups))
	}
	group := groups[0]
	if group.QuestionID != 5 || group.Marks != 5 {
		t.Errorf("group = %+v, want question 5 with 5 marks", group)
	}
	if len(group.Responses) != 2 {
		t.Fatalf("expected both pending answers grouped, got %d", len(group.Responses))
	}

	if _, err := f.service.ListUngradedResponses(student(), fixtureCourseID, 1); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("student listing: error = %v, want Unauthorized", err)
	}
}

func TestListUngradedSubmissions(t *testing.T) {
	f := newGradingFixture()
	f.seedSubmission(1, 20)
	f.seedSubmission(2, 20)
	f.submissions.submissions[2].Mark = intPtr(15)
	f.submissions.submissions[2].SubmittedAt = testNow.Add(time.Minute)

	pending, err := f.service.ListUngradedSubmissions(admin(), fixtureCourseID, 1)
	if err != nil {
		t.Fatalf("ListUngradedSubmissions: %v", err)
	}
	if len(pending) != 1 || pending[0].SubmissionID != 1 {
		t.Errorf("pending = %+v, want only submission 1", pending)
	}
}
