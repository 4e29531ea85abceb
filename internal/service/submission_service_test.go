package service

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/cache"
	"github.com/hollyoake/coursemark/internal/model"
)

type memoryBlobStore struct {
	blobs map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: map[string][]byte{}}
}

func (s *memoryBlobStore) Put(handle string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.blobs[handle] = data
	return handle, nil
}

func (s *memoryBlobStore) Get(handle string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.blobs[handle])), nil
}

func (s *memoryBlobStore) DownloadURL(handle string) (string, error) {
	return "/files/" + handle, nil
}

type submissionFixture struct {
	service     SubmissionService
	assignments *fakeAssignmentRepo
	enrolments  *fakeEnrolmentRepo
	submissions *fakeSubmissionRepo
	blobs       *memoryBlobStore
	tasks       *recordingTaskCompleter
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		assignments: newFakeAssignmentRepo(),
		enrolments:  newFakeEnrolmentRepo(),
		submissions: newFakeSubmissionRepo(),
		blobs:       newMemoryBlobStore(),
		tasks:       &recordingTaskCompleter{},
	}
	f.enrolments.enrolments[1] = &model.Enrolment{ID: 1, CourseID: fixtureCourseID, StudentID: fixtureStudentID}
	f.assignments.assignments[1] = &model.Assignment{ID: 1, CourseID: fixtureCourseID, Title: "Essay", MarksAvailable: 20}
	f.service = NewSubmissionService(f.assignments, f.enrolments, f.submissions, f.blobs, f.tasks, cache.NoopSummaryCache{})
	return f
}

func TestSubmitAssignment(t *testing.T) {
	f := newSubmissionFixture()

	result, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "My essay", "essay.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("SubmitAssignment: %v", err)
	}

	stored := f.submissions.submissions[result.ID]
	if stored == nil {
		t.Fatal("submission was not persisted")
	}
	if stored.Title != "My essay" || stored.EnrolmentID != 1 {
		t.Errorf("stored submission = %+v", stored)
	}
	// The file handle is an opaque key that keeps the upload's extension.
	if filepath.Ext(stored.FileHandle) != ".pdf" {
		t.Errorf("file handle %q should keep the .pdf extension", stored.FileHandle)
	}
	if string(f.blobs.blobs[stored.FileHandle]) != "pdf bytes" {
		t.Error("file content was not written to the blob store")
	}
	if stored.Graded() {
		t.Error("a fresh submission must be ungraded")
	}
	if result.AssignmentTitle != "Essay" {
		t.Errorf("assignment title = %q, want Essay", result.AssignmentTitle)
	}
}

func TestSubmitAssignmentAgainAppends(t *testing.T) {
	f := newSubmissionFixture()

	first, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "Draft", "draft.docx", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("first SubmitAssignment: %v", err)
	}
	second, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "Final", "final.docx", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("second SubmitAssignment: %v", err)
	}
	if first.ID == second.ID {
		t.Error("a resubmission must create a new record, not overwrite")
	}
	if len(f.submissions.submissions) != 2 {
		t.Errorf("expected 2 stored submissions, got %d", len(f.submissions.submissions))
	}
}

func TestSubmitAssignmentCompletesLinkedTask(t *testing.T) {
	f := newSubmissionFixture()
	taskID := uint(17)
	f.assignments.assignments[1].TaskID = &taskID

	if _, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "Essay", "essay.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("SubmitAssignment: %v", err)
	}
	if len(f.tasks.completed) != 1 || f.tasks.completed[0] != taskID {
		t.Errorf("completed tasks = %v, want [17]", f.tasks.completed)
	}
}

func TestSubmitAssignmentWrongCourse(t *testing.T) {
	f := newSubmissionFixture()
	f.assignments.assignments[2] = &model.Assignment{ID: 2, CourseID: 99, Title: "Other", MarksAvailable: 10}

	_, err := f.service.SubmitAssignment(student(), fixtureCourseID, 2, "Essay", "essay.pdf", strings.NewReader("x"))
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("error = %v, want NotFound for cross-course assignment", err)
	}
}

func TestGetDownloadURLAccess(t *testing.T) {
	f := newSubmissionFixture()
	result, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "Essay", "essay.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("SubmitAssignment: %v", err)
	}

	owner, err := f.service.GetDownloadURL(student(), result.ID)
	if err != nil {
		t.Fatalf("GetDownloadURL as owner: %v", err)
	}
	if !strings.HasPrefix(owner.URL, "/files/") {
		t.Errorf("url = %q", owner.URL)
	}

	if _, err := f.service.GetDownloadURL(admin(), result.ID); err != nil {
		t.Errorf("GetDownloadURL as admin: %v", err)
	}

	other := auth.Caller{UserID: 8}
	f.enrolments.enrolments[2] = &model.Enrolment{ID: 2, CourseID: fixtureCourseID, StudentID: 8}
	if _, err := f.service.GetDownloadURL(other, result.ID); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("error = %v, want Unauthorized for another student", err)
	}
}

func TestListMySubmissions(t *testing.T) {
	f := newSubmissionFixture()
	if _, err := f.service.SubmitAssignment(student(), fixtureCourseID, 1, "Essay", "essay.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("SubmitAssignment: %v", err)
	}

	mine, err := f.service.ListMySubmissions(student(), fixtureCourseID)
	if err != nil {
		t.Fatalf("ListMySubmissions: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "Essay" {
		t.Errorf("submissions = %+v", mine)
	}

	stranger := auth.Caller{UserID: 500}
	if _, err := f.service.ListMySubmissions(stranger, fixtureCourseID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("error = %v, want NotFound for unenrolled caller", err)
	}
}
