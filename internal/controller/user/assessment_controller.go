package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hollyoake/coursemark/internal/apperr"
	"github.com/hollyoake/coursemark/internal/auth"
	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/hollyoake/coursemark/internal/service"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	attemptService    service.AttemptService
	summaryService    service.SummaryService
	submissionService service.SubmissionService
}

func NewAssessmentController(
	attemptService service.AttemptService,
	summaryService service.SummaryService,
	submissionService service.SubmissionService,
) *AssessmentController {
	return &AssessmentController{
		attemptService:    attemptService,
		summaryService:    summaryService,
		submissionService: submissionService,
	}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), dto.ErrorResponse{Message: err.Error()})
}

// StartQuiz godoc
// @Summary (Student) Start a quiz
// @Description Returns the quiz questions with correct-answer flags stripped. Creates no record.
// @Tags Student - Quizzes
// @Produce json
// @Param course_id path int true "Course ID"
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizStartDTO
// @Failure 404 {object} dto.ErrorResponse "Quiz or enrolment not found"
// @Failure 409 {object} dto.ErrorResponse "Outside the open window or already attempted"
// @Security BearerAuth
// @Router /courses/{course_id}/quizzes/{quiz_id}/start [get]
func (c *AssessmentController) StartQuiz(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	quizID, ok := parseUintParam(ctx, "quiz_id")
	if !ok {
		return
	}
	caller := auth.CallerFromContext(ctx)

	quiz, err := c.attemptService.StartQuiz(caller, courseID, quizID)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Msg("StartQuiz failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// FinishQuiz godoc
// @Summary (Student) Submit all answers for a quiz
// @Description Validates the window, scores choice responses and records the single terminal attempt.
// @Tags Student - Quizzes
// @Accept json
// @Produce json
// @Param course_id path int true "Course ID"
// @Param quiz_id path int true "Quiz ID"
// @Param submission body dto.QuizSubmissionDTO true "Responses"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Malformed or mismatched responses"
// @Failure 409 {object} dto.ErrorResponse "Outside the open window or already attempted"
// @Security BearerAuth
// @Router /courses/{course_id}/quizzes/{quiz_id}/attempts [post]
func (c *AssessmentController) FinishQuiz(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	quizID, ok := parseUintParam(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuizSubmissionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if len(req.Responses) == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Submission must contain at least one response."})
		return
	}
	caller := auth.CallerFromContext(ctx)

	attempt, err := c.attemptService.FinishQuiz(caller, courseID, quizID, req)
	if err != nil {
		log.Warn().Err(err).Uint("quizID", quizID).Uint("studentID", caller.UserID).Msg("FinishQuiz failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// GetAttemptID godoc
// @Summary (Student) Look up own attempt for a quiz
// @Tags Student - Quizzes
// @Produce json
// @Param course_id path int true "Course ID"
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.AttemptRefDTO
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /courses/{course_id}/quizzes/{quiz_id}/attempt [get]
func (c *AssessmentController) GetAttemptID(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	quizID, ok := parseUintParam(ctx, "quiz_id")
	if !ok {
		return
	}
	ref, err := c.attemptService.GetAttemptID(auth.CallerFromContext(ctx), courseID, quizID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ref)
}

// GetAttemptDetails godoc
// @Summary (Student) Get one attempt with responses
// @Description Marks are withheld until every response is marked and the quiz has closed.
// @Tags Student - Quizzes
// @Produce json
// @Param course_id path int true "Course ID"
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another student"
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /courses/{course_id}/attempts/{attempt_id} [get]
func (c *AssessmentController) GetAttemptDetails(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	attemptID, ok := parseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	detail, err := c.attemptService.GetAttemptDetails(auth.CallerFromContext(ctx), courseID, attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// GetTagSummary godoc
// @Summary Get a student's tag mastery summary
// @Tags Student - Analytics
// @Produce json
// @Param course_id path int true "Course ID"
// @Param student_id path int true "Student ID"
// @Success 200 {object} dto.TagSummaryDTO
// @Failure 403 {object} dto.ErrorResponse "Students may only view their own summary"
// @Security BearerAuth
// @Router /courses/{course_id}/students/{student_id}/tag-summary [get]
func (c *AssessmentController) GetTagSummary(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	studentID, ok := parseUintParam(ctx, "student_id")
	if !ok {
		return
	}
	summary, err := c.summaryService.GetStudentTagSummary(auth.CallerFromContext(ctx), courseID, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GetGradeSummary godoc
// @Summary Get a student's grade summary
// @Description Quiz marks appear only once fully marked and closed (or for admins); assignment marks appear once graded.
// @Tags Student - Analytics
// @Produce json
// @Param course_id path int true "Course ID"
// @Param student_id path int true "Student ID"
// @Success 200 {object} dto.GradeSummaryDTO
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /courses/{course_id}/students/{student_id}/grade-summary [get]
func (c *AssessmentController) GetGradeSummary(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	studentID, ok := parseUintParam(ctx, "student_id")
	if !ok {
		return
	}
	summary, err := c.summaryService.GetStudentGradeSummary(auth.CallerFromContext(ctx), courseID, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GetIncorrectQuestions godoc
// @Summary Get a student's incorrectly answered questions
// @Tags Student - Analytics
// @Produce json
// @Param course_id path int true "Course ID"
// @Param student_id path int true "Student ID"
// @Success 200 {array} dto.IncorrectQuestionDTO
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /courses/{course_id}/students/{student_id}/incorrect-questions [get]
func (c *AssessmentController) GetIncorrectQuestions(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	studentID, ok := parseUintParam(ctx, "student_id")
	if !ok {
		return
	}
	questions, err := c.summaryService.GetStudentIncorrectQuestions(auth.CallerFromContext(ctx), courseID, studentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// SubmitAssignment godoc
// @Summary (Student) Submit a file for an assignment
// @Description Each call appends a new submission; the most recent one is authoritative.
// @Tags Student - Assignments
// @Accept multipart/form-data
// @Produce json
// @Param course_id path int true "Course ID"
// @Param assignment_id path int true "Assignment ID"
// @Param title formData string true "Submission title"
// @Param file formData file true "Submission file"
// @Success 200 {object} dto.SubmissionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /courses/{course_id}/assignments/{assignment_id}/submissions [post]
func (c *AssessmentController) SubmitAssignment(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	assignmentID, ok := parseUintParam(ctx, "assignment_id")
	if !ok {
		return
	}
	title := ctx.PostForm("title")
	if title == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Submission title is required"})
		return
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Submission file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Could not read submission file"})
		return
	}
	defer file.Close()

	caller := auth.CallerFromContext(ctx)
	submission, err := c.submissionService.SubmitAssignment(caller, courseID, assignmentID, title, fileHeader.Filename, file)
	if err != nil {
		log.Warn().Err(err).Uint("assignmentID", assignmentID).Msg("SubmitAssignment failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submission)
}

// ListMySubmissions godoc
// @Summary (Student) List own assignment submissions in a course
// @Tags Student - Assignments
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {array} dto.SubmissionDTO
// @Security BearerAuth
// @Router /courses/{course_id}/my-submissions [get]
func (c *AssessmentController) ListMySubmissions(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	submissions, err := c.submissionService.ListMySubmissions(auth.CallerFromContext(ctx), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submissions)
}

// DownloadSubmission godoc
// @Summary Resolve the download URL for a submission
// @Tags Student - Assignments
// @Produce json
// @Param submission_id path int true "Submission ID"
// @Success 200 {object} dto.SubmissionDownloadDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /submissions/{submission_id}/download [get]
func (c *AssessmentController) DownloadSubmission(ctx *gin.Context) {
	submissionID, ok := parseUintParam(ctx, "submission_id")
	if !ok {
		return
	}
	download, err := c.submissionService.GetDownloadURL(auth.CallerFromContext(ctx), submissionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, download)
}
