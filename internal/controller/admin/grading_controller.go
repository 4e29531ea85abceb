package admin

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

type GradingController struct {
	gradingService service.GradingService
	summaryService service.SummaryService
}

func NewGradingController(gradingService service.GradingService, summaryService service.SummaryService) *GradingController {
	return &GradingController{gradingService: gradingService, summaryService: summaryService}
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

// GradeResponse godoc
// @Summary (Admin) Grade or re-grade an open question response
// @Tags Admin - Grading
// @Accept json
// @Produce json
// @Param course_id path int true "Course ID"
// @Param response_id path int true "Response ID"
// @Param grade body dto.GradeResponseDTO true "Mark to apply"
// @Success 204 "Mark applied"
// @Failure 400 {object} dto.ErrorResponse "Mark out of range"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/courses/{course_id}/responses/{response_id}/mark [put]
func (c *GradingController) GradeResponse(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	responseID, ok := parseUintParam(ctx, "response_id")
	if !ok {
		return
	}
	var req dto.GradeResponseDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	caller := auth.CallerFromContext(ctx)
	if err := c.gradingService.GradeQuestionResponse(caller, courseID, responseID, *req.Mark); err != nil {
		log.Warn().Err(err).Uint("responseID", responseID).Msg("GradeResponse failed")
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GradeSubmission godoc
// @Summary (Admin) Grade an assignment submission
// @Tags Admin - Grading
// @Accept json
// @Produce json
// @Param course_id path int true "Course ID"
// @Param submission_id path int true "Submission ID"
// @Param grade body dto.GradeSubmissionDTO true "Mark, comment and tags"
// @Success 204 "Grade applied"
// @Failure 400 {object} dto.ErrorResponse "Mark out of range"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/courses/{course_id}/submissions/{submission_id}/grade [put]
func (c *GradingController) GradeSubmission(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	submissionID, ok := parseUintParam(ctx, "submission_id")
	if !ok {
		return
	}
	var req dto.GradeSubmissionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	caller := auth.CallerFromContext(ctx)
	if err := c.gradingService.GradeAssignmentSubmission(caller, courseID, submissionID, req); err != nil {
		log.Warn().Err(err).Uint("submissionID", submissionID).Msg("GradeSubmission failed")
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListUngradedResponses godoc
// @Summary (Admin) List pending quiz responses grouped by question
// @Tags Admin - Grading
// @Produce json
// @Param course_id path int true "Course ID"
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {array} dto.UngradedQuestionGroupDTO
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/courses/{course_id}/quizzes/{quiz_id}/ungraded-responses [get]
func (c *GradingController) ListUngradedResponses(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	quizID, ok := parseUintParam(ctx, "quiz_id")
	if !ok {
		return
	}
	groups, err := c.gradingService.ListUngradedResponses(auth.CallerFromContext(ctx), courseID, quizID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, groups)
}

// ListUngradedSubmissions godoc
// @Summary (Admin) List ungraded assignment submissions
// @Tags Admin - Grading
// @Produce json
// @Param course_id path int true "Course ID"
// @Param assignment_id path int true "Assignment ID"
// @Success 200 {array} dto.UngradedSubmissionDTO
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/courses/{course_id}/assignments/{assignment_id}/ungraded-submissions [get]
func (c *GradingController) ListUngradedSubmissions(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	assignmentID, ok := parseUintParam(ctx, "assignment_id")
	if !ok {
		return
	}
	submissions, err := c.gradingService.ListUngradedSubmissions(auth.CallerFromContext(ctx), courseID, assignmentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submissions)
}

// GetCourseSummary godoc
// @Summary (Admin) Course-wide tag totals, grade rows and commonly missed questions
// @Tags Admin - Analytics
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {object} dto.CourseSummaryDTO
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/courses/{course_id}/summary [get]
func (c *GradingController) GetCourseSummary(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "course_id")
	if !ok {
		return
	}
	summary, err := c.summaryService.GetCourseSummary(auth.CallerFromContext(ctx), courseID)
	if err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Msg("GetCourseSummary failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
