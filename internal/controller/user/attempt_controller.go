package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/controller"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/middleware"
	"github.com/lshigami/eps-topik/internal/service"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(as service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: as}
}

// StartAttempt godoc
// @Summary Start or resume an exam attempt
// @Description Returns the caller's in-progress attempt for the exam if there is one, otherwise creates a new attempt after the plan quota check.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartAttemptRequest true "Exam to start"
// @Success 200 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Exam quota exceeded, details carry exams_used/exams_limit/plan_name"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /attempts/start [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.attemptService.Start(ctx.Request.Context(), middleware.UserID(ctx), req.ExamID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SaveAnswer godoc
// @Summary Save one answer
// @Description Overwrites the supplied fields of one answer slot. Unknown question ids are ignored.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body dto.SaveAnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerAckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/answer [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.attemptService.SaveAnswer(ctx.Request.Context(), middleware.UserID(ctx), attemptID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SaveAnswers godoc
// @Summary Save a batch of answers
// @Description Batch variant of SaveAnswer. With strict=true nothing is saved when any question id is unknown and the ids are returned.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param strict query bool false "Reject unknown question ids"
// @Param request body dto.SaveAnswersRequest true "Answers"
// @Success 200 {object} dto.AnswerAckResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid body or unknown question ids in strict mode"
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswers(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	strict, _ := strconv.ParseBool(ctx.Query("strict"))
	var req dto.SaveAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.attemptService.SaveAnswers(ctx.Request.Context(), middleware.UserID(ctx), attemptID, req, strict)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// MarkQuestion godoc
// @Summary Mark or unmark a question for review
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body dto.MarkQuestionRequest true "Mark"
// @Success 200 {object} dto.MarkedQuestionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/mark [put]
func (c *AttemptController) MarkQuestion(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.MarkQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.attemptService.Mark(ctx.Request.Context(), middleware.UserID(ctx), attemptID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// StartListening godoc
// @Summary Switch the attempt to the listening section
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body dto.StartListeningRequest false "Remaining time"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/listening [put]
func (c *AttemptController) StartListening(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.StartListeningRequest
	if !controller.BindOptionalJSON(ctx, &req) {
		return
	}
	resp, err := c.attemptService.StartListeningPhase(ctx.Request.Context(), middleware.UserID(ctx), attemptID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAttempt godoc
// @Summary Submit an attempt for scoring
// @Description Scores the attempt and updates exam and user statistics. A second submit returns 404.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Param request body dto.SubmitAttemptRequest false "Time spent and timeout flag"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/submit [put]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitAttemptRequest
	if !controller.BindOptionalJSON(ctx, &req) {
		return
	}
	resp, err := c.attemptService.Submit(ctx.Request.Context(), middleware.UserID(ctx), attemptID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AbandonAttempt godoc
// @Summary Abandon an in-progress attempt
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "No in-progress attempt"
// @Router /attempts/{id}/abandon [put]
func (c *AttemptController) AbandonAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Abandon(ctx.Request.Context(), middleware.UserID(ctx), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttempt godoc
// @Summary Get one of the caller's attempts
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Get(ctx.Request.Context(), middleware.UserID(ctx), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListAttempts godoc
// @Summary List the caller's attempts
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param exam_id query int false "Filter by exam"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.AttemptListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	var query dto.ListAttemptsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.attemptService.List(ctx.Request.Context(), middleware.UserID(ctx), query)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReviewAttempt godoc
// @Summary Review a scored attempt
// @Description Each answer joined with its question and correct answer, plus study advice when available. Requires a plan with review access.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 403 {object} dto.ErrorResponse "Plan has no review access"
// @Failure 404 {object} dto.ErrorResponse "No scored attempt"
// @Router /attempts/{id}/review [get]
func (c *AttemptController) ReviewAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Review(ctx.Request.Context(), middleware.UserID(ctx), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *AttemptController) RegisterRoutes(rg *gin.RouterGroup) {
	attempts := rg.Group("/attempts")
	attempts.POST("/start", c.StartAttempt)
	attempts.GET("", c.ListAttempts)
	attempts.GET("/:id", c.GetAttempt)
	attempts.GET("/:id/review", c.ReviewAttempt)
	attempts.PUT("/:id/answer", c.SaveAnswer)
	attempts.PUT("/:id/answers", c.SaveAnswers)
	attempts.PUT("/:id/mark", c.MarkQuestion)
	attempts.PUT("/:id/listening", c.StartListening)
	attempts.PUT("/:id/submit", c.SubmitAttempt)
	attempts.PUT("/:id/abandon", c.AbandonAttempt)
}
