package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/controller"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/service"
	"github.com/rs/zerolog/log"
)

type QuestionController struct {
	questionService service.QuestionService
}

func NewQuestionController(qs service.QuestionService) *QuestionController {
	return &QuestionController{questionService: qs}
}

// CreateQuestion godoc
// @Summary (Admin) Create a question
// @Description Options need unique non-empty labels and correct_answer must be one of them.
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question body dto.QuestionUpsertRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuestion: Invalid request payload")
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.questionService.CreateQuestion(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListQuestions godoc
// @Summary (Admin) List questions
// @Tags Admin - Questions
// @Produce json
// @Security BearerAuth
// @Param type query string false "reading or listening"
// @Param topic query string false "Topic"
// @Param difficulty query string false "easy, medium or hard"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.QuestionListResponse
// @Router /admin/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var query dto.ListQuestionsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.questionService.ListQuestions(ctx.Request.Context(), query)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetQuestion godoc
// @Summary (Admin) Get a question with its answer key
// @Tags Admin - Questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.questionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateQuestion godoc
// @Summary (Admin) Replace a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param question body dto.QuestionUpsertRequest true "Question"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.QuestionUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.questionService.UpdateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Description Soft delete. Attempts that still reference it skip it when scoring.
// @Tags Admin - Questions
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *QuestionController) RegisterRoutes(rg *gin.RouterGroup) {
	questions := rg.Group("/questions")
	questions.POST("", c.CreateQuestion)
	questions.GET("", c.ListQuestions)
	questions.GET("/:id", c.GetQuestion)
	questions.PUT("/:id", c.UpdateQuestion)
	questions.DELETE("/:id", c.DeleteQuestion)
}
