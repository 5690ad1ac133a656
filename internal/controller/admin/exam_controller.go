package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/controller"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examService service.ExamService
}

func NewExamController(es service.ExamService) *ExamController {
	return &ExamController{examService: es}
}

// CreateExam godoc
// @Summary (Admin) Create an exam
// @Description Every referenced question must exist and match the list it is in (reading or listening).
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body dto.ExamUpsertRequest true "Exam"
// @Success 201 {object} dto.ExamSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateExam: Invalid request payload")
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.examService.CreateExam(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListExams godoc
// @Summary (Admin) List all exams, inactive included
// @Tags Admin - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_type query string false "Exam type"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ExamListResponse
// @Router /admin/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	var query dto.ListExamsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.examService.ListExams(ctx.Request.Context(), query, false)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateExam godoc
// @Summary (Admin) Replace an exam definition
// @Description Attempts already started keep their original answer slots.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param exam body dto.ExamUpsertRequest true "Exam"
// @Success 200 {object} dto.ExamSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ExamUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.examService.UpdateExam(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteExam godoc
// @Summary (Admin) Delete an exam and all of its attempts
// @Tags Admin - Exams
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.examService.DeleteExam(ctx.Request.Context(), id); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *ExamController) RegisterRoutes(rg *gin.RouterGroup) {
	exams := rg.Group("/exams")
	exams.POST("", c.CreateExam)
	exams.GET("", c.ListExams)
	exams.PUT("/:id", c.UpdateExam)
	exams.DELETE("/:id", c.DeleteExam)
}
