package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/controller"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/middleware"
	"github.com/lshigami/eps-topik/internal/service"
)

// CatalogController serves the exam catalog, plans and the caller's own
// stats and subscription.
type CatalogController struct {
	examService        service.ExamService
	statsService       service.UserStatsService
	entitlementService service.EntitlementService
}

func NewCatalogController(es service.ExamService, ss service.UserStatsService, ents service.EntitlementService) *CatalogController {
	return &CatalogController{examService: es, statsService: ss, entitlementService: ents}
}

// ListExams godoc
// @Summary List active exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param exam_type query string false "full, reading-only, listening-only or practice"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ExamListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /exams [get]
func (c *CatalogController) ListExams(ctx *gin.Context) {
	var query dto.ListExamsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.examService.ListExams(ctx.Request.Context(), query, true)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetExam godoc
// @Summary Get an exam with its questions
// @Description Questions come in slot order and never include the correct answer.
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.ExamDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /exams/{id} [get]
func (c *CatalogController) GetExam(ctx *gin.Context) {
	examID, ok := controller.ParseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.examService.GetExamForUser(ctx.Request.Context(), examID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetMyStats godoc
// @Summary Get the caller's aggregate statistics
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserStatsResponse
// @Router /me/stats [get]
func (c *CatalogController) GetMyStats(ctx *gin.Context) {
	resp, err := c.statsService.GetStats(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetMySubscription godoc
// @Summary Get the caller's effective subscription
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubscriptionResponse
// @Router /me/subscription [get]
func (c *CatalogController) GetMySubscription(ctx *gin.Context) {
	resp, err := c.entitlementService.GetSubscription(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListPlans godoc
// @Summary List purchasable plans
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PlanResponse
// @Router /plans [get]
func (c *CatalogController) ListPlans(ctx *gin.Context) {
	resp, err := c.entitlementService.ListPlans(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *CatalogController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exams", c.ListExams)
	rg.GET("/exams/:id", c.GetExam)
	rg.GET("/plans", c.ListPlans)
	rg.GET("/me/stats", c.GetMyStats)
	rg.GET("/me/subscription", c.GetMySubscription)
}
