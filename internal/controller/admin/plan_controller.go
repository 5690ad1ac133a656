package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/controller"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/service"
)

type PlanController struct {
	entitlementService service.EntitlementService
}

func NewPlanController(es service.EntitlementService) *PlanController {
	return &PlanController{entitlementService: es}
}

// CreatePlan godoc
// @Summary (Admin) Create a subscription plan
// @Description exams_limit of -1 means unlimited.
// @Tags Admin - Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body dto.CreatePlanRequest true "Plan"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /admin/plans [post]
func (c *PlanController) CreatePlan(ctx *gin.Context) {
	var req dto.CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.entitlementService.CreatePlan(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// AssignPlan godoc
// @Summary (Admin) Activate a plan for a user
// @Description Called once payment has been confirmed. Starts a new period and resets the exam usage counter.
// @Tags Admin - Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body dto.AssignPlanRequest true "User and plan"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Plan not found"
// @Router /admin/subscriptions [post]
func (c *PlanController) AssignPlan(ctx *gin.Context) {
	var req dto.AssignPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.entitlementService.AssignPlan(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *PlanController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/plans", c.CreatePlan)
	rg.POST("/subscriptions", c.AssignPlan)
}
