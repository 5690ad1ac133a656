package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/middleware"
	"github.com/lshigami/eps-topik/internal/service"
	"github.com/rs/zerolog/log"
)

// RespondError maps service errors to HTTP responses. Unknown errors are
// logged and returned as 500 without their text.
func RespondError(ctx *gin.Context, err error) {
	var quota *service.QuotaExceededError
	var unknown *service.UnknownQuestionsError
	switch {
	case errors.As(err, &quota):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{
			Message: "Exam limit reached for your plan",
			Details: dto.QuotaExceededDetails{
				ExamsUsed:  quota.ExamsUsed,
				ExamsLimit: quota.ExamsLimit,
				PlanName:   quota.PlanName,
			},
		})
	case errors.As(err, &unknown):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "Some answers reference questions outside this attempt",
			Details: dto.UnknownQuestionsDetails{UnknownQuestionIDs: unknown.QuestionIDs},
		})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Not found"})
	case errors.Is(err, service.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrReviewAccessDenied):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Str("requestID", middleware.RequestID(ctx)).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}

// BindError answers a failed ShouldBind* with 400.
func BindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
}

// BindOptionalJSON binds a JSON body that the client may leave out. A
// missing or empty body keeps obj at its zero value, whatever
// Content-Length or Transfer-Encoding the request carried.
func BindOptionalJSON(ctx *gin.Context, obj interface{}) bool {
	if ctx.Request.Body == nil || ctx.Request.Body == http.NoBody {
		return true
	}
	if err := ctx.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		BindError(ctx, err)
		return false
	}
	return true
}

// ParseIDParam reads a positive numeric path parameter, answering 400 when
// it is malformed.
func ParseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}
