package controller

import (
	"errors"
	"net/http"

	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码，其余按 500 记录
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrEnrollmentNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidChoice),
		errors.Is(err, util.ErrInvalidCatalog),
		errors.Is(err, util.ErrInvalidOccupation):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func courseIDParam(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseUintStrict(ctx.Param("id"))
	if !ok {
		util.Error(ctx, http.StatusBadRequest, "invalid course id")
	}
	return id, ok
}
