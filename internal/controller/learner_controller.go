package controller

import (
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearnerController struct {
	LearnerService *service.LearnerService
}

func NewLearnerController(learnerService *service.LearnerService) *LearnerController {
	return &LearnerController{LearnerService: learnerService}
}

// @Summary 获取学员资料
// @Tags 学员
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Learner}
// @Router /api/learner/profile [get]
func (c *LearnerController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	profile, err := c.LearnerService.GetProfile(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 更新学员资料
// @Description occupation: student / developer / data_scientist / dba
// @Tags 学员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.Learner}
// @Failure 400 {object} util.Response
// @Router /api/learner/profile [put]
func (c *LearnerController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	profile, err := c.LearnerService.UpdateProfile(user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}
