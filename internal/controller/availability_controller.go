package controller

import (
	"errors"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/service"
	"flightschool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AvailabilityController struct {
	AvailabilityService *service.AvailabilityService
}

func NewAvailabilityController(availabilityService *service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{AvailabilityService: availabilityService}
}

// AvailabilityRequest 时间窗创建/更新请求，ISO-8601 时间
// swagger:model AvailabilityRequest
type AvailabilityRequest struct {
	InstructorID uint   `json:"instructorId"`
	StartTime    string `json:"startTime" binding:"required"`
	EndTime      string `json:"endTime" binding:"required"`
}

// Create godoc
// @Summary 开放可预约时间窗
// @Description 教员开放一段可被学员预约的时间；与既有时间窗重叠会被拒绝
// @Tags 时间窗
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AvailabilityRequest true "时间窗信息"
// @Success 201 {object} util.Response{data=model.Availability} "创建成功"
// @Failure 400 {object} util.ErrorResponse "时间区间非法"
// @Failure 409 {object} util.ErrorResponse "与既有时间窗重叠"
// @Router /api/availabilities [post]
func (c *AvailabilityController) Create(ctx *gin.Context) {
	var req AvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	instructorID := req.InstructorID
	// 教员只能为自己开放时间窗，管理员可代任意教员操作
	if claims.Role != model.Admin || instructorID == 0 {
		instructorID = claims.UserID
	}

	start, end, err := service.ParseTimeSlot(req.StartTime, req.EndTime)
	if err != nil {
		util.DomainError(ctx, 400, util.CodeInvalidTimeSlot, err.Error())
		return
	}

	a, err := c.AvailabilityService.CreateAvailability(claims.TenantID, instructorID, start, end)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// Update godoc
// @Summary 修改时间窗
// @Tags 时间窗
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path string true "时间窗ID"
// @Param   body body AvailabilityRequest true "新的起止时间"
// @Success 200 {object} util.Response{data=model.Availability} "成功"
// @Failure 404 {object} util.Response "时间窗不存在"
// @Failure 409 {object} util.ErrorResponse "与既有时间窗重叠"
// @Router /api/availabilities/{id} [put]
func (c *AvailabilityController) Update(ctx *gin.Context) {
	var req AvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	start, end, err := service.ParseTimeSlot(req.StartTime, req.EndTime)
	if err != nil {
		util.DomainError(ctx, 400, util.CodeInvalidTimeSlot, err.Error())
		return
	}

	a, err := c.AvailabilityService.UpdateAvailability(claims.TenantID, ctx.Param("id"), start, end)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// Delete godoc
// @Summary 删除时间窗
// @Tags 时间窗
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "时间窗ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "时间窗不存在"
// @Router /api/availabilities/{id} [delete]
func (c *AvailabilityController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.AvailabilityService.DeleteAvailability(claims.TenantID, ctx.Param("id")); err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary 教员时间窗列表
// @Description 不带 instructorId 参数时返回当前用户自己的时间窗
// @Tags 时间窗
// @Produce  json
// @Security ApiKeyAuth
// @Param   instructorId query int false "教员ID"
// @Success 200 {object} util.Response{data=[]model.Availability} "成功"
// @Router /api/availabilities [get]
func (c *AvailabilityController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	instructorID := util.MustParseUint(ctx.Query("instructorId"))
	if instructorID == 0 {
		instructorID = claims.UserID
	}

	list, err := c.AvailabilityService.ListAvailability(claims.TenantID, instructorID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

func (c *AvailabilityController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidTimeSlot):
		util.DomainError(ctx, 400, util.CodeInvalidTimeSlot, err.Error())
	case errors.Is(err, util.ErrAvailabilityOverlap):
		util.DomainError(ctx, 409, util.CodeAvailabilityOverlap, err.Error())
	case errors.Is(err, util.ErrAvailabilityNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
