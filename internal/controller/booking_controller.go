package controller

import (
	"errors"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/service"
	"flightschool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	BookingService *service.BookingService
}

func NewBookingController(bookingService *service.BookingService) *BookingController {
	return &BookingController{BookingService: bookingService}
}

// CreateBookingRequest 创建预约请求
// swagger:model CreateBookingRequest
type CreateBookingRequest struct {
	InstructorID uint   `json:"instructorId" binding:"required"`
	StartTime    string `json:"startTime" binding:"required"`
	EndTime      string `json:"endTime" binding:"required"`
}

// Create godoc
// @Summary 创建飞行课预约
// @Description 学员预约教员的某个时段；时段必须落在教员开放的时间窗内，且不得与该教员已生效的预约重叠
// @Tags 预约
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateBookingRequest true "预约信息"
// @Success 201 {object} util.Response{data=model.Booking} "创建成功"
// @Failure 400 {object} util.ErrorResponse "时间区间非法"
// @Failure 409 {object} util.ErrorResponse "教员不可约或时段冲突"
// @Router /api/bookings [post]
func (c *BookingController) Create(ctx *gin.Context) {
	var req CreateBookingRequest
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

	booking, err := c.BookingService.CreateBooking(claims.TenantID, req.InstructorID, claims.UserID, start, end)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Created(ctx, booking)
}

// List godoc
// @Summary 租户预约列表
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Booking} "成功"
// @Router /api/bookings [get]
func (c *BookingController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.BookingService.ListBookings(claims.TenantID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// Get godoc
// @Summary 预约详情
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "预约ID"
// @Success 200 {object} util.Response{data=model.Booking} "成功"
// @Failure 404 {object} util.ErrorResponse "预约不存在"
// @Router /api/bookings/{id} [get]
func (c *BookingController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	booking, err := c.BookingService.GetBooking(claims.TenantID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, booking)
}

// Approve godoc
// @Summary 审批通过预约
// @Description requested -> approved；通过后启动指派 SLA 计时，超时未指派将升级告警
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "预约ID"
// @Success 200 {object} util.Response{data=model.Booking} "成功"
// @Failure 404 {object} util.ErrorResponse "预约不存在"
// @Failure 409 {object} util.ErrorResponse "非法状态迁移"
// @Router /api/bookings/{id}/approve [post]
func (c *BookingController) Approve(ctx *gin.Context) {
	c.transition(ctx, c.BookingService.Approve)
}

// Assign godoc
// @Summary 指派教员
// @Description approved -> assigned；满足 SLA 后升级任务自动失效
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "预约ID"
// @Success 200 {object} util.Response{data=model.Booking} "成功"
// @Failure 409 {object} util.ErrorResponse "非法状态迁移"
// @Router /api/bookings/{id}/assign [post]
func (c *BookingController) Assign(ctx *gin.Context) {
	c.transition(ctx, c.BookingService.Assign)
}

// Complete godoc
// @Summary 完成飞行课
// @Description assigned -> completed，终态
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "预约ID"
// @Success 200 {object} util.Response{data=model.Booking} "成功"
// @Failure 409 {object} util.ErrorResponse "非法状态迁移"
// @Router /api/bookings/{id}/complete [post]
func (c *BookingController) Complete(ctx *gin.Context) {
	c.transition(ctx, c.BookingService.Complete)
}

// Cancel godoc
// @Summary 取消预约
// @Description requested/approved/assigned -> cancelled，终态
// @Tags 预约
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "预约ID"
// @Success 200 {object} util.Response{data=model.Booking} "成功"
// @Failure 409 {object} util.ErrorResponse "非法状态迁移"
// @Router /api/bookings/{id}/cancel [post]
func (c *BookingController) Cancel(ctx *gin.Context) {
	c.transition(ctx, c.BookingService.Cancel)
}

func (c *BookingController) transition(ctx *gin.Context, op func(uint, string) (*model.Booking, error)) {
	claims := util.GetUserFromContext(ctx)
	booking, err := op(claims.TenantID, ctx.Param("id"))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, booking)
}

func (c *BookingController) writeError(ctx *gin.Context, err error) {
	var transitionErr *util.InvalidTransitionError
	switch {
	case errors.Is(err, util.ErrInvalidTimeSlot):
		util.DomainError(ctx, 400, util.CodeInvalidTimeSlot, err.Error())
	case errors.Is(err, util.ErrInstructorNotAvailable):
		util.DomainError(ctx, 409, util.CodeInstructorNotAvailable, err.Error())
	case errors.Is(err, util.ErrInstructorAlreadyBooked):
		util.DomainError(ctx, 409, util.CodeInstructorAlreadyBooked, err.Error())
	case errors.Is(err, util.ErrBookingNotFound):
		util.DomainError(ctx, 404, util.CodeBookingNotFound, err.Error())
	case errors.As(err, &transitionErr):
		util.DomainError(ctx, 409, util.CodeInvalidTransition, transitionErr.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
