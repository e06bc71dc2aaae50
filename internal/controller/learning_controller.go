package controller

import (
	"errors"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/service"
	"flightschool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningController struct {
	CourseService *service.CourseService
	QuizService   *service.QuizService
}

func NewLearningController(courseService *service.CourseService, quizService *service.QuizService) *LearningController {
	return &LearningController{
		CourseService: courseService,
		QuizService:   quizService,
	}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Router /api/courses [get]
func (c *LearningController) ListCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListCourses(claims.TenantID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情（含模块与课）
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *LearningController) GetCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.GetCourse(claims.TenantID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// GetLesson godoc
// @Summary 课内容
// @Description MCQ 课返回题目与选项，正确答案不下发
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课ID"
// @Success 200 {object} util.Response{data=service.StudentLesson} "成功"
// @Failure 404 {object} util.Response "课不存在"
// @Router /api/lessons/{id} [get]
func (c *LearningController) GetLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	lesson, err := c.CourseService.GetLessonForStudent(claims.TenantID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// SubmitQuizRequest 测验提交请求
// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers []model.AttemptAnswer `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 在线提交测验
// @Description 判分并触发 课 -> 模块 -> 课程 的完成级联
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path int true "课ID"
// @Param   body body SubmitQuizRequest true "作答"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 404 {object} util.Response "课不存在"
// @Router /api/lessons/{id}/submit [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.SubmitQuiz(claims.TenantID, claims.UserID, util.MustParseUint(ctx.Param("id")), req.Answers)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SyncOfflineRequest 离线补交请求，clientId 由客户端生成用于幂等去重
// swagger:model SyncOfflineRequest
type SyncOfflineRequest struct {
	ClientID string                `json:"clientId" binding:"required"`
	Answers  []model.AttemptAnswer `json:"answers" binding:"required"`
}

// SyncOffline godoc
// @Summary 离线测验补交
// @Description 同一 clientId 重复提交返回存量结果并带 duplicateSync 标记，不重复判分
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path int true "课ID"
// @Param   body body SyncOfflineRequest true "离线作答"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 404 {object} util.Response "课不存在"
// @Router /api/lessons/{id}/sync-offline [post]
func (c *LearningController) SyncOffline(ctx *gin.Context) {
	var req SyncOfflineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.SyncOfflineAttempt(claims.TenantID, claims.UserID, util.MustParseUint(ctx.Param("id")), req.ClientID, req.Answers)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// CompleteTextLesson godoc
// @Summary 标记文本课已读
// @Description 仅对 text 类型课有效，直接按通过处理并触发完成级联
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课ID"
// @Success 200 {object} util.Response{data=service.PropagationResult} "成功"
// @Failure 404 {object} util.Response "课不存在"
// @Router /api/lessons/{id}/complete [post]
func (c *LearningController) CompleteTextLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.CompleteTextLesson(claims.TenantID, claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCourseProgress godoc
// @Summary 学员课程进度概览
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=repository.CourseSummary} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/courses/{id} [get]
func (c *LearningController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	summary, err := c.CourseService.GetCourseProgress(claims.TenantID, claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// UploadLessonAttachment godoc
// @Summary 上传课件附件
// @Description 航图/讲义等课件，仅允许图片与 PDF
// @Tags 学习
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id   path int true "课ID"
// @Param   file formData file true "附件"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/lessons/{id}/attachment [post]
func (c *LearningController) UploadLessonAttachment(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}

	// 先做一次深度 MIME 嗅探，再重新打开用于上传
	probe, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	contentType, err := util.ValidateMimeType(probe, util.AllowedAttachmentTypes)
	probe.Close()
	if err != nil {
		util.BadRequest(ctx, "文件类型不支持: "+contentType)
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	claims := util.GetUserFromContext(ctx)
	url, err := c.CourseService.UploadLessonAttachment(
		ctx.Request.Context(),
		claims.TenantID,
		util.MustParseUint(ctx.Param("id")),
		file.Filename,
		src,
		file.Size,
		contentType,
	)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

func (c *LearningController) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
