package controller

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// UpdateProgressRequest 讲座进度上报，字段缺省表示不修改
// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	Completed           *bool `json:"completed"`
	LastWatchedPosition *int  `json:"lastWatchedPosition" binding:"omitempty,min=0"`
}

// GetLectureProgress godoc
// @Summary 讲座观看进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "讲座ID"
// @Success 200 {object} util.Response{data=model.LectureProgress}
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response "讲座不存在"
// @Router /api/lectures/{id}/progress [get]
func (c *ProgressController) GetLectureProgress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetLectureProgress(util.ActorFromContext(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// UpdateLectureProgress godoc
// @Summary 上报讲座进度
// @Description 更新讲座完成状态/播放位置，并重新计算课程完成百分比
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "讲座ID"
// @Param body body UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.ProgressResult}
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response "讲座、章节或课程不存在"
// @Router /api/lectures/{id}/progress [post]
func (c *ProgressController) UpdateLectureProgress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if req.Completed == nil && req.LastWatchedPosition == nil {
		util.BadRequest(ctx, "completed or lastWatchedPosition is required")
		return
	}

	result, err := c.ProgressService.UpdateLectureProgress(util.ActorFromContext(ctx).UserID, id, model.ProgressUpdate{
		Completed:           req.Completed,
		LastWatchedPosition: req.LastWatchedPosition,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCourseProgress godoc
// @Summary 课程整体进度
// @Description 报名记录和逐讲进度（以讲座ID为键）
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Failure 403 {object} util.Response "未报名"
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	progress, err := c.ProgressService.GetCourseProgress(util.ActorFromContext(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
