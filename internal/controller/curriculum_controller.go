package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// ListSections godoc
// @Summary 课程章节（含讲座）
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Section}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/sections [get]
func (c *CurriculumController) ListSections(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	sections, err := c.CurriculumService.ListSections(util.ActorFromContext(ctx), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// CreateSection godoc
// @Summary 新建章节
// @Description 不指定 order 时排在最后
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.SectionInput true "章节信息"
// @Success 201 {object} util.Response{data=model.Section}
// @Failure 403 {object} util.Response "不是课程作者"
// @Router /api/courses/{id}/sections [post]
func (c *CurriculumController) CreateSection(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SectionInput
	if !bindJSON(ctx, &req) {
		return
	}

	section, err := c.CurriculumService.CreateSection(util.ActorFromContext(ctx), courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// UpdateSection godoc
// @Summary 更新章节
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "章节ID"
// @Param body body service.SectionInput true "章节信息"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/sections/{id} [put]
func (c *CurriculumController) UpdateSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SectionInput
	if !bindJSON(ctx, &req) {
		return
	}

	section, err := c.CurriculumService.UpdateSection(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// DeleteSection godoc
// @Summary 删除章节及其讲座
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/sections/{id} [delete]
func (c *CurriculumController) DeleteSection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CurriculumService.DeleteSection(util.ActorFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListLectures godoc
// @Summary 章节下的讲座
// @Tags 课程
// @Produce json
// @Param id path int true "章节ID"
// @Success 200 {object} util.Response{data=[]model.Lecture}
// @Router /api/sections/{id}/lectures [get]
func (c *CurriculumController) ListLectures(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	lectures, err := c.CurriculumService.ListLectures(util.ActorFromContext(ctx), sectionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lectures)
}

// GetLecture godoc
// @Summary 讲座详情
// @Description 需要报名该课程，试看讲座除外
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "讲座ID"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response "讲座不存在"
// @Router /api/lectures/{id} [get]
func (c *CurriculumController) GetLecture(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	lecture, err := c.CurriculumService.GetLecture(util.ActorFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// CreateLecture godoc
// @Summary 新建讲座
// @Description 课程讲座数和所有报名进度会重新计算
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "章节ID"
// @Param body body service.LectureInput true "讲座信息"
// @Success 201 {object} util.Response{data=model.Lecture}
// @Router /api/sections/{id}/lectures [post]
func (c *CurriculumController) CreateLecture(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LectureInput
	if !bindJSON(ctx, &req) {
		return
	}

	lecture, err := c.CurriculumService.CreateLecture(util.ActorFromContext(ctx), sectionID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lecture)
}

// UpdateLecture godoc
// @Summary 更新讲座
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "讲座ID"
// @Param body body service.LectureInput true "讲座信息"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Router /api/lectures/{id} [put]
func (c *CurriculumController) UpdateLecture(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LectureInput
	if !bindJSON(ctx, &req) {
		return
	}

	lecture, err := c.CurriculumService.UpdateLecture(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// DeleteLecture godoc
// @Summary 删除讲座
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "讲座ID"
// @Success 200 {object} util.Response
// @Router /api/lectures/{id} [delete]
func (c *CurriculumController) DeleteLecture(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CurriculumService.DeleteLecture(util.ActorFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
