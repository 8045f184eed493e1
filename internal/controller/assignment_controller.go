package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// ListAssignments godoc
// @Summary 课程作业列表
// @Tags 作业
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Assignment}
// @Failure 403 {object} util.Response "未报名"
// @Router /api/courses/{id}/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	list, err := c.AssignmentService.ListByCourse(util.ActorFromContext(ctx), courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetAssignment godoc
// @Summary 作业详情
// @Tags 作业
// @Produce json
// @Security BearerAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	a, err := c.AssignmentService.Get(util.ActorFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// CreateAssignment godoc
// @Summary 布置作业
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.AssignmentInput true "作业信息"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Router /api/courses/{id}/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.AssignmentInput
	if !bindJSON(ctx, &req) {
		return
	}

	a, err := c.AssignmentService.Create(util.ActorFromContext(ctx), courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// UpdateAssignment godoc
// @Summary 更新作业
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作业ID"
// @Param body body service.AssignmentInput true "作业信息"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /api/assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.AssignmentInput
	if !bindJSON(ctx, &req) {
		return
	}

	a, err := c.AssignmentService.Update(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// DeleteAssignment godoc
// @Summary 删除作业及提交
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response
// @Router /api/assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.AssignmentService.Delete(util.ActorFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Submit godoc
// @Summary 提交作业
// @Description 批改前可以重复提交覆盖
// @Tags 作业
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作业ID"
// @Param body body service.SubmissionInput true "提交内容"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 403 {object} util.Response "未报名"
// @Failure 409 {object} util.Response "已批改，不能再提交"
// @Router /api/assignments/{id}/submissions [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.SubmissionInput
	if !bindJSON(ctx, &req) {
		return
	}

	sub, err := c.AssignmentService.Submit(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// ListSubmissions godoc
// @Summary 作业提交列表
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "作业ID"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/assignments/{id}/submissions [get]
func (c *AssignmentController) ListSubmissions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	subs, err := c.AssignmentService.ListSubmissions(util.ActorFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// Grade godoc
// @Summary 批改作业
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "提交ID"
// @Param body body service.GradeInput true "分数和评语"
// @Success 200 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "分数超出范围"
// @Router /api/submissions/{id}/grade [put]
func (c *AssignmentController) Grade(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.GradeInput
	if !bindJSON(ctx, &req) {
		return
	}

	sub, err := c.AssignmentService.Grade(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
