package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// EnrollRequest 报名请求
// swagger:model EnrollRequest
type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// ListEnrollments godoc
// @Summary 我的报名
// @Tags 报名
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	enrollments, err := c.EnrollmentService.ListByUser(util.ActorFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// Enroll godoc
// @Summary 报名课程
// @Tags 报名
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EnrollRequest true "课程"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 400 {object} util.Response "不能报名自己的课程"
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "已经报名"
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(util.ActorFromContext(ctx).UserID, req.CourseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// GetEnrollment godoc
// @Summary 我在某课程的报名记录
// @Tags 报名
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "未报名"
// @Router /api/courses/{id}/enrollment [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	enrollment, err := c.EnrollmentService.GetByCourse(util.ActorFromContext(ctx).UserID, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}
