package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InstructorController struct {
	InstructorService  *service.InstructorService
	TestimonialService *service.TestimonialService
}

func NewInstructorController(instructorService *service.InstructorService, testimonialService *service.TestimonialService) *InstructorController {
	return &InstructorController{
		InstructorService:  instructorService,
		TestimonialService: testimonialService,
	}
}

// ListInstructors godoc
// @Summary 讲师列表
// @Tags 讲师
// @Produce json
// @Success 200 {object} util.Response{data=[]model.InstructorProfile}
// @Router /api/instructors [get]
func (c *InstructorController) ListInstructors(ctx *gin.Context) {
	list, err := c.InstructorService.List()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetInstructor godoc
// @Summary 讲师详情
// @Tags 讲师
// @Produce json
// @Param id path int true "讲师用户ID"
// @Success 200 {object} util.Response{data=model.InstructorProfile}
// @Failure 404 {object} util.Response "讲师不存在"
// @Router /api/instructors/{id} [get]
func (c *InstructorController) GetInstructor(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.InstructorService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// Dashboard godoc
// @Summary 讲师仪表盘
// @Tags 讲师
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.InstructorDashboard}
// @Router /api/instructor/dashboard [get]
func (c *InstructorController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.InstructorService.Dashboard(util.ActorFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// ListTestimonials godoc
// @Summary 学员推荐语
// @Tags 首页
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Testimonial}
// @Router /api/testimonials [get]
func (c *InstructorController) ListTestimonials(ctx *gin.Context) {
	list, err := c.TestimonialService.List()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// CreateTestimonial godoc
// @Summary 新增推荐语
// @Tags 首页
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.TestimonialInput true "推荐语"
// @Success 201 {object} util.Response{data=model.Testimonial}
// @Router /api/testimonials [post]
func (c *InstructorController) CreateTestimonial(ctx *gin.Context) {
	var req service.TestimonialInput
	if !bindJSON(ctx, &req) {
		return
	}

	t, err := c.TestimonialService.Create(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, t)
}
