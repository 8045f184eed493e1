package controller

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCoursesQuery 课程列表查询参数
// swagger:model ListCoursesQuery
type ListCoursesQuery struct {
	Category     string `form:"category"`
	Level        string `form:"level"`
	Search       string `form:"search"`
	InstructorID uint   `form:"instructorId"`
	Sort         string `form:"sort" binding:"omitempty,oneof=newest popular rating price_asc price_desc"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	Limit        int    `form:"limit" binding:"omitempty,min=1"`
}

// ListCourses godoc
// @Summary 课程列表
// @Description 支持分类、难度、关键词、讲师筛选，分页和排序
// @Tags 课程
// @Produce json
// @Param category query string false "分类"
// @Param level query string false "难度"
// @Param search query string false "标题/简介关键词"
// @Param instructorId query int false "讲师ID"
// @Param sort query string false "newest|popular|rating|price_asc|price_desc"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var q ListCoursesQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	filter := model.CourseFilter{
		Category:     q.Category,
		Level:        q.Level,
		Search:       q.Search,
		InstructorID: q.InstructorID,
		Sort:         q.Sort,
		Page:         q.Page,
		Limit:        q.Limit,
	}
	courses, total, err := c.CourseService.List(util.ActorFromContext(ctx), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	page, limit := util.ParsePage(strconv.Itoa(q.Page), strconv.Itoa(q.Limit), 12, 100)
	util.Page(ctx, courses, total, page, limit)
}

// Categories godoc
// @Summary 课程分类及数量
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]model.CategoryCount}
// @Router /api/courses/categories [get]
func (c *CourseController) Categories(ctx *gin.Context) {
	categories, err := c.CourseService.Categories()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// GetCourse godoc
// @Summary 课程详情
// @Description 包含讲师、章节目录和当前用户的报名状态；未报名时非试看讲座不返回视频和正文
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseDetail}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.CourseService.Detail(util.ActorFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "需要讲师权限"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseInput
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.Create(util.ActorFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "不是课程作者"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseInput
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.Update(util.ActorFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "不是课程作者"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CourseService.Delete(util.ActorFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadThumbnail godoc
// @Summary 上传课程封面
// @Description 图片缩放到 1280x720 以内并转为 WebP
// @Tags 课程管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param file formData file true "封面图片 (.jpg/.jpeg/.png/.webp)"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "文件类型不支持或图片无法解析"
// @Router /api/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	limit := c.CourseService.Upload.MaxUploadBytes(util.UploadImage)
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit+multipartOverhead)

	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	course, err := c.CourseService.UploadThumbnail(ctx.Request.Context(), util.ActorFromContext(ctx), id, fh.Filename, fh.Size, f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}
