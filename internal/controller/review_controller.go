package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

// ListReviews godoc
// @Summary 课程评价
// @Tags 评价
// @Produce json
// @Param id path int true "课程ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses/{id}/reviews [get]
func (c *ReviewController) ListReviews(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"), 10, 50)

	reviews, total, err := c.ReviewService.List(courseID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, reviews, total, page, limit)
}

// CreateReview godoc
// @Summary 评价课程
// @Description 只有报名学员可以评价，每人每门课一次
// @Tags 评价
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param body body service.ReviewInput true "评分 1-5 和评论"
// @Success 201 {object} util.Response{data=model.Review}
// @Failure 400 {object} util.Response "评分不合法"
// @Failure 403 {object} util.Response "未报名"
// @Failure 409 {object} util.Response "已经评价过"
// @Router /api/courses/{id}/reviews [post]
func (c *ReviewController) CreateReview(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.ReviewInput
	if !bindJSON(ctx, &req) {
		return
	}

	review, err := c.ReviewService.Create(util.ActorFromContext(ctx).UserID, courseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, review)
}
