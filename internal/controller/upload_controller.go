package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipart 表单边界和其他字段的余量
const multipartOverhead = 1 << 20

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

func (c *UploadController) handle(ctx *gin.Context, kind string) {
	limit := c.UploadService.Limits.MaxUploadBytes(kind)
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit+multipartOverhead)

	fh, err := ctx.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			util.HandleError(ctx, util.ErrFileTooLarge)
			return
		}
		util.BadRequest(ctx, "file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	result, err := c.UploadService.Upload(ctx.Request.Context(), kind, fh.Filename, fh.Size, f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// UploadVideo godoc
// @Summary 上传讲座视频
// @Description 只按扩展名校验 (.mp4/.webm/.avi/.mov)，不信任客户端声明的类型；返回时长（探测成功时）
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.UploadResult}
// @Failure 400 {object} util.Response "文件类型不支持或超过大小限制"
// @Router /api/upload/video [post]
func (c *UploadController) UploadVideo(ctx *gin.Context) {
	c.handle(ctx, util.UploadVideo)
}

// UploadDocument godoc
// @Summary 上传课程资料
// @Description 允许 .pdf/.doc/.docx/.txt/.ppt/.pptx
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文档"
// @Success 200 {object} util.Response{data=model.UploadResult}
// @Failure 400 {object} util.Response "文件类型不支持或超过大小限制"
// @Router /api/upload/document [post]
func (c *UploadController) UploadDocument(ctx *gin.Context) {
	c.handle(ctx, util.UploadDocument)
}
