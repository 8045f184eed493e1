package util

import (
	"edunest_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Page(c *gin.Context, list interface{}, total int64, page, limit int) {
	Success(c, PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c)
}

var statusByError = []struct {
	err    error
	status int
}{
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrSessionRevoked, http.StatusUnauthorized},

	{ErrPermissionDenied, http.StatusForbidden},
	{ErrNotCourseOwner, http.StatusForbidden},
	{ErrNotEnrolled, http.StatusForbidden},

	{ErrUserNotFound, http.StatusNotFound},
	{ErrCourseNotFound, http.StatusNotFound},
	{ErrSectionNotFound, http.StatusNotFound},
	{ErrLectureNotFound, http.StatusNotFound},
	{ErrEnrollmentMissing, http.StatusNotFound},
	{ErrAssignmentNotFound, http.StatusNotFound},
	{ErrSubmissionNotFound, http.StatusNotFound},
	{ErrEventNotFound, http.StatusNotFound},
	{ErrTestimonialNotFound, http.StatusNotFound},

	{ErrEmailRegistered, http.StatusConflict},
	{ErrUsernameTaken, http.StatusConflict},
	{ErrAlreadyEnrolled, http.StatusConflict},
	{ErrAlreadyReviewed, http.StatusConflict},
	{ErrAlreadyGraded, http.StatusConflict},

	{ErrInvalidInput, http.StatusBadRequest},
	{ErrOwnCourse, http.StatusBadRequest},
	{ErrInvalidRating, http.StatusBadRequest},
	{ErrScoreOutOfRange, http.StatusBadRequest},
	{ErrMessageToSelf, http.StatusBadRequest},
	{ErrInvalidTimeRange, http.StatusBadRequest},
	{ErrInvalidFileType, http.StatusBadRequest},
	{ErrFileTooLarge, http.StatusBadRequest},
	{ErrInvalidImage, http.StatusBadRequest},
}

// StatusFor 领域错误对应的 HTTP 状态码，未知错误为 500
func StatusFor(err error) int {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// HandleError 把服务层错误写成响应；500 只返回通用信息并记录日志
func HandleError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, status, err.Error())
}
