package controller

import (
	"edunest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的数字 ID，非法时直接返回 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定失败返回 400 和校验信息
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		util.BadRequest(ctx, err.Error())
		return false
	}
	return true
}
