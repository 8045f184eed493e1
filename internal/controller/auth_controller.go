package controller

import (
	"edunest_backend/internal/config"
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
	Session     config.SessionConfig
}

func NewAuthController(authService *service.AuthService, userService *service.UserService, session config.SessionConfig) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
		Session:     session,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.Session.CookieName, token, maxAge, "/", c.Session.Domain, c.Session.Secure, true)
}

// Register godoc
// @Summary 注册新用户
// @Description 注册学生或讲师账号，管理员不能自行注册
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱或用户名已被使用"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.AuthService.Register(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

// Login godoc
// @Summary 用户登录
// @Description 用户名或邮箱登录，令牌写入 HttpOnly Cookie 并在响应中返回
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginInput true "登录凭据"
// @Success 200 {object} util.Response{data=service.LoginResult} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, result.Token, int(time.Until(result.ExpiresAt).Seconds()))
	util.Success(ctx, result)
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, "", -1)
	util.Success(ctx, nil)
}

// CurrentUser godoc
// @Summary 当前登录用户
// @Tags 用户
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response "未授权"
// @Router /api/user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.CurrentUser(claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ProfileInput true "资料字段，缺省的不修改"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/user/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req service.ProfileInput
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.UpdateProfile(util.ActorFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
