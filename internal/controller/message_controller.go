package controller

import (
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageService *service.MessageService
	Hub            *service.MessageHub
}

func NewMessageController(messageService *service.MessageService, hub *service.MessageHub) *MessageController {
	return &MessageController{MessageService: messageService, Hub: hub}
}

// Conversations godoc
// @Summary 会话列表
// @Description 每个联系人一条：最后一条消息和未读数，按时间倒序
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Conversation}
// @Router /api/messages/conversations [get]
func (c *MessageController) Conversations(ctx *gin.Context) {
	list, err := c.MessageService.Conversations(util.ActorFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// UnreadCount godoc
// @Summary 未读消息总数
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=map[string]int64}
// @Router /api/messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	count, err := c.MessageService.UnreadCount(util.ActorFromContext(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// Thread godoc
// @Summary 与某用户的消息记录
// @Description 按时间升序；before 为消息ID，用于向前翻页。读取后对方发来的消息标记为已读
// @Tags 消息
// @Produce json
// @Security BearerAuth
// @Param userId path int true "对方用户ID"
// @Param before query int false "只返回ID小于该值的消息"
// @Param limit query int false "条数" default(50)
// @Success 200 {object} util.Response{data=[]model.Message}
// @Router /api/messages/{userId} [get]
func (c *MessageController) Thread(ctx *gin.Context) {
	otherID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	before, _ := strconv.ParseUint(ctx.Query("before"), 10, 32)
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	messages, err := c.MessageService.Thread(util.ActorFromContext(ctx).UserID, otherID, uint(before), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, messages)
}

// Send godoc
// @Summary 发送消息
// @Description 接收方在线时通过 WebSocket 推送 NEW_MESSAGE
// @Tags 消息
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SendMessageInput true "消息"
// @Success 201 {object} util.Response{data=model.Message}
// @Failure 400 {object} util.Response "内容为空或发给自己"
// @Failure 404 {object} util.Response "接收方不存在"
// @Router /api/messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	var req service.SendMessageInput
	if !bindJSON(ctx, &req) {
		return
	}

	msg, err := c.MessageService.Send(util.ActorFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, msg)
}

// ServeWs godoc
// @Summary 实时消息 WebSocket
// @Description 令牌可以放在 Cookie 或 token 查询参数中
// @Tags 消息
// @Param token query string false "JWT"
// @Router /api/ws [get]
func (c *MessageController) ServeWs(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}
