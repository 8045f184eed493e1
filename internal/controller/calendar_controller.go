package controller

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/service"
	"edunest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CalendarController struct {
	CalendarService *service.CalendarService
}

func NewCalendarController(calendarService *service.CalendarService) *CalendarController {
	return &CalendarController{CalendarService: calendarService}
}

// ListEvents godoc
// @Summary 日历
// @Description 个人事件和课程作业截止日期；不传区间时为当月
// @Tags 日历
// @Produce json
// @Security BearerAuth
// @Param from query string false "开始 (RFC3339 或 YYYY-MM-DD)"
// @Param to query string false "结束，不含 (RFC3339 或 YYYY-MM-DD)"
// @Success 200 {object} util.Response{data=[]model.CalendarEntry}
// @Failure 400 {object} util.Response "时间格式错误"
// @Router /api/calendar/events [get]
func (c *CalendarController) ListEvents(ctx *gin.Context) {
	var r model.TimeRange
	if s := ctx.Query("from"); s != "" {
		t, err := util.ParseTime(s)
		if err != nil {
			util.BadRequest(ctx, "invalid from")
			return
		}
		r.From = t
	}
	if s := ctx.Query("to"); s != "" {
		t, err := util.ParseTime(s)
		if err != nil {
			util.BadRequest(ctx, "invalid to")
			return
		}
		r.To = t
	}

	entries, err := c.CalendarService.List(util.ActorFromContext(ctx).UserID, r)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// CreateEvent godoc
// @Summary 新建个人事件
// @Tags 日历
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CalendarEventInput true "事件"
// @Success 201 {object} util.Response{data=model.CalendarEvent}
// @Failure 400 {object} util.Response "结束时间早于开始时间"
// @Router /api/calendar/events [post]
func (c *CalendarController) CreateEvent(ctx *gin.Context) {
	var req service.CalendarEventInput
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.CalendarService.Create(util.ActorFromContext(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, event)
}

// UpdateEvent godoc
// @Summary 更新个人事件
// @Tags 日历
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "事件ID"
// @Param body body service.CalendarEventInput true "事件"
// @Success 200 {object} util.Response{data=model.CalendarEvent}
// @Router /api/calendar/events/{id} [put]
func (c *CalendarController) UpdateEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CalendarEventInput
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := c.CalendarService.Update(util.ActorFromContext(ctx).UserID, id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, event)
}

// DeleteEvent godoc
// @Summary 删除个人事件
// @Tags 日历
// @Produce json
// @Security BearerAuth
// @Param id path int true "事件ID"
// @Success 200 {object} util.Response
// @Router /api/calendar/events/{id} [delete]
func (c *CalendarController) DeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CalendarService.Delete(util.ActorFromContext(ctx).UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
