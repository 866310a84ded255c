package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/service"
)

type scheduleEntryRequest struct {
	DayNumber     int32        `json:"dayNumber" validate:"required,min=1,max=7"`
	Date          *domain.Date `json:"date"`
	IsDayOff      bool         `json:"isDayOff"`
	MorningText   string       `json:"morningText" validate:"max=1000"`
	AfternoonText string       `json:"afternoonText" validate:"max=1000"`
}

func toScheduleEntries(req []scheduleEntryRequest) []domain.ScheduleEntry {
	entries := make([]domain.ScheduleEntry, len(req))
	for i, item := range req {
		entries[i] = domain.ScheduleEntry{
			DayNumber:     item.DayNumber,
			IsDayOff:      item.IsDayOff,
			MorningText:   item.MorningText,
			AfternoonText: item.AfternoonText,
		}
		if item.Date != nil {
			entries[i].Date = *item.Date
		}
	}
	return entries
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Year       int32                  `json:"year" validate:"required,min=1,max=9999"`
		Month      int32                  `json:"month" validate:"required,min=1,max=12"`
		WeekNumber int32                  `json:"weekNumber" validate:"required,min=1,max=5"`
		Entries    []scheduleEntryRequest `json:"entries" validate:"required,len=7,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 周计划的创建者总是当前登录的用户
	schedule, err := h.schedules.Create(r.Context(), service.CreateScheduleParams{
		OwnerID:    myInfo.ID,
		Year:       req.Year,
		Month:      req.Month,
		WeekNumber: req.WeekNumber,
		Entries:    toScheduleEntries(req.Entries),
	})
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建周计划成功", schedule)
}

func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var req struct {
		Year       int64 `validate:"required,min=1,max=9999"`
		Month      int64 `validate:"required,min=1,max=12"`
		OwnerID    int64 `validate:"min=0"`
		WeekNumber int64 `validate:"min=0,max=5"`
	}

	params := []struct {
		name string
		dst  *int64
	}{
		{"year", &req.Year},
		{"month", &req.Month},
		{"ownerID", &req.OwnerID},
		{"week", &req.WeekNumber},
	}
	for _, p := range params {
		value := query.Get(p.name)
		if value == "" {
			continue
		}
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "参数 "+p.name+" 无效")
			return
		}
		*p.dst = parsed
	}

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedules, err := h.schedules.List(r.Context(), domain.ScheduleFilter{
		Year:       int32(req.Year),
		Month:      int32(req.Month),
		OwnerID:    req.OwnerID,
		WeekNumber: int32(req.WeekNumber),
		Keyword:    query.Get("keyword"),
	})
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取周计划成功", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.Context().Value(ScheduleIDCtx).(int64)

	schedule, err := h.schedules.Get(r.Context(), id)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取周计划成功", schedule)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	id := r.Context().Value(ScheduleIDCtx).(int64)

	var req struct {
		Entries []scheduleEntryRequest `json:"entries" validate:"required,len=7,dive"`
		Version int32                  `json:"version" validate:"min=0"`

		// 以下字段不可修改，传入时必须与原值一致
		OwnerID    *int64 `json:"ownerID"`
		Year       *int32 `json:"year"`
		Month      *int32 `json:"month"`
		WeekNumber *int32 `json:"weekNumber"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule, err := h.schedules.Update(r.Context(), service.UpdateScheduleParams{
		ID:         id,
		CallerID:   myInfo.ID,
		Entries:    toScheduleEntries(req.Entries),
		Version:    req.Version,
		OwnerID:    req.OwnerID,
		Year:       req.Year,
		Month:      req.Month,
		WeekNumber: req.WeekNumber,
	})
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.notifyOwner(r, domain.MailTypeScheduleUpdated, schedule, myInfo.ID)

	h.successResponse(w, r, "更新周计划成功", schedule)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	id := r.Context().Value(ScheduleIDCtx).(int64)

	schedule, err := h.schedules.Delete(r.Context(), id, myInfo.ID)
	if err != nil {
		h.scheduleError(w, r, err)
		return
	}

	h.notifyOwner(r, domain.MailTypeScheduleDeleted, schedule, myInfo.ID)

	h.successResponse(w, r, "删除周计划成功", nil)
}

// notifyOwner 通知周计划的创建者，只有管理员代为操作时才发送
// 周计划已经写入数据库，投递失败只记录日志
func (h *Handler) notifyOwner(r *http.Request, mailType string, schedule *domain.Schedule, operatorID int64) {
	if h.publisher == nil || schedule.OwnerID == operatorID {
		return
	}

	owner, err := h.repository.GetUserByID(r.Context(), schedule.OwnerID)
	if err != nil {
		slog.Warn("无法获取周计划创建者", "scheduleID", schedule.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	msg := domain.MailMessage{
		Type: mailType,
		To:   owner.Email,
		Data: domain.ScheduleMailData{
			FullName:   owner.FullName,
			OperatorID: operatorID,
			ScheduleID: schedule.ID,
			Year:       schedule.Year,
			Month:      schedule.Month,
			WeekNumber: schedule.WeekNumber,
		},
	}
	if err := h.publisher.Publish(ctx, msg); err != nil {
		slog.Warn("无法投递周计划通知", "scheduleID", schedule.ID, "type", mailType, "error", err)
	}
}
