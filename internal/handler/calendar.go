package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/utils"
)

func (h *Handler) GenerateCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.ParseInt(r.URL.Query().Get("year"), 10, 32)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "年份无效")
		return
	}
	month, err := strconv.ParseInt(r.URL.Query().Get("month"), 10, 32)
	if err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, "月份无效")
		return
	}
	if err := utils.ValidateYearMonth(int32(year), int32(month)); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weeks, err := h.calendar.Month(r.Context(), int(year), time.Month(month))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "生成周历成功", weeks)
}
