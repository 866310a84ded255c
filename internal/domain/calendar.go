package domain

// CalendarDay 是生成的某一周中的一天
type CalendarDay struct {
	Date          Date   `json:"date"`
	WeekdayName   string `json:"weekdayName"`
	InTargetMonth bool   `json:"inTargetMonth"`
}

// CalendarWeek 总是周一到周日的 7 天
type CalendarWeek struct {
	WeekNumber int32         `json:"weekNumber"`
	Days       []CalendarDay `json:"days"`
}

func (w CalendarWeek) StartDate() Date {
	return w.Days[0].Date
}

func (w CalendarWeek) EndDate() Date {
	return w.Days[len(w.Days)-1].Date
}
