package domain

import "time"

const DaysPerWeek = 7

type ScheduleEntry struct {
	DayNumber     int32  `json:"dayNumber"`
	DayName       string `json:"dayName"`
	Date          Date   `json:"date"`
	InTargetMonth bool   `json:"inTargetMonth"`
	IsDayOff      bool   `json:"isDayOff"`
	MorningText   string `json:"morningText"`
	AfternoonText string `json:"afternoonText"`
}

type Schedule struct {
	ID         int64           `json:"id"`
	OwnerID    int64           `json:"ownerID"`
	OwnerName  string          `json:"ownerName"`
	OwnerPhone string          `json:"ownerPhone"`
	Year       int32           `json:"year"`
	Month      int32           `json:"month"`
	WeekNumber int32           `json:"weekNumber"`
	Entries    []ScheduleEntry `json:"entries"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Version    int32           `json:"version"`
}

// ScheduleFilter 中 Year 和 Month 必填，其余为 0 或空表示不过滤
type ScheduleFilter struct {
	Year       int32
	Month      int32
	OwnerID    int64
	OwnerIDs   []int64
	WeekNumber int32
	Keyword    string
}
