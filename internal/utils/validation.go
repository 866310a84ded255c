package utils

import (
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

const (
	MinYear = 1
	MaxYear = 9999
)

func ValidateYearMonth(year, month int32) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("年份 %d 不合法", year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("月份 %d 不合法", month)
	}
	return nil
}

// ValidateScheduleWeek 检查 weekNumber 是否为该业务月中存在的周
func ValidateScheduleWeek(year, month, weekNumber int32) (domain.CalendarWeek, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return domain.CalendarWeek{}, err
	}

	week, ok := calendar.FindWeek(int(year), time.Month(month), weekNumber)
	if !ok {
		return domain.CalendarWeek{}, fmt.Errorf("%d 年 %d 月不存在第 %d 周", year, month, weekNumber)
	}
	return week, nil
}

// ValidateScheduleEntries 检查条目是否恰好覆盖周一到周日，
// 并按 dayNumber 排序后用周历中的日期、星期和是否属于本月覆盖条目中的快照字段
func ValidateScheduleEntries(week domain.CalendarWeek, entries []domain.ScheduleEntry) ([]domain.ScheduleEntry, error) {
	if len(entries) != domain.DaysPerWeek {
		return nil, fmt.Errorf("必须恰好提交 %d 天的计划，实际提交了 %d 天", domain.DaysPerWeek, len(entries))
	}

	seen := make(map[int32]bool, domain.DaysPerWeek)
	for i, entry := range entries {
		if entry.DayNumber < 1 || entry.DayNumber > domain.DaysPerWeek {
			return nil, fmt.Errorf("第 %d 项的 dayNumber %d 不在 1~7 之间", i+1, entry.DayNumber)
		}
		if seen[entry.DayNumber] {
			return nil, fmt.Errorf("dayNumber %d 重复", entry.DayNumber)
		}
		seen[entry.DayNumber] = true
	}

	normalized := slices.Clone(entries)
	slices.SortFunc(normalized, func(a, b domain.ScheduleEntry) int {
		return int(a.DayNumber - b.DayNumber)
	})

	for i := range normalized {
		day := week.Days[i]
		if !normalized[i].Date.IsZero() && !normalized[i].Date.Equal(day.Date) {
			return nil, fmt.Errorf("第 %d 天的日期应为 %s，实际为 %s", normalized[i].DayNumber, day.Date, normalized[i].Date)
		}
		normalized[i].Date = day.Date
		normalized[i].DayName = day.WeekdayName
		normalized[i].InTargetMonth = day.InTargetMonth
	}

	return normalized, nil
}
