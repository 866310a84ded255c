// Package calendar 按业务月生成周历。
//
// 业务月的第一周从当月第一个周一开始（1 号之前不足一周的几天归上个月），
// 只要某周的周一还落在当月内就继续生成，因此最后一周可能跨到下个月。
package calendar

import (
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

// MaxWeeks 一个业务月最多的周数：周一最多只能落在 1、8、15、22、29 号
const MaxWeeks = 5

// GenerateMonth 返回 year 年 month 月的所有业务周，周号从 1 开始
func GenerateMonth(year int, month time.Month) []domain.CalendarWeek {
	first := domain.NewDate(year, month, 1)
	last := domain.NewDate(year, month+1, 0)

	weeks := make([]domain.CalendarWeek, 0, MaxWeeks)
	weekNumber := int32(1)
	for monday := firstMondayOnOrAfter(first); !monday.After(last.Time); monday = monday.AddDays(domain.DaysPerWeek) {
		week := domain.CalendarWeek{
			WeekNumber: weekNumber,
			Days:       make([]domain.CalendarDay, domain.DaysPerWeek),
		}
		for i := 0; i < domain.DaysPerWeek; i++ {
			day := monday.AddDays(i)
			week.Days[i] = domain.CalendarDay{
				Date:          day,
				WeekdayName:   day.Weekday().String(),
				InTargetMonth: day.Year() == year && day.Month() == month,
			}
		}
		weeks = append(weeks, week)
		weekNumber++
	}

	return weeks
}

// FindWeek 返回指定月份中的第 weekNumber 周
func FindWeek(year int, month time.Month, weekNumber int32) (domain.CalendarWeek, bool) {
	for _, week := range GenerateMonth(year, month) {
		if week.WeekNumber == weekNumber {
			return week, true
		}
	}
	return domain.CalendarWeek{}, false
}

// WeekOf 找到 date 所在的业务周，该周归属于其周一所在的月份
func WeekOf(date domain.Date) (year int, month time.Month, weekNumber int32) {
	// time.Weekday 中周日为 0，这里换算成周一为 0
	offset := (int(date.Weekday()) + 6) % 7
	monday := date.AddDays(-offset)

	// 当月第一个周一只可能落在 1~7 号
	return monday.Year(), monday.Month(), int32((monday.Day()-1)/domain.DaysPerWeek + 1)
}

func firstMondayOnOrAfter(d domain.Date) domain.Date {
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(offset)
}
