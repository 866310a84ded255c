package calendar

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

func TestGenerateMonthFebruary2025(t *testing.T) {
	weeks := GenerateMonth(2025, time.February)
	require.Len(t, weeks, 4)

	// 2 月 1 日和 2 日（周六、周日）不属于任何一周
	assert.Equal(t, domain.NewDate(2025, time.February, 3), weeks[0].StartDate())
	assert.Equal(t, int32(1), weeks[0].WeekNumber)

	last := weeks[3]
	assert.Equal(t, int32(4), last.WeekNumber)
	assert.Equal(t, domain.NewDate(2025, time.February, 24), last.StartDate())
	assert.Equal(t, domain.NewDate(2025, time.March, 2), last.EndDate())
	assert.True(t, last.Days[4].InTargetMonth)
	assert.False(t, last.Days[5].InTargetMonth)
	assert.False(t, last.Days[6].InTargetMonth)
}

func TestGenerateMonthStartingOnMonday(t *testing.T) {
	// 2024 年 1 月 1 日是周一
	weeks := GenerateMonth(2024, time.January)
	require.NotEmpty(t, weeks)
	assert.Equal(t, domain.NewDate(2024, time.January, 1), weeks[0].StartDate())
	assert.Len(t, weeks, 5)
	// 最后一周从 1 月 29 日开始，跨到 2 月 4 日
	assert.Equal(t, domain.NewDate(2024, time.February, 4), weeks[4].EndDate())
}

func TestGenerateMonthSundayStartThirtyOneDays(t *testing.T) {
	// 2024 年 12 月 1 日是周日，前导的一天被排除，只剩 5 周
	weeks := GenerateMonth(2024, time.December)
	require.Len(t, weeks, 5)
	assert.Equal(t, domain.NewDate(2024, time.December, 2), weeks[0].StartDate())
	assert.Equal(t, domain.NewDate(2024, time.December, 30), weeks[4].StartDate())
	assert.Equal(t, domain.NewDate(2025, time.January, 5), weeks[4].EndDate())
	assert.False(t, weeks[4].Days[2].InTargetMonth)
}

func TestGenerateMonthLeapFebruary(t *testing.T) {
	// 2024 年 2 月 1 日是周四，共 29 天
	weeks := GenerateMonth(2024, time.February)
	require.Len(t, weeks, 4)
	assert.Equal(t, domain.NewDate(2024, time.February, 5), weeks[0].StartDate())
	assert.Equal(t, domain.NewDate(2024, time.February, 26), weeks[3].StartDate())
	assert.True(t, weeks[3].Days[3].InTargetMonth) // 2 月 29 日
	assert.False(t, weeks[3].Days[4].InTargetMonth)
}

func TestGenerateMonthInvariants(t *testing.T) {
	for year := 1999; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			weeks := GenerateMonth(year, month)
			require.NotEmpty(t, weeks)

			first := domain.NewDate(year, month, 1)
			last := domain.NewDate(year, month+1, 0)

			if first.Weekday() == time.Monday {
				assert.True(t, weeks[0].StartDate().Equal(first), "%d-%02d", year, month)
			} else {
				assert.True(t, weeks[0].StartDate().After(first.Time), "%d-%02d", year, month)
			}
			assert.False(t, weeks[len(weeks)-1].StartDate().After(last.Time), "%d-%02d", year, month)
			// 下一周的周一必须已经超出本月
			assert.True(t, weeks[len(weeks)-1].StartDate().AddDays(7).After(last.Time), "%d-%02d", year, month)

			var prev domain.Date
			for i, week := range weeks {
				assert.Equal(t, int32(i+1), week.WeekNumber)
				require.Len(t, week.Days, 7)
				assert.Equal(t, "Monday", week.Days[0].WeekdayName)
				assert.Equal(t, "Sunday", week.Days[6].WeekdayName)

				for j, day := range week.Days {
					if i > 0 || j > 0 {
						assert.True(t, day.Date.Equal(prev.AddDays(1)), "日期必须连续: %s", day.Date)
					}
					assert.Equal(t, day.Date.Month() == month && day.Date.Year() == year, day.InTargetMonth)
					prev = day.Date
				}
			}
		}
	}
}

func TestGenerateMonthWeekCountBounds(t *testing.T) {
	longest := 0
	for year := 1900; year <= 2100; year++ {
		for month := time.January; month <= time.December; month++ {
			n := len(GenerateMonth(year, month))
			assert.GreaterOrEqual(t, n, 4, "%d-%02d", year, month)
			assert.LessOrEqual(t, n, MaxWeeks, "%d-%02d", year, month)
			longest = max(longest, n)
		}
	}
	assert.Equal(t, MaxWeeks, longest)

	_, ok := FindWeek(2024, time.December, MaxWeeks+1)
	assert.False(t, ok)
}

func TestGenerateMonthYearBoundary(t *testing.T) {
	december := GenerateMonth(2025, time.December)
	january := GenerateMonth(2026, time.January)

	// 2025 年 12 月最后一周从 29 日开始，2026 年 1 月从 5 日开始，周号重新计数
	assert.Equal(t, domain.NewDate(2025, time.December, 29), december[len(december)-1].StartDate())
	assert.Equal(t, domain.NewDate(2026, time.January, 5), january[0].StartDate())
	assert.Equal(t, int32(1), january[0].WeekNumber)
}

func TestGenerateMonthConcurrent(t *testing.T) {
	expected := GenerateMonth(2025, time.March)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, expected, GenerateMonth(2025, time.March))
		}()
	}
	wg.Wait()
}

func TestFindWeek(t *testing.T) {
	week, ok := FindWeek(2025, time.February, 2)
	require.True(t, ok)
	assert.Equal(t, domain.NewDate(2025, time.February, 10), week.StartDate())

	_, ok = FindWeek(2025, time.February, 5)
	assert.False(t, ok)

	_, ok = FindWeek(2025, time.February, 0)
	assert.False(t, ok)
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		date  domain.Date
		year  int
		month time.Month
		week  int32
	}{
		{domain.NewDate(2025, time.February, 1), 2025, time.January, 4},
		{domain.NewDate(2025, time.February, 3), 2025, time.February, 1},
		{domain.NewDate(2025, time.February, 9), 2025, time.February, 1},
		{domain.NewDate(2025, time.March, 2), 2025, time.February, 4},
		{domain.NewDate(2026, time.January, 1), 2025, time.December, 5},
	}

	for _, tt := range tests {
		year, month, week := WeekOf(tt.date)
		assert.Equal(t, tt.year, year, tt.date.String())
		assert.Equal(t, tt.month, month, tt.date.String())
		assert.Equal(t, tt.week, week, tt.date.String())
	}
}

func TestWeekOfAgreesWithGenerateMonth(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		for _, week := range GenerateMonth(2027, month) {
			for _, day := range week.Days {
				year, m, n := WeekOf(day.Date)
				assert.Equal(t, 2027, year)
				assert.Equal(t, month, m)
				assert.Equal(t, week.WeekNumber, n)
			}
		}
	}
}
