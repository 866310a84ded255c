package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

func newTestSchedule(ownerID int64, year int32, month time.Month, weekNumber int32, morning string) *domain.Schedule {
	week, ok := calendar.FindWeek(int(year), month, weekNumber)
	if !ok {
		panic("week not found")
	}

	now := time.Date(2025, time.January, 20, 9, 30, 0, 0, time.UTC)
	schedule := &domain.Schedule{
		OwnerID:    ownerID,
		Year:       year,
		Month:      int32(month),
		WeekNumber: weekNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
		Entries:    make([]domain.ScheduleEntry, len(week.Days)),
	}
	for i, day := range week.Days {
		schedule.Entries[i] = domain.ScheduleEntry{
			DayNumber:     int32(i + 1),
			DayName:       day.WeekdayName,
			Date:          day.Date,
			InTargetMonth: day.InTargetMonth,
			IsDayOff:      i == 6,
			MorningText:   morning,
			AfternoonText: "整理报表",
		}
	}
	return schedule
}

func TestCreateAndGetSchedule(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	schedule := newTestSchedule(owner.ID, 2025, time.February, 4, "巡店")
	require.NoError(t, repo.CreateSchedule(ctx, schedule))
	assert.NotZero(t, schedule.ID)
	assert.Equal(t, int32(1), schedule.Version)

	got, err := repo.GetScheduleByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, int32(4), got.WeekNumber)
	assert.True(t, got.CreatedAt.Equal(schedule.CreatedAt))
	require.Len(t, got.Entries, 7)
	for i, entry := range got.Entries {
		assert.Equal(t, schedule.Entries[i].DayNumber, entry.DayNumber)
		assert.True(t, schedule.Entries[i].Date.Equal(entry.Date), entry.Date.String())
		assert.Equal(t, schedule.Entries[i].InTargetMonth, entry.InTargetMonth)
		assert.Equal(t, schedule.Entries[i].IsDayOff, entry.IsDayOff)
		assert.Equal(t, "巡店", entry.MorningText)
	}
	assert.Equal(t, "2025-03-02", got.Entries[6].Date.String())
	assert.False(t, got.Entries[6].InTargetMonth)

	_, err = repo.GetScheduleByID(ctx, schedule.ID+100)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateScheduleDuplicate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	first := newTestSchedule(owner.ID, 2025, time.February, 1, "第一次")
	require.NoError(t, repo.CreateSchedule(ctx, first))

	second := newTestSchedule(owner.ID, 2025, time.February, 1, "第二次")
	require.ErrorIs(t, repo.CreateSchedule(ctx, second), ErrDuplicateSchedule)

	schedules, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "第一次", schedules[0].Entries[0].MorningText)
}

// raceCreates 并发创建同一周的周计划，返回成功和唯一约束冲突的次数，其他错误直接失败
func raceCreates(t *testing.T, repos []*Repository, ownerID int64, perRepo int) (int, int) {
	t.Helper()

	total := len(repos) * perRepo
	var wg sync.WaitGroup
	errs := make([]error, total)
	start := make(chan struct{})
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			repo := repos[i%len(repos)]
			errs[i] = repo.CreateSchedule(context.Background(), newTestSchedule(ownerID, 2025, time.March, 2, "并发"))
		}(i)
	}
	close(start)
	wg.Wait()

	success, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrDuplicateSchedule):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return success, duplicates
}

func TestCreateScheduleConcurrentDuplicate(t *testing.T) {
	repo := newTestRepository(t)
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	// 连接池使用默认配置（MaxOpenConns=10），DSN 中没有额外参数
	for round := 0; round < 3; round++ {
		if round > 0 {
			schedules, err := repo.GetSchedules(context.Background(), domain.ScheduleFilter{Year: 2025, Month: 3})
			require.NoError(t, err)
			require.Len(t, schedules, 1)
			deleted, err := repo.DeleteSchedule(context.Background(), schedules[0].ID)
			require.NoError(t, err)
			require.True(t, deleted)
		}

		success, duplicates := raceCreates(t, []*Repository{repo}, owner.ID, 8)
		assert.Equal(t, 1, success, "round %d", round)
		assert.Equal(t, 7, duplicates, "round %d", round)
	}
}

func TestCreateScheduleConcurrentDuplicateAcrossPools(t *testing.T) {
	// 两个连接池打开同一个文件，相当于 api 和 seed 两个进程同时写入
	cfg := testConfig(filepath.Join(t.TempDir(), "shared.db"))

	repos := make([]*Repository, 2)
	for i := range repos {
		dbpool, err := OpenDB(context.Background(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = dbpool.Close() })
		repos[i] = NewRepository(cfg, dbpool)
	}
	require.NoError(t, repos[0].Migrate(context.Background()))

	owner := createTestUser(t, repos[0], "wangwei", "王伟", "", domain.RoleFieldStaff)

	success, duplicates := raceCreates(t, repos, owner.ID, 4)
	assert.Equal(t, 1, success)
	assert.Equal(t, 7, duplicates)
}

func TestGetSchedulesFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	wang := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)
	li := createTestUser(t, repo, "lina", "李娜", "", domain.RoleFieldStaff)

	for _, s := range []*domain.Schedule{
		newTestSchedule(wang.ID, 2025, time.February, 1, "a"),
		newTestSchedule(wang.ID, 2025, time.February, 2, "b"),
		newTestSchedule(li.ID, 2025, time.February, 1, "c"),
		newTestSchedule(li.ID, 2025, time.March, 1, "d"),
	} {
		require.NoError(t, repo.CreateSchedule(ctx, s))
	}

	all, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)
	for _, s := range all {
		assert.Len(t, s.Entries, 7)
	}

	byOwner, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2, OwnerID: wang.ID})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byWeek, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2, WeekNumber: 1})
	require.NoError(t, err)
	assert.Len(t, byWeek, 2)

	byOwners, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2, OwnerIDs: []int64{li.ID}})
	require.NoError(t, err)
	require.Len(t, byOwners, 1)
	assert.Equal(t, "c", byOwners[0].Entries[0].MorningText)

	none, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2, OwnerIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	again, err := repo.GetSchedules(ctx, domain.ScheduleFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	for i := range all {
		assert.Equal(t, all[i].ID, again[i].ID)
	}
}

func TestUpdateScheduleEntries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	schedule := newTestSchedule(owner.ID, 2025, time.February, 1, "旧")
	require.NoError(t, repo.CreateSchedule(ctx, schedule))

	updated := newTestSchedule(owner.ID, 2025, time.February, 1, "新")
	updated.ID = schedule.ID
	updated.UpdatedAt = schedule.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.UpdateScheduleEntries(ctx, updated, 0))
	assert.Equal(t, int32(2), updated.Version)

	got, err := repo.GetScheduleByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "新", got.Entries[0].MorningText)
	assert.Len(t, got.Entries, 7)
	assert.True(t, got.CreatedAt.Equal(schedule.CreatedAt))
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt))

	// 版本号过期
	stale := newTestSchedule(owner.ID, 2025, time.February, 1, "过期")
	stale.ID = schedule.ID
	assert.ErrorIs(t, repo.UpdateScheduleEntries(ctx, stale, 1), sql.ErrNoRows)

	// 版本号正确
	current := newTestSchedule(owner.ID, 2025, time.February, 1, "最新")
	current.ID = schedule.ID
	require.NoError(t, repo.UpdateScheduleEntries(ctx, current, 2))

	missing := newTestSchedule(owner.ID, 2025, time.February, 1, "x")
	missing.ID = 404
	assert.ErrorIs(t, repo.UpdateScheduleEntries(ctx, missing, 0), sql.ErrNoRows)
}

func TestDeleteSchedule(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	schedule := newTestSchedule(owner.ID, 2025, time.February, 1, "x")
	require.NoError(t, repo.CreateSchedule(ctx, schedule))

	deleted, err := repo.DeleteSchedule(ctx, schedule.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetScheduleByID(ctx, schedule.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	deleted, err = repo.DeleteSchedule(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// 删除后同一周可以重新创建
	require.NoError(t, repo.CreateSchedule(ctx, newTestSchedule(owner.ID, 2025, time.February, 1, "y")))
}

func TestCreateScheduleRejectsWeekBeyondMonth(t *testing.T) {
	repo := newTestRepository(t)
	owner := createTestUser(t, repo, "wangwei", "王伟", "", domain.RoleFieldStaff)

	schedule := newTestSchedule(owner.ID, 2024, time.December, 5, "巡检")
	require.NoError(t, repo.CreateSchedule(context.Background(), schedule))

	// 一个业务月最多 5 周，数据库同样拒绝第 6 周
	beyond := newTestSchedule(owner.ID, 2024, time.December, 5, "巡检")
	beyond.WeekNumber = 6
	err := repo.CreateSchedule(context.Background(), beyond)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateSchedule)
}
