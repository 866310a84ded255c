package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/utils"
)

// ScheduleRepository 是周计划的持久化边界
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule *domain.Schedule) error
	GetScheduleByID(ctx context.Context, id int64) (*domain.Schedule, error)
	GetSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, error)
	UpdateScheduleEntries(ctx context.Context, schedule *domain.Schedule, expectedVersion int32) error
	DeleteSchedule(ctx context.Context, id int64) (bool, error)
}

// Identity 提供用户相关的查询
type Identity interface {
	IsAdministrator(ctx context.Context, userID int64) (bool, error)
	ResolveOwners(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
	SearchUserIDs(ctx context.Context, keyword string) ([]int64, error)
}

type ScheduleService struct {
	schedules ScheduleRepository
	identity  Identity
	now       func() time.Time
}

func NewScheduleService(schedules ScheduleRepository, identity Identity, now func() time.Time) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules: schedules,
		identity:  identity,
		now:       now,
	}
}

type CreateScheduleParams struct {
	OwnerID    int64
	Year       int32
	Month      int32
	WeekNumber int32
	Entries    []domain.ScheduleEntry
}

// Create 创建周计划，同一个人同一周已有记录时返回 ErrConflict，不会覆盖
func (s *ScheduleService) Create(ctx context.Context, params CreateScheduleParams) (*domain.Schedule, error) {
	vErr := &ValidationError{}
	if params.OwnerID <= 0 {
		vErr.Add("ownerID", "创建者不合法")
	}

	week, err := utils.ValidateScheduleWeek(params.Year, params.Month, params.WeekNumber)
	if err != nil {
		vErr.Add("weekNumber", err.Error())
	}

	var entries []domain.ScheduleEntry
	if err == nil {
		entries, err = utils.ValidateScheduleEntries(week, params.Entries)
		if err != nil {
			vErr.Add("entries", err.Error())
		}
	}

	if vErr.HasErrors() {
		return nil, vErr
	}

	now := s.now().UTC()
	schedule := &domain.Schedule{
		OwnerID:    params.OwnerID,
		Year:       params.Year,
		Month:      params.Month,
		WeekNumber: params.WeekNumber,
		Entries:    entries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.schedules.CreateSchedule(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrDuplicateSchedule) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.attachOwners(ctx, []*domain.Schedule{schedule}); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *ScheduleService) Get(ctx context.Context, id int64) (*domain.Schedule, error) {
	schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachOwners(ctx, []*domain.Schedule{schedule}); err != nil {
		return nil, err
	}

	return schedule, nil
}

// List 返回指定年月的周计划，按 id 升序
func (s *ScheduleService) List(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, error) {
	if err := utils.ValidateYearMonth(filter.Year, filter.Month); err != nil {
		vErr := &ValidationError{}
		vErr.Add("month", err.Error())
		return nil, vErr
	}

	filter.OwnerIDs = nil
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		ids, err := s.identity.SearchUserIDs(ctx, keyword)
		if err != nil {
			return nil, err
		}
		filter.OwnerIDs = ids
	}

	schedules, err := s.schedules.GetSchedules(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.attachOwners(ctx, schedules); err != nil {
		return nil, err
	}

	return schedules, nil
}

type UpdateScheduleParams struct {
	ID       int64
	CallerID int64
	Entries  []domain.ScheduleEntry
	// Version 为 0 时后写覆盖，否则必须与当前版本一致
	Version int32

	// 以下字段不允许修改，只用于检测调用方是否试图修改
	OwnerID    *int64
	Year       *int32
	Month      *int32
	WeekNumber *int32
}

// Update 只替换 7 天的条目，只有创建者和管理员可以修改
func (s *ScheduleService) Update(ctx context.Context, params UpdateScheduleParams) (*domain.Schedule, error) {
	schedule, err := s.getSchedule(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, schedule, params.CallerID); err != nil {
		return nil, err
	}

	vErr := &ValidationError{}
	if params.OwnerID != nil && *params.OwnerID != schedule.OwnerID {
		vErr.Add("ownerID", "创建者不可修改")
	}
	if params.Year != nil && *params.Year != schedule.Year {
		vErr.Add("year", "年份不可修改")
	}
	if params.Month != nil && *params.Month != schedule.Month {
		vErr.Add("month", "月份不可修改")
	}
	if params.WeekNumber != nil && *params.WeekNumber != schedule.WeekNumber {
		vErr.Add("weekNumber", "周号不可修改")
	}

	week, err := utils.ValidateScheduleWeek(schedule.Year, schedule.Month, schedule.WeekNumber)
	if err != nil {
		return nil, err
	}
	entries, err := utils.ValidateScheduleEntries(week, params.Entries)
	if err != nil {
		vErr.Add("entries", err.Error())
	}

	if vErr.HasErrors() {
		return nil, vErr
	}

	schedule.Entries = entries
	schedule.UpdatedAt = s.now().UTC()

	if err := s.schedules.UpdateScheduleEntries(ctx, schedule, params.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if params.Version != 0 {
				return nil, ErrEditConflict
			}
			// 在读取之后被并发删除
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.attachOwners(ctx, []*domain.Schedule{schedule}); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Delete 物理删除，只有创建者和管理员可以删除，返回被删除的记录
func (s *ScheduleService) Delete(ctx context.Context, id int64, callerID int64) (*domain.Schedule, error) {
	schedule, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, schedule, callerID); err != nil {
		return nil, err
	}

	deleted, err := s.schedules.DeleteSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}

	return schedule, nil
}

func (s *ScheduleService) getSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	schedule, err := s.schedules.GetScheduleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) authorize(ctx context.Context, schedule *domain.Schedule, callerID int64) error {
	if callerID != 0 && schedule.OwnerID == callerID {
		return nil
	}

	isAdmin, err := s.identity.IsAdministrator(ctx, callerID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrUnauthorized
	}

	return nil
}

// attachOwners 填充创建者的姓名和手机号，创建者已被删除时保持为空
func (s *ScheduleService) attachOwners(ctx context.Context, schedules []*domain.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(schedules))
	seen := make(map[int64]bool, len(schedules))
	for _, schedule := range schedules {
		if !seen[schedule.OwnerID] {
			seen[schedule.OwnerID] = true
			ids = append(ids, schedule.OwnerID)
		}
	}

	owners, err := s.identity.ResolveOwners(ctx, ids)
	if err != nil {
		return err
	}

	for _, schedule := range schedules {
		if owner, ok := owners[schedule.OwnerID]; ok {
			schedule.OwnerName = owner.FullName
			schedule.OwnerPhone = owner.Phone
		}
	}

	return nil
}
