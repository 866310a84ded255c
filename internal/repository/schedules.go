package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

// CreateSchedule 在一个事务中插入周计划及其 7 天的条目
// 唯一性由 schedules_owner_week_key 约束保证，冲突时返回 ErrDuplicateSchedule
func (r *Repository) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO schedules (owner_id, year, month, week_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version
	`
	params := []any{
		schedule.OwnerID,
		schedule.Year,
		schedule.Month,
		schedule.WeekNumber,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&schedule.ID, &schedule.Version); err != nil {
		if uniqueViolation(err, scheduleOwnerWeekConstraint, "schedules.owner_id") {
			return ErrDuplicateSchedule
		}
		return err
	}

	if err := insertScheduleEntries(ctx, tx, schedule.ID, schedule.Entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if uniqueViolation(err, scheduleOwnerWeekConstraint, "schedules.owner_id") {
			return ErrDuplicateSchedule
		}
		return err
	}

	return nil
}

func insertScheduleEntries(ctx context.Context, tx *sql.Tx, scheduleID int64, entries []domain.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (
			schedule_id,
			day_number,
			day_name,
			date,
			in_target_month,
			is_day_off,
			morning_text,
			afternoon_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, entry := range entries {
		params := []any{
			scheduleID,
			entry.DayNumber,
			entry.DayName,
			entry.Date,
			entry.InTargetMonth,
			entry.IsDayOff,
			entry.MorningText,
			entry.AfternoonText,
		}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetScheduleByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	query := `
		SELECT
			owner_id,
			year,
			month,
			week_number,
			created_at,
			updated_at,
			version
		FROM schedules
		WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	schedule := &domain.Schedule{
		ID: id,
	}
	dst := []any{
		&schedule.OwnerID,
		&schedule.Year,
		&schedule.Month,
		&schedule.WeekNumber,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
		&schedule.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	entries, err := r.getScheduleEntries(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	schedule.Entries = entries[id]

	return schedule, nil
}

// GetSchedules 按过滤条件查询周计划，结果按 id 升序
func (r *Repository) GetSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, error) {
	conditions := []string{"year = $1", "month = $2"}
	args := []any{filter.Year, filter.Month}

	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.WeekNumber != 0 {
		args = append(args, filter.WeekNumber)
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)))
	}
	if filter.OwnerIDs != nil {
		if len(filter.OwnerIDs) == 0 {
			// 关键字没有匹配到任何人
			return []*domain.Schedule{}, nil
		}
		start := len(args) + 1
		for _, id := range filter.OwnerIDs {
			args = append(args, id)
		}
		conditions = append(conditions, "owner_id IN ("+placeholders(start, len(filter.OwnerIDs))+")")
	}

	query := `
		SELECT
			id,
			owner_id,
			year,
			month,
			week_number,
			created_at,
			updated_at,
			version
		FROM schedules
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []*domain.Schedule{}
	ids := []int64{}
	for rows.Next() {
		var schedule domain.Schedule
		dst := []any{
			&schedule.ID,
			&schedule.OwnerID,
			&schedule.Year,
			&schedule.Month,
			&schedule.WeekNumber,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
			&schedule.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, &schedule)
		ids = append(ids, schedule.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	// 先关闭结果集再查条目，避免单连接的 sqlite 上互相等待
	rows.Close()

	entries, err := r.getScheduleEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, schedule := range schedules {
		schedule.Entries = entries[schedule.ID]
	}

	return schedules, nil
}

func (r *Repository) getScheduleEntries(ctx context.Context, scheduleIDs []int64) (map[int64][]domain.ScheduleEntry, error) {
	entries := make(map[int64][]domain.ScheduleEntry, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return entries, nil
	}

	args := make([]any, len(scheduleIDs))
	for i, id := range scheduleIDs {
		args[i] = id
	}

	query := `
		SELECT
			schedule_id,
			day_number,
			day_name,
			date,
			in_target_month,
			is_day_off,
			morning_text,
			afternoon_text
		FROM schedule_entries
		WHERE schedule_id IN (` + placeholders(1, len(scheduleIDs)) + `)
		ORDER BY schedule_id, day_number
	`

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var scheduleID int64
		var entry domain.ScheduleEntry
		dst := []any{
			&scheduleID,
			&entry.DayNumber,
			&entry.DayName,
			&entry.Date,
			&entry.InTargetMonth,
			&entry.IsDayOff,
			&entry.MorningText,
			&entry.AfternoonText,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries[scheduleID] = append(entries[scheduleID], entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// UpdateScheduleEntries 整体替换 7 天的条目，其余字段不变
// expectedVersion 为 0 时不做版本检查（后写覆盖），记录不存在或版本不匹配时返回 sql.ErrNoRows
func (r *Repository) UpdateScheduleEntries(ctx context.Context, schedule *domain.Schedule, expectedVersion int32) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE schedules
		SET
			updated_at = $1,
			version = version + 1
		WHERE id = $2 AND ($3 = 0 OR version = $3)
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, schedule.UpdatedAt, schedule.ID, expectedVersion).Scan(&schedule.Version); err != nil {
		return err
	}

	query = `DELETE FROM schedule_entries WHERE schedule_id = $1`
	if _, err := tx.ExecContext(ctx, query, schedule.ID); err != nil {
		return err
	}

	if err := insertScheduleEntries(ctx, tx, schedule.ID, schedule.Entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteSchedule 物理删除，返回是否真的删除了记录
func (r *Repository) DeleteSchedule(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// sqlite 默认不开启外键，因此显式删除条目
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_entries WHERE schedule_id = $1`, id); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return affected > 0, nil
}

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
