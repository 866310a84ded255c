package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicateSchedule 同一个人在同一个月的同一周已经有周计划
	ErrDuplicateSchedule = errors.New("repository: duplicate schedule")
	// ErrDuplicateUsername 用户名已存在
	ErrDuplicateUsername = errors.New("repository: duplicate username")
)

const (
	scheduleOwnerWeekConstraint = "schedules_owner_week_key"
	usersUsernameConstraint     = "users_username_key"
)

// uniqueViolation 判断 err 是否为违反唯一约束，constraint 为空时只判断错误类型
func uniqueViolation(err error, constraint string, sqliteColumns string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505: unique_violation
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// sqlite 的错误信息形如 "UNIQUE constraint failed: schedules.owner_id, schedules.year, ..."
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(sqliteErr.Error(), "UNIQUE") &&
			strings.Contains(sqliteErr.Error(), sqliteColumns)
	}

	return false
}
