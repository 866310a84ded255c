package repository

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		week_number INTEGER NOT NULL CHECK (week_number BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT schedules_owner_week_key UNIQUE (owner_id, year, month, week_number)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_entries (
		schedule_id BIGINT NOT NULL REFERENCES schedules (id) ON DELETE CASCADE,
		day_number INTEGER NOT NULL CHECK (day_number BETWEEN 1 AND 7),
		day_name TEXT NOT NULL,
		date DATE NOT NULL,
		in_target_month BOOLEAN NOT NULL,
		is_day_off BOOLEAN NOT NULL DEFAULT FALSE,
		morning_text TEXT NOT NULL DEFAULT '',
		afternoon_text TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (schedule_id, day_number)
	)`,
	`CREATE INDEX IF NOT EXISTS schedules_year_month_idx ON schedules (year, month)`,
}

// sqlite 中时间列必须声明为 TIMESTAMP/DATE，驱动才会把文本解析回 time.Time
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		week_number INTEGER NOT NULL CHECK (week_number BETWEEN 1 AND 5),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT schedules_owner_week_key UNIQUE (owner_id, year, month, week_number)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_entries (
		schedule_id INTEGER NOT NULL REFERENCES schedules (id) ON DELETE CASCADE,
		day_number INTEGER NOT NULL CHECK (day_number BETWEEN 1 AND 7),
		day_name TEXT NOT NULL,
		date DATE NOT NULL,
		in_target_month BOOLEAN NOT NULL,
		is_day_off BOOLEAN NOT NULL DEFAULT FALSE,
		morning_text TEXT NOT NULL DEFAULT '',
		afternoon_text TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (schedule_id, day_number)
	)`,
	`CREATE INDEX IF NOT EXISTS schedules_year_month_idx ON schedules (year, month)`,
}

// Migrate 创建所需的表，可重复执行
func (r *Repository) Migrate(ctx context.Context) error {
	var statements []string
	switch r.cfg.Database.Driver {
	case DriverPostgres:
		statements = postgresSchema
	case DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", r.cfg.Database.Driver)
	}

	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	for _, stmt := range statements {
		if _, err := r.dbpool.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
