// Package cache 用 redis 缓存生成的周历。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
)

// CalendarCache 周历只取决于 (year, month)，可以放心缓存
// redis 不可用时直接重新生成，不影响请求
type CalendarCache struct {
	rdb              *redis.Client
	expiration       time.Duration
	operationTimeout time.Duration
}

// NewCalendarCache 中 rdb 为 nil 时不使用缓存
func NewCalendarCache(rdb *redis.Client, expiration time.Duration, operationTimeout time.Duration) *CalendarCache {
	return &CalendarCache{
		rdb:              rdb,
		expiration:       expiration,
		operationTimeout: operationTimeout,
	}
}

func calendarKey(year int, month time.Month) string {
	return fmt.Sprintf("calendar_%04d_%02d", year, int(month))
}

func (c *CalendarCache) Month(ctx context.Context, year int, month time.Month) ([]domain.CalendarWeek, error) {
	if c.rdb == nil {
		return calendar.GenerateMonth(year, month), nil
	}

	key := calendarKey(year, month)

	getCtx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()

	data, err := c.rdb.Get(getCtx, key).Bytes()
	switch {
	case err == nil:
		var weeks []domain.CalendarWeek
		if err := json.Unmarshal(data, &weeks); err == nil {
			return weeks, nil
		}
		slog.Warn("周历缓存损坏，重新生成", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("无法读取周历缓存", "key", key, "error", err)
	}

	weeks := calendar.GenerateMonth(year, month)

	data, err = json.Marshal(weeks)
	if err != nil {
		return nil, err
	}

	setCtx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()

	if err := c.rdb.Set(setCtx, key, data, c.expiration).Err(); err != nil {
		slog.Warn("无法写入周历缓存", "key", key, "error", err)
	}

	return weeks, nil
}
