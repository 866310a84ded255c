// Package reminder 每周提醒还没有填写本周周计划的员工。
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
)

type Publisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Reminder struct {
	repo           *repository.Repository
	publisher      Publisher
	location       *time.Location
	publishTimeout time.Duration
	now            func() time.Time
}

func New(repo *repository.Repository, publisher Publisher, location *time.Location, publishTimeout time.Duration, now func() time.Time) *Reminder {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &Reminder{
		repo:           repo,
		publisher:      publisher,
		location:       location,
		publishTimeout: publishTimeout,
		now:            now,
	}
}

// Run 找出当前业务周还没有周计划的在职员工并投递提醒，返回投递成功的数量
func (r *Reminder) Run(ctx context.Context) (int, error) {
	today := domain.DateOf(r.now().In(r.location))
	year, month, weekNumber := calendar.WeekOf(today)

	week, ok := calendar.FindWeek(year, month, weekNumber)
	if !ok {
		// WeekOf 的结果总能在 GenerateMonth 中找到
		return 0, nil
	}

	schedules, err := r.repo.GetSchedules(ctx, domain.ScheduleFilter{
		Year:       int32(year),
		Month:      int32(month),
		WeekNumber: weekNumber,
	})
	if err != nil {
		return 0, err
	}

	filled := make(map[int64]bool, len(schedules))
	for _, schedule := range schedules {
		filled[schedule.OwnerID] = true
	}

	users, err := r.repo.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, user := range users {
		if !user.IsActive || user.IsAdministrator() || user.Email == "" || filled[user.ID] {
			continue
		}

		msg := domain.MailMessage{
			Type: domain.MailTypeScheduleReminder,
			To:   user.Email,
			Data: domain.ReminderMailData{
				FullName:   user.FullName,
				Year:       int32(year),
				Month:      int32(month),
				WeekNumber: weekNumber,
				StartDate:  week.StartDate().String(),
				EndDate:    week.EndDate().String(),
			},
		}

		publishCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
		err := r.publisher.Publish(publishCtx, msg)
		cancel()
		if err != nil {
			slog.Warn("无法投递周计划提醒", "userID", user.ID, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("已投递周计划提醒", "year", year, "month", int(month), "weekNumber", weekNumber, "count", cnt)
	return cnt, nil
}

// NewCron 创建按 spec 定时执行 Run 的 cron，上一次还没执行完时跳过本次
func NewCron(spec string, r *Reminder) (*cron.Cron, error) {
	logger := slogLogger{}
	c := cron.New(
		cron.WithLocation(r.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(spec, func() {
		if _, err := r.Run(context.Background()); err != nil {
			slog.Error("周计划提醒失败", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// slogLogger 把 cron 的日志转到 slog
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}
