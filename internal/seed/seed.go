// Package seed 负责初始管理员和开发环境的测试数据。
package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/service"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// EnsureInitialAdmin 确保数据库中存在初始管理员，已存在时不做任何修改
func EnsureInitialAdmin(ctx context.Context, repo *repository.Repository, cfg *config.Config) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	initialAdmin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Phone:        cfg.InitialAdmin.Phone,
		Role:         domain.RoleAdministrator,
	}
	if err := repo.CreateUser(ctx, initialAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil
		}
		return err
	}

	slog.Info("已创建初始管理员", "username", initialAdmin.Username)
	return nil
}

// SeedUsers 插入 n 个随机用户，返回成功插入的数量
func SeedUsers(ctx context.Context, repo *repository.Repository, n int, password, emailDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机用户", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(ctx, user); err != nil {
			// 随机用户名偶尔会重复，跳过即可
			slog.Error("无法插入用户", slog.String("username", user.Username), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}
	return cnt
}

// SeedSchedules 为每个在职的非管理员用户填写指定业务月的每一周，已填写的周跳过
func SeedSchedules(ctx context.Context, repo *repository.Repository, schedules *service.ScheduleService, year int32, month time.Month) (int, error) {
	users, err := repo.GetAllUsers(ctx)
	if err != nil {
		return 0, err
	}

	weeks := calendar.GenerateMonth(int(year), month)

	cnt := 0
	for _, user := range users {
		if !user.IsActive || user.IsAdministrator() {
			continue
		}

		for _, week := range weeks {
			_, err := schedules.Create(ctx, service.CreateScheduleParams{
				OwnerID:    user.ID,
				Year:       year,
				Month:      int32(month),
				WeekNumber: week.WeekNumber,
				Entries:    utils.GenerateRandomEntries(),
			})
			if err != nil {
				if errors.Is(err, service.ErrConflict) {
					continue
				}
				return cnt, err
			}
			cnt++
		}
	}

	return cnt, nil
}
