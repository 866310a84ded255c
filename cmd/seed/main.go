package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/seed"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/service"
)

func main() {
	var op int
	var n int
	var year int
	var month int

	now := time.Now()
	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 为所有用户填写指定业务月的周计划)")
	flag.IntVar(&n, "n", 5, "要插入的用户数量")
	flag.IntVar(&year, "year", now.Year(), "周计划所属的年份")
	flag.IntVar(&month, "month", int(now.Month()), "周计划所属的月份")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := repository.OpenDB(context.Background(), cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)
	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Error("无法初始化数据库表", "error", err)
			return
		}
	}

	ctx := context.Background()

	// 执行操作
	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			logger.Error("请输入合法的用户数量")
			return
		}
		cnt := seed.SeedUsers(ctx, repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
		logger.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if month < 1 || month > 12 {
			logger.Error("请输入合法的月份")
			return
		}
		schedules := service.NewScheduleService(repo, repo, time.Now)
		cnt, err := seed.SeedSchedules(ctx, repo, schedules, int32(year), time.Month(month))
		if err != nil {
			logger.Error("无法插入周计划", slog.String("error", err.Error()))
			return
		}
		logger.Info("插入周计划成功", slog.Int("count", cnt))
	default:
		logger.Error("指定的操作非法")
	}
}
