package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/mq"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/reminder"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	location, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		logger.Error("无法加载时区", slog.String("timezone", cfg.Reminder.Timezone), slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := repository.OpenDB(context.Background(), cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	if _, err := mq.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 启动定时任务
	 **********************************************/
	r := reminder.New(
		repo,
		mq.NewPublisher(ch, cfg.RabbitMQ.Queue),
		location,
		time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second,
		time.Now,
	)

	c, err := reminder.NewCron(cfg.Reminder.Spec, r)
	if err != nil {
		logger.Error("无法解析定时任务表达式", slog.String("spec", cfg.Reminder.Spec), slog.String("error", err.Error()))
		return
	}
	c.Start()

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("周计划提醒已启动", slog.String("spec", cfg.Reminder.Spec), slog.String("timezone", cfg.Reminder.Timezone))
	<-sigChan

	// 等待正在执行的任务结束
	logger.Info("正在关闭周计划提醒...")
	<-c.Stop().Done()
	logger.Info("周计划提醒已成功关闭")
}
