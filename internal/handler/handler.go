package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/service"
)

// CalendarSource 返回某个业务月的周历
type CalendarSource interface {
	Month(ctx context.Context, year int, month time.Month) ([]domain.CalendarWeek, error)
}

// MailPublisher 把邮件投递到消息队列，由 mail worker 发送
type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	schedules  *service.ScheduleService
	calendar   CalendarSource
	publisher  MailPublisher
	translator ut.Translator

	Mux *chi.Mux
}

// NewHandler 中 publisher 可以为 nil，此时不发送通知邮件
func NewHandler(cfg *config.Config, repo *repository.Repository, schedules *service.ScheduleService, calendar CalendarSource, publisher MailPublisher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		schedules:  schedules,
		calendar:   calendar,
		publisher:  publisher,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)
		r.Route("/my-info", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})
		r.Get("/users", h.GetAllUserInfo)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.GetSchedules)
			r.With(h.preventLeavedStaff).Post("/", h.CreateSchedule)
			r.Get("/generate", h.GenerateCalendar)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleID)
				r.Get("/", h.GetSchedule)
				r.Put("/", h.UpdateSchedule)
				r.Delete("/", h.DeleteSchedule)
			})
		})
	})
}
