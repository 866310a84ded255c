// Package mailer 把队列中的邮件消息渲染成可以发送的邮件。
package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrUnsupportedType 消息类型未知，重新入队也无法处理
var ErrUnsupportedType = errors.New("不支持的邮件类型")

type kind struct {
	subject  string
	template string
	data     func() any
}

var kinds = map[string]kind{
	domain.MailTypeScheduleUpdated: {
		subject:  "外勤周计划 - 周计划已被修改",
		template: "schedule_updated.html",
		data:     func() any { return &domain.ScheduleMailData{} },
	},
	domain.MailTypeScheduleDeleted: {
		subject:  "外勤周计划 - 周计划已被删除",
		template: "schedule_deleted.html",
		data:     func() any { return &domain.ScheduleMailData{} },
	},
	domain.MailTypeScheduleReminder: {
		subject:  "外勤周计划 - 请填写本周周计划",
		template: "schedule_reminder.html",
		data:     func() any { return &domain.ReminderMailData{} },
	},
}

// envelope 与 domain.MailMessage 的 JSON 结构一致，data 按类型延迟解析
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Render 解析消息体并渲染邮件正文
func Render(body []byte) (to string, subject string, html string, err error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", "", "", err
	}

	k, ok := kinds[env.Type]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, env.Type)
	}

	data := k.data()
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return "", "", "", err
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, k.template, data); err != nil {
		return "", "", "", err
	}

	return env.To, k.subject, buf.String(), nil
}

// Compose 构建可以直接交给 go-mail 客户端发送的邮件
func Compose(from string, body []byte) (*mail.Msg, error) {
	to, subject, html, err := Render(body)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(to); err != nil {
		return nil, err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, html)

	return m, nil
}
