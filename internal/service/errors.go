package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound 周计划不存在
	ErrNotFound = errors.New("service: schedule not found")
	// ErrUnauthorized 既不是周计划的创建者，也不是管理员
	ErrUnauthorized = errors.New("service: unauthorized")
	// ErrConflict 同一个人在同一个月的同一周已经存在周计划，应改为调用 Update
	ErrConflict = errors.New("service: schedule already exists")
	// ErrEditConflict 提交的版本号已过期
	ErrEditConflict = errors.New("service: edit conflict")
)

// ValidationError 记录每个字段的错误信息
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "输入不合法"
	}

	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	// 同一字段只保留第一个错误
	if _, exists := v.FieldErrors[field]; !exists {
		v.FieldErrors[field] = message
	}
}
