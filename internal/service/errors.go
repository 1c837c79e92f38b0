// Package service 提供业务逻辑层实现：登录会话与上传索引
package service

import "errors"

var (
	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidInput 输入缺少必填字段或格式错误
	ErrInvalidInput = errors.New("invalid input")
	// ErrServiceUnavailable 存储未初始化，依赖存储的命令不可用
	ErrServiceUnavailable = errors.New("service unavailable")
)
